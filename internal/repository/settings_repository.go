package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gallop/internal/database"
	"github.com/yourusername/gallop/internal/models"
)

// PostgresSettingsRepository stores the league settings as a single JSONB row
type PostgresSettingsRepository struct {
	db *database.DB
}

// NewPostgresSettingsRepository creates a new settings repository
func NewPostgresSettingsRepository(db *database.DB) SettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// Get returns the stored settings document
func (r *PostgresSettingsRepository) Get(ctx context.Context) ([]byte, error) {
	var document []byte
	err := r.db.GetPool().QueryRow(ctx, `SELECT document FROM league_settings WHERE id = 1`).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league settings: %w", err)
	}
	return document, nil
}

// PutWithTx replaces the settings document using a provided transaction
func (r *PostgresSettingsRepository) PutWithTx(ctx context.Context, tx pgx.Tx, document []byte) error {
	query := `
		INSERT INTO league_settings (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, query, document); err != nil {
		return fmt.Errorf("failed to store league settings: %w", err)
	}
	return nil
}
