package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gallop/internal/database"
	"github.com/yourusername/gallop/internal/models"
)

const (
	errScanHorse = "failed to scan horse: %w"

	horseColumns = `id, name, energy, agility, discipline, temperament,
		wins, losses, age_races, retire_after, form`

	upsertHorseQuery = `
		INSERT INTO horses (id, name, energy, agility, discipline, temperament,
			wins, losses, age_races, retire_after, form, retired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			age_races = EXCLUDED.age_races,
			form = EXCLUDED.form,
			retired = EXCLUDED.retired,
			updated_at = NOW()
	`
)

// PostgresHorseRepository implements HorseRepository for PostgreSQL
type PostgresHorseRepository struct {
	db *database.DB
}

// NewPostgresHorseRepository creates a new horse repository
func NewPostgresHorseRepository(db *database.DB) HorseRepository {
	return &PostgresHorseRepository{db: db}
}

// Upsert inserts a horse or updates its record. Name and stats never change.
func (r *PostgresHorseRepository) Upsert(ctx context.Context, horse *models.Horse, retired bool) error {
	if _, err := r.db.GetPool().Exec(ctx, upsertHorseQuery, horseArgs(horse, retired)...); err != nil {
		return fmt.Errorf("failed to upsert horse: %w", err)
	}
	return nil
}

// UpsertWithTx upserts a horse using a provided transaction
func (r *PostgresHorseRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, horse *models.Horse, retired bool) error {
	if _, err := tx.Exec(ctx, upsertHorseQuery, horseArgs(horse, retired)...); err != nil {
		return fmt.Errorf("failed to upsert horse within transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a horse by ID
func (r *PostgresHorseRepository) GetByID(ctx context.Context, id string) (*models.Horse, error) {
	query := `SELECT ` + horseColumns + ` FROM horses WHERE id = $1`

	horse, err := scanHorse(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get horse: %w", err)
	}
	return horse, nil
}

// List retrieves active or retired horses in the order they joined the league
func (r *PostgresHorseRepository) List(ctx context.Context, retired bool) ([]*models.Horse, error) {
	query := `SELECT ` + horseColumns + ` FROM horses WHERE retired = $1 ORDER BY created_at, id`

	rows, err := r.db.GetPool().Query(ctx, query, retired)
	if err != nil {
		return nil, fmt.Errorf("failed to query horses: %w", err)
	}
	defer rows.Close()

	var horses []*models.Horse
	for rows.Next() {
		horse, err := scanHorse(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanHorse, err)
		}
		horses = append(horses, horse)
	}

	return horses, rows.Err()
}

// DeleteExceptWithTx removes every horse whose id is not in keep
func (r *PostgresHorseRepository) DeleteExceptWithTx(ctx context.Context, tx pgx.Tx, keep []string) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM horses WHERE NOT (id = ANY($1))`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete horses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func horseArgs(h *models.Horse, retired bool) []interface{} {
	form := make([]int32, len(h.Form))
	for i, p := range h.Form {
		form[i] = int32(p)
	}
	return []interface{}{
		h.ID, h.Name, h.Stats.Energy, h.Stats.Agility, h.Stats.Discipline, h.Stats.Temperament,
		h.Wins, h.Losses, h.AgeRaces, h.RetireAfter, form, retired,
	}
}

func scanHorse(row pgx.Row) (*models.Horse, error) {
	h := &models.Horse{}
	var form []int32
	err := row.Scan(
		&h.ID, &h.Name, &h.Stats.Energy, &h.Stats.Agility, &h.Stats.Discipline, &h.Stats.Temperament,
		&h.Wins, &h.Losses, &h.AgeRaces, &h.RetireAfter, &form,
	)
	if err != nil {
		return nil, err
	}
	if len(form) > 0 {
		h.Form = make([]int, len(form))
		for i, p := range form {
			h.Form[i] = int(p)
		}
	}
	return h, nil
}
