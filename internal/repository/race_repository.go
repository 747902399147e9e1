package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gallop/internal/database"
	"github.com/yourusername/gallop/internal/models"
)

const (
	errScanRace = "failed to scan race: %w"

	raceColumns = `id, run_at, distance, seed, track, moods, horses, finish_order, winner`

	insertRaceQuery = `
		INSERT INTO races (id, run_at, distance, seed, track, moods, horses, finish_order, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Create inserts a race record. Records are immutable, so a repeated id is ignored.
func (r *PostgresRaceRepository) Create(ctx context.Context, record *models.RaceRecord) error {
	args, err := raceArgs(record)
	if err != nil {
		return err
	}
	if _, err := r.db.GetPool().Exec(ctx, insertRaceQuery, args...); err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}
	return nil
}

// CreateWithTx inserts a race record using a provided transaction
func (r *PostgresRaceRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, record *models.RaceRecord) error {
	args, err := raceArgs(record)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertRaceQuery, args...); err != nil {
		return fmt.Errorf("failed to create race within transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a race record by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id string) (*models.RaceRecord, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	record, err := scanRace(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}
	return record, nil
}

// List retrieves every race record, oldest first
func (r *PostgresRaceRepository) List(ctx context.Context) ([]*models.RaceRecord, error) {
	query := `SELECT ` + raceColumns + ` FROM races ORDER BY id ASC`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var records []*models.RaceRecord
	for rows.Next() {
		record, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Count returns the number of archived races
func (r *PostgresRaceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetPool().QueryRow(ctx, `SELECT COUNT(*) FROM races`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count races: %w", err)
	}
	return count, nil
}

func raceArgs(record *models.RaceRecord) ([]interface{}, error) {
	moods, err := json.Marshal(record.Moods)
	if err != nil {
		return nil, fmt.Errorf("failed to encode moods: %w", err)
	}
	return []interface{}{
		record.ID, record.RunAt, record.Distance, record.Seed, record.Track,
		moods, record.Horses, record.Order, record.Winner,
	}, nil
}

func scanRace(row pgx.Row) (*models.RaceRecord, error) {
	record := &models.RaceRecord{}
	var moods []byte
	err := row.Scan(
		&record.ID, &record.RunAt, &record.Distance, &record.Seed, &record.Track,
		&moods, &record.Horses, &record.Order, &record.Winner,
	)
	if err != nil {
		return nil, err
	}
	if len(moods) > 0 {
		if err := json.Unmarshal(moods, &record.Moods); err != nil {
			return nil, fmt.Errorf("failed to decode moods: %w", err)
		}
	}
	return record, nil
}
