package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/gallop/internal/models"
)

// HorseRepository defines the interface for horse data access
type HorseRepository interface {
	Upsert(ctx context.Context, horse *models.Horse, retired bool) error
	UpsertWithTx(ctx context.Context, tx pgx.Tx, horse *models.Horse, retired bool) error
	GetByID(ctx context.Context, id string) (*models.Horse, error)
	List(ctx context.Context, retired bool) ([]*models.Horse, error)
	DeleteExceptWithTx(ctx context.Context, tx pgx.Tx, keep []string) (int64, error)
}

// RaceRepository defines the interface for race record data access
type RaceRepository interface {
	Create(ctx context.Context, record *models.RaceRecord) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, record *models.RaceRecord) error
	GetByID(ctx context.Context, id string) (*models.RaceRecord, error)
	List(ctx context.Context) ([]*models.RaceRecord, error)
	Count(ctx context.Context) (int, error)
}

// SettingsRepository stores the league settings document
type SettingsRepository interface {
	Get(ctx context.Context) ([]byte, error)
	PutWithTx(ctx context.Context, tx pgx.Tx, document []byte) error
}
