package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gallop/internal/database"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/repository"
)

// PostgresStore keeps the league in PostgreSQL
type PostgresStore struct {
	db       *database.DB
	repos    *repository.Repositories
	defaults Settings
}

// NewPostgresStore creates a store over the league repositories
func NewPostgresStore(db *database.DB, repos *repository.Repositories, defaults Settings) *PostgresStore {
	return &PostgresStore{db: db, repos: repos, defaults: defaults}
}

// Load reads the whole league. An empty database yields an empty league.
func (s *PostgresStore) Load(ctx context.Context) (*State, error) {
	state := NewState(s.defaults)

	document, err := s.repos.Settings.Get(ctx)
	switch {
	case errors.Is(err, models.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(document, &state.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode league settings: %w", err)
		}
	}

	active, err := s.repos.Horse.List(ctx, false)
	if err != nil {
		return nil, err
	}
	retired, err := s.repos.Horse.List(ctx, true)
	if err != nil {
		return nil, err
	}
	races, err := s.repos.Race.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, h := range active {
		state.Horses = append(state.Horses, *h)
	}
	for _, h := range retired {
		state.Retired = append(state.Retired, *h)
	}
	for _, r := range races {
		state.Races = append(state.Races, *r)
	}
	return state, nil
}

// Save writes the league in one transaction. Race records are append-only,
// so only records beyond those already stored are inserted.
func (s *PostgresStore) Save(ctx context.Context, state *State) error {
	stored, err := s.repos.Race.Count(ctx)
	if err != nil {
		return err
	}
	if stored > len(state.Races) {
		stored = len(state.Races)
	}

	document, err := json.Marshal(state.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode league settings: %w", err)
	}

	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repos.Settings.PutWithTx(ctx, tx, document); err != nil {
			return err
		}

		keep := make([]string, 0, len(state.Horses)+len(state.Retired))
		for i := range state.Horses {
			if err := s.repos.Horse.UpsertWithTx(ctx, tx, &state.Horses[i], false); err != nil {
				return err
			}
			keep = append(keep, state.Horses[i].ID)
		}
		for i := range state.Retired {
			if err := s.repos.Horse.UpsertWithTx(ctx, tx, &state.Retired[i], true); err != nil {
				return err
			}
			keep = append(keep, state.Retired[i].ID)
		}
		if _, err := s.repos.Horse.DeleteExceptWithTx(ctx, tx, keep); err != nil {
			return err
		}

		for i := stored; i < len(state.Races); i++ {
			if err := s.repos.Race.CreateWithTx(ctx, tx, &state.Races[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
