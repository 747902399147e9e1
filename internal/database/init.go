package database

import (
	"context"
	"fmt"

	"github.com/yourusername/gallop/internal/config"
)

// LeagueTables are the tables created by migrations/0001_league.up.sql
var LeagueTables = []string{"horses", "races", "league_settings"}

// Initialize creates a connection pool and verifies the league schema has been migrated
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	missing, err := db.MissingTables(ctx, LeagueTables...)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("league schema is missing tables %v, apply migrations/0001_league.up.sql", missing)
	}

	return db, nil
}

// MissingTables returns the named tables that do not exist in the current search path
func (db *DB) MissingTables(ctx context.Context, tables ...string) ([]string, error) {
	var missing []string
	for _, table := range tables {
		var exists bool
		if err := db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
