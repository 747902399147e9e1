package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/gallop/internal/config"
)

func TestConnString(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "league",
		User:     "gallop",
		Password: "secret",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=gallop password=secret dbname=league sslmode=disable",
		ConnString(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, ConnString(cfg), "sslmode=require")
}

func TestLeagueSchemaMigrated(t *testing.T) {
	db := SetupTestDB(t)

	missing, err := db.MissingTables(context.Background(), LeagueTables...)
	assert.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = db.MissingTables(context.Background(), "no_such_table")
	assert.NoError(t, err)
	assert.Equal(t, []string{"no_such_table"}, missing)
}
