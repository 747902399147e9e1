package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/gallop/internal/config"
)

// TestDSNEnv names the environment variable holding the integration test database config path
const TestDSNEnv = "GALLOP_TEST_CONFIG"

// SetupTestDB connects to the database named by GALLOP_TEST_CONFIG, skipping the test when unset
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestDSNEnv)
	if path == "" {
		t.Skipf("integration test - set %s to a config file with a database section", TestDSNEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
