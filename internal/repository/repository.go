// Package repository provides PostgreSQL access to league horses, races and settings.
package repository

import (
	"fmt"

	"github.com/yourusername/gallop/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Horse    HorseRepository
	Race     RaceRepository
	Settings SettingsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Horse:    NewPostgresHorseRepository(db),
		Race:     NewPostgresRaceRepository(db),
		Settings: NewPostgresSettingsRepository(db),
	}, nil
}
