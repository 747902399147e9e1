// Package race implements the per-tick race simulation.
package race

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/yourusername/gallop/internal/models"
)

// TrackConditions are the per-race environmental multipliers
var TrackConditions = []float64{0.9, 1.0, 1.1}

// Moods are the per-horse, per-race multipliers
var Moods = []float64{0.95, 1.0, 1.05}

// ErrInProgress is returned when a summary is requested before the race has finished
var ErrInProgress = errors.New("race still in progress")

// Config configures a single race
type Config struct {
	Distance float64
	Seed     *int64
	Field    []models.Horse
}

// Validate checks the race configuration before any random draw happens
func (c Config) Validate() error {
	if math.IsNaN(c.Distance) || math.IsInf(c.Distance, 0) || c.Distance <= 0 {
		return fmt.Errorf("%w: distance must be a positive finite number, got %v", models.ErrInvalidConfiguration, c.Distance)
	}
	if len(c.Field) == 0 {
		return fmt.Errorf("%w: field is empty", models.ErrInvalidConfiguration)
	}
	seen := make(map[string]struct{}, len(c.Field))
	for _, h := range c.Field {
		if h.ID == "" {
			return fmt.Errorf("%w: horse %q has no id", models.ErrInvalidConfiguration, h.Name)
		}
		if _, dup := seen[h.ID]; dup {
			return fmt.Errorf("%w: duplicate horse id %s", models.ErrInvalidConfiguration, h.ID)
		}
		seen[h.ID] = struct{}{}
		if err := validateStats(h); err != nil {
			return err
		}
	}
	return nil
}

func validateStats(h models.Horse) error {
	s := h.Stats
	for name, v := range map[string]float64{
		"energy":      s.Energy,
		"agility":     s.Agility,
		"discipline":  s.Discipline,
		"temperament": s.Temperament,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: horse %s has non-finite %s", models.ErrInvalidConfiguration, h.ID, name)
		}
	}
	if s.Energy <= 0 || s.Agility <= 0 || s.Discipline <= 0 || s.Temperament < 0 {
		return fmt.Errorf("%w: horse %s has non-positive stats", models.ErrInvalidConfiguration, h.ID)
	}
	return nil
}

// Simulate runs a race to completion and returns its summary
func Simulate(cfg Config) (*Summary, error) {
	run, err := Stream(cfg)
	if err != nil {
		return nil, err
	}
	return run.Finish()
}

// Seeded returns a pointer to seed, for use in Config
func Seeded(seed int64) *int64 {
	return &seed
}

func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

func pick(rng *rand.Rand, choices []float64) float64 {
	return choices[rng.Intn(len(choices))]
}
