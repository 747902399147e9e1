package models

import "time"

// RaceRecord is the persisted history entry for a completed race
type RaceRecord struct {
	ID       string             `json:"id" db:"id"`
	RunAt    time.Time          `json:"ts" db:"run_at"`
	Distance float64            `json:"distance" db:"distance"`
	Seed     int64              `json:"seed" db:"seed"`
	Track    float64            `json:"track" db:"track"`
	Moods    map[string]float64 `json:"moods" db:"moods"`
	Horses   []string           `json:"horses" db:"horses"`
	Order    []string           `json:"order" db:"finish_order"`
	Winner   string             `json:"winner" db:"winner"`
}

// Placing returns the 1-based finishing position of a horse, or 0 if it did not run
func (r *RaceRecord) Placing(horseID string) int {
	for i, id := range r.Order {
		if id == horseID {
			return i + 1
		}
	}
	return 0
}
