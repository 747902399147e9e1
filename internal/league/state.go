// Package league keeps the persistent horse pool and race archive.
package league

import (
	"fmt"

	"github.com/yourusername/gallop/internal/models"
)

// Settings are the league rules stored alongside the state
type Settings struct {
	RaceEverySec int `json:"race_every_sec"`
	FieldSize    int `json:"field_size"`
	MaxHorses    int `json:"max_horses"`
	PoolSize     int `json:"pool_size"`
	RetireAfter  int `json:"retire_after"`
}

// DefaultSettings returns the standard league rules
func DefaultSettings() Settings {
	return Settings{
		RaceEverySec: 120,
		FieldSize:    6,
		MaxHorses:    60,
		PoolSize:     30,
		RetireAfter:  models.DefaultRetireAfter,
	}
}

// State is everything the league persists between runs
type State struct {
	Horses   []models.Horse      `json:"horses"`
	Retired  []models.Horse      `json:"retired,omitempty"`
	Races    []models.RaceRecord `json:"races"`
	Settings Settings            `json:"config"`
}

// NewState returns an empty league
func NewState(settings Settings) *State {
	return &State{
		Horses:   []models.Horse{},
		Races:    []models.RaceRecord{},
		Settings: settings,
	}
}

// Active returns the horses still eligible to race
func (s *State) Active() []models.Horse {
	active := make([]models.Horse, 0, len(s.Horses))
	for _, h := range s.Horses {
		if h.IsActive() {
			active = append(active, h)
		}
	}
	return active
}

// Horse finds a horse by id among active and retired horses
func (s *State) Horse(id string) (models.Horse, bool) {
	for _, h := range s.Horses {
		if h.ID == id {
			return h, true
		}
	}
	for _, h := range s.Retired {
		if h.ID == id {
			return h, true
		}
	}
	return models.Horse{}, false
}

// LastRace returns the most recent race record, if any
func (s *State) LastRace() (models.RaceRecord, bool) {
	if len(s.Races) == 0 {
		return models.RaceRecord{}, false
	}
	return s.Races[len(s.Races)-1], true
}

// NextRaceID returns the id the next recorded race will get
func (s *State) NextRaceID() string {
	return fmt.Sprintf("r_%05d", len(s.Races)+1)
}

func (s *State) hasID(id string) bool {
	_, ok := s.Horse(id)
	return ok
}
