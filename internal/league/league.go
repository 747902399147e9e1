package league

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

// LastRace selects the most recent race in FindRace
const LastRace = "last"

// maxIDAttempts bounds regeneration when a new horse id collides
const maxIDAttempts = 8

// League applies the league rules to a State. The State itself is plain data.
type League struct {
	generator *Generator
	rng       *rand.Rand
	logger    *logrus.Logger
}

// New creates a league. rng drives field selection and horse generation.
func New(names []string, rng *rand.Rand, logger *logrus.Logger) *League {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &League{
		generator: NewGenerator(names, rng),
		rng:       rng,
		logger:    logger,
	}
}

// Seed builds a fresh league with n generated horses
func (l *League) Seed(settings Settings, n int) *State {
	state := NewState(settings)
	l.EnsurePool(state, n)
	return state
}

// EnsurePool tops the active pool up to min horses and returns how many were added
func (l *League) EnsurePool(state *State, min int) int {
	added := 0
	for len(state.Horses) < min {
		state.Horses = append(state.Horses, l.newHorse(state))
		added++
	}
	if added > 0 {
		l.logger.WithFields(logrus.Fields{
			"added": added,
			"pool":  len(state.Horses),
		}).Debug("Horse pool replenished")
	}
	return added
}

func (l *League) newHorse(state *State) models.Horse {
	h := l.generator.New(state.Settings.RetireAfter)
	for i := 0; i < maxIDAttempts && state.hasID(h.ID); i++ {
		h = l.generator.New(state.Settings.RetireAfter)
	}
	return h
}

// SelectField picks the next race's runners from the most populous class.
// Ties between classes go to the lower class.
func (l *League) SelectField(state *State) ([]models.Horse, error) {
	active := state.Active()
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active horses in the league", models.ErrMissingResource)
	}

	buckets := make(map[models.Class][]models.Horse, len(models.Classes))
	for _, h := range active {
		buckets[h.Class()] = append(buckets[h.Class()], h)
	}

	var group []models.Horse
	for _, class := range models.Classes {
		if len(buckets[class]) > len(group) {
			group = buckets[class]
		}
	}

	l.rng.Shuffle(len(group), func(i, j int) {
		group[i], group[j] = group[j], group[i]
	})

	size := state.Settings.FieldSize
	if size <= 0 || size > len(group) {
		size = len(group)
	}
	field := make([]models.Horse, size)
	copy(field, group[:size])
	return field, nil
}

// RecordRace appends a race to the archive and returns the record
func (l *League) RecordRace(state *State, field []models.Horse, summary *race.Summary, at time.Time) models.RaceRecord {
	ids := make([]string, len(field))
	for i, h := range field {
		ids[i] = h.ID
	}
	moods := make(map[string]float64, len(summary.Moods))
	for id, m := range summary.Moods {
		moods[id] = m
	}

	record := models.RaceRecord{
		ID:       state.NextRaceID(),
		RunAt:    at.UTC(),
		Distance: summary.Distance,
		Seed:     summary.Seed,
		Track:    summary.TrackCondition,
		Moods:    moods,
		Horses:   ids,
		Order:    append([]string(nil), summary.Order...),
		Winner:   summary.Winner,
	}
	state.Races = append(state.Races, record)
	return record
}

// ApplyResult updates the runners' records, retires horses that have run
// their last race and refills the pool. It returns the newly retired horses.
func (l *League) ApplyResult(state *State, summary *race.Summary) []models.Horse {
	for i := range state.Horses {
		h := &state.Horses[i]
		placing := summary.Placing(h.ID)
		if placing == 0 {
			continue
		}
		h.AgeRaces++
		if h.ID == summary.Winner {
			h.Wins++
		} else {
			h.Losses++
		}
		h.RecordPlacing(placing)
	}

	var retired []models.Horse
	alive := state.Horses[:0]
	for _, h := range state.Horses {
		if h.IsActive() {
			alive = append(alive, h)
			continue
		}
		retired = append(retired, h)
	}
	state.Horses = alive
	state.Retired = append(state.Retired, retired...)

	l.EnsurePool(state, state.Settings.PoolSize)
	l.trimRetired(state)
	return retired
}

// trimRetired drops the oldest retired horses beyond the MaxHorses cap
func (l *League) trimRetired(state *State) {
	max := state.Settings.MaxHorses
	if max <= 0 {
		return
	}
	excess := len(state.Horses) + len(state.Retired) - max
	if excess <= 0 {
		return
	}
	if excess > len(state.Retired) {
		excess = len(state.Retired)
	}
	state.Retired = append([]models.Horse(nil), state.Retired[excess:]...)
}

// FindRace returns a race by id, or the most recent one for LastRace
func (l *League) FindRace(state *State, which string) (models.RaceRecord, error) {
	if which == "" || which == LastRace {
		if record, ok := state.LastRace(); ok {
			return record, nil
		}
		return models.RaceRecord{}, fmt.Errorf("%w: no races recorded", models.ErrNotFound)
	}
	for _, record := range state.Races {
		if record.ID == which {
			return record, nil
		}
	}
	return models.RaceRecord{}, fmt.Errorf("%w: race %s", models.ErrNotFound, which)
}

// Reconstruct rebuilds a recorded field in its original order
func (l *League) Reconstruct(state *State, record models.RaceRecord) ([]models.Horse, error) {
	field := make([]models.Horse, 0, len(record.Horses))
	for _, id := range record.Horses {
		h, ok := state.Horse(id)
		if !ok {
			return nil, fmt.Errorf("%w: horse %s from race %s is no longer in the league", models.ErrMissingResource, id, record.ID)
		}
		field = append(field, h)
	}
	return field, nil
}

// Replay re-runs a recorded race from its seed
func (l *League) Replay(state *State, which string) (*race.Run, models.RaceRecord, error) {
	record, err := l.FindRace(state, which)
	if err != nil {
		return nil, models.RaceRecord{}, err
	}
	field, err := l.Reconstruct(state, record)
	if err != nil {
		return nil, record, err
	}
	run, err := race.Stream(race.Config{
		Distance: record.Distance,
		Seed:     race.Seeded(record.Seed),
		Field:    field,
	})
	if err != nil {
		return nil, record, err
	}
	return run, record, nil
}

// Top returns horses ordered by wins. n <= 0 returns the whole pool in stored order.
func Top(state *State, n int) []models.Horse {
	horses := append([]models.Horse(nil), state.Horses...)
	if n <= 0 {
		return horses
	}
	sort.SliceStable(horses, func(i, j int) bool {
		return horses[i].Wins > horses[j].Wins
	})
	if n < len(horses) {
		horses = horses[:n]
	}
	return horses
}
