package race

import (
	"math/rand"

	"github.com/yourusername/gallop/internal/models"
)

// Run is a race in progress. It is advanced one tick at a time with Next,
// in the manner of bufio.Scanner:
//
//	run, err := race.Stream(cfg)
//	for run.Next() {
//		render(run.Snapshot())
//	}
//	summary, err := run.Summary()
//
// A Run is not safe for concurrent use.
type Run struct {
	field     []models.Horse
	distance  float64
	seed      int64
	rng       *rand.Rand
	track     float64
	moods     map[string]float64
	positions map[string]float64
	times     map[string]int
	finished  map[string]bool
	order     []string
	tick      int
	done      bool
}

// Stream prepares a race and draws its track condition and moods.
// Streaming the same Config twice yields identical tick sequences.
func Stream(cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := resolveSeed(cfg.Seed)
	rng := rand.New(rand.NewSource(seed))

	field := make([]models.Horse, len(cfg.Field))
	copy(field, cfg.Field)

	r := &Run{
		field:     field,
		distance:  cfg.Distance,
		seed:      seed,
		rng:       rng,
		moods:     make(map[string]float64, len(field)),
		positions: make(map[string]float64, len(field)),
		times:     make(map[string]int, len(field)),
		finished:  make(map[string]bool, len(field)),
		order:     make([]string, 0, len(field)),
	}

	// draw order: track, then moods in field order, then ticks
	r.track = pick(rng, TrackConditions)
	for _, h := range field {
		r.moods[h.ID] = pick(rng, Moods)
		r.positions[h.ID] = 0
		r.times[h.ID] = 0
	}

	return r, nil
}

// Next advances the race by one tick. It returns false once every horse has finished.
func (r *Run) Next() bool {
	if r.done {
		return false
	}
	r.tick++
	for _, h := range r.field {
		if r.finished[h.ID] {
			continue
		}
		r.times[h.ID]++
		r.positions[h.ID] += Move(h, r.track, r.moods[h.ID], r.rng)
		// horses crossing in the same tick finish in field order
		if r.positions[h.ID] >= r.distance {
			r.finished[h.ID] = true
			r.order = append(r.order, h.ID)
		}
	}
	if len(r.order) == len(r.field) {
		r.done = true
	}
	return true
}

// Snapshot returns the state of the race after the most recent tick
func (r *Run) Snapshot() Tick {
	positions := make(map[string]float64, len(r.positions))
	for id, p := range r.positions {
		positions[id] = p
	}
	return Tick{
		Index:     r.tick,
		Positions: positions,
		Finished:  append([]string(nil), r.order...),
	}
}

// Field returns the horses in the race, in field order
func (r *Run) Field() []models.Horse {
	return append([]models.Horse(nil), r.field...)
}

// Distance returns the finish-line position
func (r *Run) Distance() float64 {
	return r.distance
}

// TrackCondition returns the multiplier drawn for this race
func (r *Run) TrackCondition() float64 {
	return r.track
}

// Done reports whether every horse has finished
func (r *Run) Done() bool {
	return r.done
}

// Summary returns the race result. It fails with ErrInProgress until every horse has finished.
func (r *Run) Summary() (*Summary, error) {
	if !r.done {
		return nil, ErrInProgress
	}

	positions := make(map[string]float64, len(r.positions))
	for id, p := range r.positions {
		positions[id] = p
	}
	times := make(map[string]int, len(r.times))
	for id, t := range r.times {
		times[id] = t
	}
	moods := make(map[string]float64, len(r.moods))
	for id, m := range r.moods {
		moods[id] = m
	}

	return &Summary{
		Winner:         r.order[0],
		Order:          append([]string(nil), r.order...),
		Positions:      positions,
		Times:          times,
		TrackCondition: r.track,
		Moods:          moods,
		Distance:       r.distance,
		Seed:           r.seed,
		Ticks:          r.tick,
	}, nil
}

// Finish runs the remaining ticks without observing them and returns the summary
func (r *Run) Finish() (*Summary, error) {
	for r.Next() {
	}
	return r.Summary()
}
