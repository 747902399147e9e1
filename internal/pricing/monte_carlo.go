package pricing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

const (
	// DefaultSimulations is the number of races run per pricing when none is configured
	DefaultSimulations = 800
	// MaxSimulations bounds a single training run
	MaxSimulations = 100_000
)

// MonteCarloConfig configures a training run
type MonteCarloConfig struct {
	Simulations int
	Distance    float64
	// Seed is the master seed; simulation i runs with Seed+i. Nil draws from the clock.
	Seed *int64
}

// TrainingResult is the tally of a training run
type TrainingResult struct {
	Simulations     int            `json:"simulations"`
	Distance        float64        `json:"distance"`
	Seed            int64          `json:"seed"`
	WinCounts       map[string]int `json:"win_counts"`
	MeanWinnerTicks float64        `json:"mean_winner_ticks"`
	StdWinnerTicks  float64        `json:"std_winner_ticks"`
}

// WinShare returns the raw fraction of simulations a horse won
func (r *TrainingResult) WinShare(horseID string) float64 {
	if r.Simulations == 0 {
		return 0
	}
	return float64(r.WinCounts[horseID]) / float64(r.Simulations)
}

// Quote is a priced field
type Quote struct {
	Odds     Odds               `json:"odds"`
	Fair     map[string]float64 `json:"fair"`
	Book     float64            `json:"book"`
	Training *TrainingResult    `json:"training"`
}

// Trainer runs Monte Carlo simulations of a field and memoizes the tallies
type Trainer struct {
	params Params
	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewTrainer creates a trainer. A zero ttl disables memoization.
func NewTrainer(params Params, ttl time.Duration, logger *logrus.Logger) *Trainer {
	if logger == nil {
		logger = logrus.New()
	}
	t := &Trainer{
		params: params,
		ttl:    ttl,
		logger: logger,
	}
	if ttl > 0 {
		t.cache = cache.New(ttl, ttl*2)
	}
	return t
}

// Params returns the book parameters the trainer prices with
func (t *Trainer) Params() Params {
	return t.params
}

// Train simulates the field cfg.Simulations times and tallies the winners.
// Cancelling ctx stops the run between simulations.
func (t *Trainer) Train(ctx context.Context, field []models.Horse, cfg MonteCarloConfig) (*TrainingResult, error) {
	if cfg.Simulations <= 0 {
		return nil, fmt.Errorf("%w: simulations must be positive, got %d", models.ErrInvalidConfiguration, cfg.Simulations)
	}
	if cfg.Simulations > MaxSimulations {
		return nil, fmt.Errorf("%w: simulations must not exceed %d, got %d", models.ErrInvalidConfiguration, MaxSimulations, cfg.Simulations)
	}
	if err := (race.Config{Distance: cfg.Distance, Field: field}).Validate(); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	key := trainingKey(field, cfg.Distance, cfg.Simulations, seed)
	if cached := t.lookup(key); cached != nil {
		return cached, nil
	}

	start := time.Now()
	winCounts := make(map[string]int, len(field))
	for _, h := range field {
		winCounts[h.ID] = 0
	}
	winnerTicks := make([]float64, 0, cfg.Simulations)

	for i := 0; i < cfg.Simulations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled after %d simulations: %w", i, err)
		}
		summary, err := race.Simulate(race.Config{
			Distance: cfg.Distance,
			Seed:     race.Seeded(seed + int64(i)),
			Field:    field,
		})
		if err != nil {
			return nil, fmt.Errorf("simulation %d: %w", i, err)
		}
		winCounts[summary.Winner]++
		winnerTicks = append(winnerTicks, float64(summary.Times[summary.Winner]))
	}

	mean, std := meanStd(winnerTicks)
	result := &TrainingResult{
		Simulations:     cfg.Simulations,
		Distance:        cfg.Distance,
		Seed:            seed,
		WinCounts:       winCounts,
		MeanWinnerTicks: mean,
		StdWinnerTicks:  std,
	}

	elapsed := time.Since(start)
	metrics.RecordTraining(cfg.Simulations, elapsed.Seconds())
	t.logger.WithFields(logrus.Fields{
		"simulations": cfg.Simulations,
		"field_size":  len(field),
		"distance":    cfg.Distance,
		"seed":        seed,
		"duration_ms": elapsed.Milliseconds(),
	}).Debug("Monte Carlo training completed")

	t.store(key, result)
	return result, nil
}

// Price trains on the field and converts the tallies into odds
func (t *Trainer) Price(ctx context.Context, field []models.Horse, cfg MonteCarloConfig) (*Quote, error) {
	training, err := t.Train(ctx, field, cfg)
	if err != nil {
		return nil, err
	}
	fair, err := FairProbabilities(training.WinCounts, training.Simulations, t.params.Alpha)
	if err != nil {
		return nil, err
	}
	odds, err := EstimateOdds(training.WinCounts, training.Simulations, t.params)
	if err != nil {
		return nil, err
	}

	book := Book(odds)
	metrics.UpdateBook(book)
	return &Quote{Odds: odds, Fair: fair, Book: book, Training: training}, nil
}

// CacheStats returns memoization statistics
func (t *Trainer) CacheStats() (hits, misses uint64, ratio float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	hits = t.hitCount
	misses = t.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (t *Trainer) lookup(key string) *TrainingResult {
	if t.cache == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, found := t.cache.Get(key); found {
		if result, ok := v.(*TrainingResult); ok {
			t.hitCount++
			metrics.RecordTrainingCache(true)
			return result
		}
	}
	t.missCount++
	metrics.RecordTrainingCache(false)
	return nil
}

func (t *Trainer) store(key string, result *TrainingResult) {
	if t.cache == nil {
		return
	}
	t.cache.Set(key, result, t.ttl)
}

// trainingKey identifies a training run by everything that affects its outcome
func trainingKey(field []models.Horse, distance float64, sims int, seed int64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(distance, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(sims))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(seed, 10))
	for _, h := range field {
		s := h.Stats
		fmt.Fprintf(&b, "|%s:%g:%g:%g:%g", h.ID, s.Energy, s.Agility, s.Discipline, s.Temperament)
	}
	return b.String()
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
