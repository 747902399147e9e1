// Package service runs the league's race day: pricing, racing, bookkeeping and publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/league"
	"github.com/yourusername/gallop/internal/logger"
	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/notify"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/race"
)

// Observer watches a race tick by tick
type Observer interface {
	RaceStarted(raceID string, run *race.Run, odds map[string]float64)
	Tick(raceID string, tick race.Tick)
	RaceFinished(record models.RaceRecord)
}

// Options configures a RaceDayService
type Options struct {
	Settings    league.Settings
	Distance    float64
	Simulations int
	// TickDelay is the pause between ticks while observers are watching
	TickDelay time.Duration
	StoreName string
}

// RaceOptions configures a single race
type RaceOptions struct {
	Distance float64
	Seed     *int64
	Bet      *models.Bet
	Watchers []Observer
}

// Card is a priced field for the next race
type Card struct {
	RaceID string         `json:"race_id"`
	Field  []models.Horse `json:"field"`
	Quote  *pricing.Quote `json:"quote"`
}

// Outcome is everything produced by one race cycle
type Outcome struct {
	Card       *Card
	Summary    *race.Summary
	Record     models.RaceRecord
	Retired    []models.Horse
	Settlement *models.Settlement
}

// ReplayOutcome is a recorded race run again from its seed
type ReplayOutcome struct {
	Record  models.RaceRecord
	Field   []models.Horse
	Summary *race.Summary
	Matches bool
}

// RaceDayService runs race cycles against a league store
type RaceDayService struct {
	store     league.Store
	league    *league.League
	trainer   *pricing.Trainer
	publisher notify.Publisher
	observers []Observer
	opts      Options
	now       func() time.Time

	raceLog  *logger.RaceLogger
	auditLog *logger.AuditLogger
	logger   *logrus.Logger

	// cycleMu serializes cycles; leagueMu guards the league's rng
	cycleMu  sync.Mutex
	leagueMu sync.Mutex
}

// NewRaceDayService creates a new race day service. publisher may be nil.
func NewRaceDayService(
	store league.Store,
	lg *league.League,
	trainer *pricing.Trainer,
	publisher notify.Publisher,
	opts Options,
	log *logrus.Logger,
) *RaceDayService {
	if log == nil {
		log = logrus.New()
	}
	if opts.Simulations <= 0 {
		opts.Simulations = pricing.DefaultSimulations
	}
	if opts.StoreName == "" {
		opts.StoreName = "json"
	}
	return &RaceDayService{
		store:     store,
		league:    lg,
		trainer:   trainer,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
		raceLog:   logger.NewRaceLogger(log),
		auditLog:  logger.NewAuditLogger(log),
		logger:    log,
	}
}

// AddObserver registers an observer for every race this service runs
func (s *RaceDayService) AddObserver(o Observer) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	s.observers = append(s.observers, o)
}

// Init replaces the stored league with a freshly seeded one
func (s *RaceDayService) Init(ctx context.Context) (*league.State, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	s.leagueMu.Lock()
	state := s.league.Seed(s.opts.Settings, s.opts.Settings.PoolSize)
	s.leagueMu.Unlock()

	metrics.RecordHorsesGenerated(len(state.Horses))
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"horses": len(state.Horses),
		"store":  s.opts.StoreName,
	}).Info("League initialised")
	return state, nil
}

// State loads the current league
func (s *RaceDayService) State(ctx context.Context) (*league.State, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading league: %w", err)
	}
	return state, nil
}

// NextCard selects and prices a field without racing it.
// An empty pool is topped up in memory only.
func (s *RaceDayService) NextCard(ctx context.Context, distance float64, sims int) (*Card, error) {
	state, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return s.card(ctx, state, distance, sims)
}

// Horses returns the top n horses by wins, or the whole pool when n <= 0
func (s *RaceDayService) Horses(ctx context.Context, n int) ([]models.Horse, error) {
	state, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return league.Top(state, n), nil
}

// FindRace returns a recorded race by id or "last"
func (s *RaceDayService) FindRace(ctx context.Context, which string) (models.RaceRecord, error) {
	state, err := s.State(ctx)
	if err != nil {
		return models.RaceRecord{}, err
	}
	return s.league.FindRace(state, which)
}

// Race runs one full cycle: select, price, race, record, apply, save, publish
func (s *RaceDayService) Race(ctx context.Context, ro RaceOptions) (*Outcome, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	state, err := s.State(ctx)
	if err != nil {
		return nil, err
	}

	distance := ro.Distance
	if distance <= 0 {
		distance = s.opts.Distance
	}
	card, err := s.card(ctx, state, distance, s.opts.Simulations)
	if err != nil {
		return nil, err
	}

	var bet *models.Bet
	if ro.Bet != nil {
		if bet, err = resolveBet(*ro.Bet, card); err != nil {
			return nil, err
		}
	}

	run, err := race.Stream(race.Config{Distance: distance, Seed: ro.Seed, Field: card.Field})
	if err != nil {
		return nil, err
	}
	watchers := append(append([]Observer(nil), s.observers...), ro.Watchers...)
	summary, err := s.watch(ctx, card.RaceID, run, card.Quote.Odds, watchers)
	if err != nil {
		return nil, err
	}

	s.leagueMu.Lock()
	record := s.league.RecordRace(state, card.Field, summary, s.now())
	poolBefore := len(state.Horses)
	retired := s.league.ApplyResult(state, summary)
	s.leagueMu.Unlock()

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	s.recordMetrics(state, card, summary, retired, poolBefore)
	winner, _ := state.Horse(summary.Winner)
	s.raceLog.LogRaceFinished(record.ID, winner.ID, winner.Name, len(card.Field), summary.Ticks, summary.Seed)
	s.raceLog.LogRetirements(horseIDs(retired), len(state.Horses))

	for _, w := range watchers {
		w.RaceFinished(record)
	}
	if s.publisher != nil {
		event := notify.RaceEvent{Race: record, WinnerName: winner.Name, Odds: card.Quote.Odds}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).WithField("race_id", record.ID).Warn("Race published with errors")
		}
	}

	outcome := &Outcome{Card: card, Summary: summary, Record: record, Retired: retired}
	if bet != nil {
		settlement, err := pricing.Settle(*bet, summary)
		if err != nil {
			return nil, err
		}
		s.auditLog.LogBetSettled(record.ID, bet.HorseID, string(bet.Side), bet.Odds, bet.Stake, settlement.ProfitLoss.InexactFloat64())
		outcome.Settlement = &settlement
	}

	metrics.RecordRaceCycle(time.Since(start).Seconds())
	return outcome, nil
}

// Replay re-runs a recorded race ("last" or an id) from its seed
func (s *RaceDayService) Replay(ctx context.Context, which string, watchers ...Observer) (*ReplayOutcome, error) {
	state, err := s.State(ctx)
	if err != nil {
		return nil, err
	}

	run, record, err := s.league.Replay(state, which)
	if err != nil {
		return nil, err
	}
	summary, err := s.watch(ctx, record.ID, run, nil, watchers)
	if err != nil {
		return nil, err
	}

	return &ReplayOutcome{
		Record:  record,
		Field:   run.Field(),
		Summary: summary,
		Matches: equalOrder(record.Order, summary.Order),
	}, nil
}

func (s *RaceDayService) card(ctx context.Context, state *league.State, distance float64, sims int) (*Card, error) {
	if distance <= 0 {
		distance = s.opts.Distance
	}
	if sims <= 0 {
		sims = s.opts.Simulations
	}

	s.leagueMu.Lock()
	s.league.EnsurePool(state, state.Settings.PoolSize)
	field, err := s.league.SelectField(state)
	s.leagueMu.Unlock()
	if err != nil {
		return nil, err
	}

	// the master seed is the race number so repeat pricings of a field hit the cache
	seed := int64(len(state.Races) + 1)
	quote, err := s.trainer.Price(ctx, field, pricing.MonteCarloConfig{
		Simulations: sims,
		Distance:    distance,
		Seed:        &seed,
	})
	if err != nil {
		return nil, fmt.Errorf("pricing field: %w", err)
	}

	if favs := quote.Odds.Favourites(); len(favs) > 0 {
		_, _, ratio := s.trainer.CacheStats()
		s.raceLog.LogOddsPriced(favs[0], quote.Odds[favs[0]], quote.Book, sims, ratio)
	}
	return &Card{RaceID: state.NextRaceID(), Field: field, Quote: quote}, nil
}

// watch drives the run, pausing between ticks when anyone is watching
func (s *RaceDayService) watch(ctx context.Context, raceID string, run *race.Run, odds map[string]float64, watchers []Observer) (*race.Summary, error) {
	if len(watchers) == 0 {
		return run.Finish()
	}

	for _, w := range watchers {
		w.RaceStarted(raceID, run, odds)
	}
	for run.Next() {
		tick := run.Snapshot()
		for _, w := range watchers {
			w.Tick(raceID, tick)
		}
		if s.opts.TickDelay <= 0 || run.Done() {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("race %s interrupted: %w", raceID, ctx.Err())
		case <-time.After(s.opts.TickDelay):
		}
	}
	return run.Summary()
}

func (s *RaceDayService) save(ctx context.Context, state *league.State) error {
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("saving league: %w", err)
	}
	s.auditLog.LogStateSaved(s.opts.StoreName, len(state.Horses), len(state.Races), s.now())
	return nil
}

func (s *RaceDayService) recordMetrics(state *league.State, card *Card, summary *race.Summary, retired []models.Horse, poolBefore int) {
	class := models.ClassMaiden
	for _, h := range card.Field {
		if h.ID == summary.Winner {
			class = h.Class()
		}
	}
	metrics.RecordRace(string(class), summary.Ticks)
	metrics.RecordRetirements(len(retired))
	if added := len(state.Horses) - (poolBefore - len(retired)); added > 0 {
		metrics.RecordHorsesGenerated(added)
	}
	metrics.UpdateLeagueSize(len(state.Horses), len(state.Races))
}

// resolveBet matches the bet's horse by id or name and fills in the quoted price when none is given
func resolveBet(bet models.Bet, card *Card) (*models.Bet, error) {
	var horse *models.Horse
	for i := range card.Field {
		h := &card.Field[i]
		if h.ID == bet.HorseID || strings.EqualFold(h.Name, bet.HorseID) {
			horse = h
			break
		}
	}
	if horse == nil {
		return nil, fmt.Errorf("%w: %s is not running in %s", models.ErrMissingResource, bet.HorseID, card.RaceID)
	}

	bet.HorseID = horse.ID
	if bet.Side == "" {
		bet.Side = models.BetSideBack
	}
	if bet.Odds == 0 {
		bet.Odds = card.Quote.Odds[horse.ID]
	}
	if bet.Side != models.BetSideBack && bet.Side != models.BetSideLay {
		return nil, fmt.Errorf("%w: unknown bet side %q", models.ErrInvalidConfiguration, bet.Side)
	}
	if bet.Odds <= 1 {
		return nil, fmt.Errorf("%w: odds must exceed 1, got %v", models.ErrInvalidConfiguration, bet.Odds)
	}
	if bet.Stake <= 0 {
		return nil, fmt.Errorf("%w: stake must be positive", models.ErrInvalidConfiguration)
	}
	return &bet, nil
}

func horseIDs(horses []models.Horse) []string {
	ids := make([]string, len(horses))
	for i, h := range horses {
		ids[i] = h.ID
	}
	return ids
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsNotFound reports whether err means the requested race or horse does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrMissingResource)
}
