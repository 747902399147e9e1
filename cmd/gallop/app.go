package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/config"
	"github.com/yourusername/gallop/internal/database"
	"github.com/yourusername/gallop/internal/league"
	"github.com/yourusername/gallop/internal/logger"
	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/notify"
	"github.com/yourusername/gallop/internal/pricing"
	"github.com/yourusername/gallop/internal/repository"
	"github.com/yourusername/gallop/internal/service"
)

// app holds the wired dependencies shared by every command
type app struct {
	svc   *service.RaceDayService
	db    *database.DB
	redis *notify.RedisPublisher
	http  *notify.Client
	log   *logrus.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	metrics.InitRegistry()
	a := &app{log: log}

	settings := league.Settings{
		RaceEverySec: cfg.League.RaceEverySec,
		FieldSize:    cfg.League.FieldSize,
		MaxHorses:    cfg.League.MaxHorses,
		PoolSize:     cfg.League.PoolSize,
		RetireAfter:  cfg.League.RetireAfter,
	}

	store, err := a.openStore(ctx, cfg, settings)
	if err != nil {
		a.Close()
		return nil, err
	}

	names, err := league.LoadNames(cfg.League.NamesPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	params := pricing.Params{
		HouseMargin: cfg.Pricing.HouseMargin,
		Alpha:       cfg.Pricing.Alpha,
		ClampMin:    cfg.Pricing.ClampMin,
		ClampMax:    cfg.Pricing.ClampMax,
	}
	if err := params.Validate(); err != nil {
		a.Close()
		return nil, err
	}

	a.svc = service.NewRaceDayService(
		store,
		league.New(names, rand.New(rand.NewSource(time.Now().UnixNano())), log),
		pricing.NewTrainer(params, cfg.CacheTTL(), log),
		a.publisher(cfg),
		service.Options{
			Settings:    settings,
			Distance:    cfg.Race.Distance,
			Simulations: cfg.Pricing.Simulations,
			TickDelay:   cfg.TickDelay(),
			StoreName:   cfg.Storage.Driver,
		},
		log,
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg *config.Config, settings league.Settings) (league.Store, error) {
	if !cfg.UsesPostgres() {
		return league.NewJSONStore(cfg.League.StatePath, settings), nil
	}

	db, err := database.Initialize(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.log.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}
	return league.NewPostgresStore(db, repos, settings), nil
}

// publisher wires the configured sinks. It returns nil when none are configured.
func (a *app) publisher(cfg *config.Config) notify.Publisher {
	var sinks []notify.Publisher

	if cfg.Notify.WebhookURL != "" {
		httpCfg := notify.DefaultClientConfig()
		httpCfg.RateLimit = cfg.Notify.RateLimit
		httpCfg.MaxRetries = cfg.Notify.MaxRetries
		a.http = notify.NewClient(httpCfg, a.log)
		sinks = append(sinks, notify.NewWebhookPublisher(cfg.Notify.WebhookURL, cfg.Notify.WebhookToken, a.http))
	}
	if cfg.Notify.RedisAddr != "" {
		a.redis = notify.NewRedisPublisher(cfg.Notify.RedisAddr, cfg.Notify.RedisPassword, cfg.Notify.RedisStream)
		sinks = append(sinks, a.redis)
	}

	if len(sinks) == 0 {
		return nil
	}
	return notify.NewMulti(logger.NewRaceLogger(a.log), sinks...)
}

// Close releases every connection the app opened
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis client")
		}
		a.redis = nil
	}
	if a.http != nil {
		_ = a.http.Close()
		a.http = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
