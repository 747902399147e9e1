package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gallop/internal/api"
	"github.com/yourusername/gallop/internal/display"
	"github.com/yourusername/gallop/internal/feed"
	"github.com/yourusername/gallop/internal/health"
	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/scheduler"
	"github.com/yourusername/gallop/internal/service"
)

var (
	runInterval time.Duration
	runDistance float64
	runServe    bool
	runWatch    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Race continuously on a schedule",
	Long:  `Runs a race immediately and then one every interval until interrupted. With --serve the league API, live feed and metrics are served over HTTP.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		interval := runInterval
		if interval <= 0 {
			interval = cfg.RaceInterval()
		}

		if runWatch {
			deps.svc.AddObserver(display.NewLiveRace(os.Stdout, isTerminal(os.Stdout)))
		}

		var server *health.Server
		if runServe {
			server = startServer(ctx, deps.svc)
		}

		job := func(ctx context.Context) error {
			outcome, err := deps.svc.Race(ctx, service.RaceOptions{Distance: runDistance})
			if err != nil {
				return err
			}
			if runWatch {
				display.FinishTable(os.Stdout, outcome.Card.Field, outcome.Summary)
			}
			return nil
		}

		if err := job(ctx); err != nil {
			return err
		}

		sched := scheduler.NewScheduler(appLog)
		if _, err := sched.ScheduleEvery("race", interval, 0, job); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		if server != nil {
			server.SetReady(true)
		}

		appLog.WithFields(logrus.Fields{
			"interval": interval.String(),
			"serve":    runServe,
			"next_run": sched.NextRun().Format(time.RFC3339),
		}).Info("Race loop started")

		<-ctx.Done()
		appLog.Info("Shutdown signal received")
		if server != nil {
			server.SetReady(false)
		}
		return sched.Stop()
	},
}

// startServer mounts the API, the live feed and metrics on the health server
func startServer(ctx context.Context, svc *service.RaceDayService) *health.Server {
	checks := map[string]health.Pinger{}
	if deps.db != nil {
		checks["database"] = deps.db
	}
	if deps.redis != nil {
		checks["redis"] = deps.redis
	}

	server := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.Port,
		Logger:      appLog,
		Checks:      checks,
	})

	hub := feed.NewHub(appLog)
	go hub.Run(ctx)
	svc.AddObserver(hub)

	server.Handle("/api/", api.NewHandler(svc, appLog).Router(cfg.Server.CORSOrigins))
	server.Handle("/ws/races", feed.NewHandler(ctx, hub))
	if cfg.Metrics.Enabled {
		server.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	if err := server.Start(ctx); err != nil {
		appLog.WithError(err).Error("Failed to start HTTP server")
	}
	return server
}

func init() {
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Time between races (default from config)")
	runCmd.Flags().Float64Var(&runDistance, "distance", 0, "Race distance in metres (default from config)")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "Serve the API, live feed and metrics")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Draw every race in the terminal")
}
