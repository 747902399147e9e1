// Package main provides the gallop command line: a horse racing league with Monte Carlo odds.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gallop/internal/config"
	"github.com/yourusername/gallop/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
	deps       *app
)

var rootCmd = &cobra.Command{
	Use:           "gallop",
	Short:         "Horse race simulation, odds pricing and a persistent league",
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		appLog = logger.NewLoggerWithOutput(cfg.App.LogLevel, os.Stderr)
		var err error
		deps, err = newApp(cmd.Context(), cfg, appLog)
		if err != nil {
			return fmt.Errorf("failed to set up dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps != nil {
			deps.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(initCmd, oddsCmd, raceCmd, runCmd, horsesCmd, archiveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if deps != nil {
			deps.Close()
		}
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies the AWS secrets overlay when enabled and validates
func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if config.SecretsEnabled() {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return err
		}
	}

	return config.Validate(cfg)
}
