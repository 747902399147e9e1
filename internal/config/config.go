// Package config provides configuration management for the gallop league.
package config

import (
	"fmt"
	"time"
)

// Storage drivers
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	League   LeagueConfig   `mapstructure:"league" validate:"required"`
	Race     RaceConfig     `mapstructure:"race" validate:"required"`
	Pricing  PricingConfig  `mapstructure:"pricing" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// LeagueConfig holds the league rules and file locations
type LeagueConfig struct {
	StatePath    string `mapstructure:"state_path" validate:"required"`
	NamesPath    string `mapstructure:"names_path"`
	PoolSize     int    `mapstructure:"pool_size" validate:"required,gt=0"`
	FieldSize    int    `mapstructure:"field_size" validate:"required,gt=0"`
	MaxHorses    int    `mapstructure:"max_horses" validate:"required,gt=0"`
	RetireAfter  int    `mapstructure:"retire_after" validate:"required,gt=0"`
	RaceEverySec int    `mapstructure:"race_every_sec" validate:"required,gt=0"`
}

// RaceConfig holds race defaults
type RaceConfig struct {
	Distance    float64 `mapstructure:"distance" validate:"required,gt=0"`
	TickDelayMs int     `mapstructure:"tick_delay_ms" validate:"gte=0"`
}

// PricingConfig holds the Monte Carlo and book parameters
type PricingConfig struct {
	Simulations     int     `mapstructure:"simulations" validate:"required,gt=0,lte=100000"`
	HouseMargin     float64 `mapstructure:"house_margin" validate:"gte=0,lt=1"`
	Alpha           float64 `mapstructure:"alpha" validate:"required,gt=0"`
	ClampMin        float64 `mapstructure:"clamp_min" validate:"required,gte=1"`
	ClampMax        float64 `mapstructure:"clamp_max" validate:"required,gt=1"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// StorageConfig selects the league store
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,storage"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// NotifyConfig configures where finished races are published
type NotifyConfig struct {
	WebhookURL    string  `mapstructure:"webhook_url" validate:"omitempty,url"`
	WebhookToken  string  `mapstructure:"webhook_token"`
	RateLimit     float64 `mapstructure:"rate_limit" validate:"gte=0"`
	MaxRetries    int     `mapstructure:"max_retries" validate:"gte=0"`
	RedisAddr     string  `mapstructure:"redis_addr"`
	RedisPassword string  `mapstructure:"redis_password"`
	RedisStream   string  `mapstructure:"redis_stream"`
}

// ServerConfig configures the HTTP server started by `run --serve`
type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesPostgres reports whether the league is stored in PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.Storage.Driver == StoragePostgres
}

// RaceInterval returns the time between scheduled races
func (c *Config) RaceInterval() time.Duration {
	return time.Duration(c.League.RaceEverySec) * time.Second
}

// TickDelay returns the pause between rendered frames of a watched race
func (c *Config) TickDelay() time.Duration {
	return time.Duration(c.Race.TickDelayMs) * time.Millisecond
}

// CacheTTL returns how long Monte Carlo tallies are memoized
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Pricing.CacheTTLSeconds) * time.Second
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
