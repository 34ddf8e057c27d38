// Package config provides configuration management for the SaddleUp server.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Health    HealthConfig    `mapstructure:"health" validate:"required"`
	Game      GameConfig      `mapstructure:"game" validate:"required"`
	Race      RaceConfig      `mapstructure:"race" validate:"required"`
	Odds      OddsConfig      `mapstructure:"odds" validate:"required"`
	Synthetic SyntheticConfig `mapstructure:"synthetic" validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the websocket listener and its admission control
type ServerConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	RateLimitMax           int    `mapstructure:"rate_limit_max" validate:"required,gt=0"`
	RateLimitWindowSeconds int    `mapstructure:"rate_limit_window_seconds" validate:"required,gt=0"`
}

// RateLimitWindow returns the admission window as a duration.
func (s ServerConfig) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitWindowSeconds) * time.Second
}

// HealthConfig represents the health and metrics endpoint configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// GameConfig represents the race cycle timings and the table's money rules
type GameConfig struct {
	BettingDurationSeconds int     `mapstructure:"betting_duration_seconds" validate:"required,gt=0"`
	ResultsDurationSeconds int     `mapstructure:"results_duration_seconds" validate:"required,gt=0"`
	OddsIntervalMs         int     `mapstructure:"odds_interval_ms" validate:"required,gt=0"`
	StartingBalance        float64 `mapstructure:"starting_balance" validate:"required,gt=0"`
	MinBet                 float64 `mapstructure:"min_bet" validate:"required,gt=0"`
	MaxBet                 float64 `mapstructure:"max_bet" validate:"required,gt=0"`
}

// BettingDuration returns the betting window as a duration.
func (g GameConfig) BettingDuration() time.Duration {
	return time.Duration(g.BettingDurationSeconds) * time.Second
}

// ResultsDuration returns the results intermission as a duration.
func (g GameConfig) ResultsDuration() time.Duration {
	return time.Duration(g.ResultsDurationSeconds) * time.Second
}

// OddsInterval returns the live odds broadcast cadence as a duration.
func (g GameConfig) OddsInterval() time.Duration {
	return time.Duration(g.OddsIntervalMs) * time.Millisecond
}

// RaceConfig represents the shape of each generated race
type RaceConfig struct {
	HorseCount     int     `mapstructure:"horse_count" validate:"required,min=3"`
	Distance       float64 `mapstructure:"distance" validate:"required,gt=0"`
	AttributeMin   float64 `mapstructure:"attribute_min" validate:"required,gt=0"`
	AttributeMax   float64 `mapstructure:"attribute_max" validate:"required,gt=0"`
	TickIntervalMs int     `mapstructure:"tick_interval_ms" validate:"required,gt=0"`
}

// TickInterval returns the simulation tick cadence as a duration.
func (r RaceConfig) TickInterval() time.Duration {
	return time.Duration(r.TickIntervalMs) * time.Millisecond
}

// OddsConfig represents the pricing engine tuning. A zero house edge is a
// legal configuration, so the bounds carry the validation alone.
type OddsConfig struct {
	HouseEdge  float64 `mapstructure:"house_edge" validate:"gte=0,lt=1"`
	PoolWeight float64 `mapstructure:"pool_weight" validate:"gte=0,lte=1"`
	MinOdds    float64 `mapstructure:"min_odds" validate:"required,gt=1"`
	MaxOdds    float64 `mapstructure:"max_odds" validate:"required,gt=1"`
}

// SyntheticConfig represents the synthetic bettor pool. A max population of
// zero disables the pool entirely.
type SyntheticConfig struct {
	MaxPopulation   int     `mapstructure:"max_population" validate:"gte=0"`
	StartingBalance float64 `mapstructure:"starting_balance" validate:"required,gt=0"`
	BaseStake       float64 `mapstructure:"base_stake" validate:"required,gt=0"`
	MinStake        float64 `mapstructure:"min_stake" validate:"required,gt=0"`
}

// NotifyConfig represents outbound event notifications. An empty webhook
// URL disables them; an empty events list allows every event type.
type NotifyConfig struct {
	DiscordWebhookURL string   `mapstructure:"discord_webhook_url" validate:"omitempty,url"`
	Events            []string `mapstructure:"events"`
}

// SchedulerConfig represents background job scheduling
type SchedulerConfig struct {
	StatsReportCron string `mapstructure:"stats_report_cron"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
