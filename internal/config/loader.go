// Package config provides configuration management for the SaddleUp server.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SADDLEUP"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads the configuration with defaults for every field,
// so a missing file still yields a runnable development setup. A file that
// does exist is expanded and merged over the defaults, and environment
// variables override both.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := viper.New()
	v.SetConfigType("yaml")
	bindEnv(v)
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// A missing file falls through to defaults and environment variables.

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// bindEnv maps SADDLEUP_SECTION_KEY environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// setDefaults registers the full production defaults. Viper only surfaces
// environment overrides for keys it already knows, so every key appears
// here even when the shipped config file sets the same value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "saddleup")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.rate_limit_max", 5)
	v.SetDefault("server.rate_limit_window_seconds", 60)

	v.SetDefault("health.port", 8766)

	v.SetDefault("game.betting_duration_seconds", 30)
	v.SetDefault("game.results_duration_seconds", 10)
	v.SetDefault("game.odds_interval_ms", 250)
	v.SetDefault("game.starting_balance", 10.0)
	v.SetDefault("game.min_bet", 1.0)
	v.SetDefault("game.max_bet", 1000.0)

	v.SetDefault("race.horse_count", 20)
	v.SetDefault("race.distance", 100.0)
	v.SetDefault("race.attribute_min", 0.8)
	v.SetDefault("race.attribute_max", 1.2)
	v.SetDefault("race.tick_interval_ms", 100)

	v.SetDefault("odds.house_edge", 0.15)
	v.SetDefault("odds.pool_weight", 0.7)
	v.SetDefault("odds.min_odds", 1.01)
	v.SetDefault("odds.max_odds", 50.0)

	v.SetDefault("synthetic.max_population", 1000)
	v.SetDefault("synthetic.starting_balance", 10.0)
	v.SetDefault("synthetic.base_stake", 1.0)
	v.SetDefault("synthetic.min_stake", 0.1)

	v.SetDefault("notify.discord_webhook_url", "")
	v.SetDefault("notify.events", []string{})

	v.SetDefault("scheduler.stats_report_cron", "@every 5m")
}
