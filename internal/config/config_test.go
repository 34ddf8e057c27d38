// Package config provides configuration management for the SaddleUp server.
package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"

	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "saddleup" {
		t.Errorf("expected app name 'saddleup', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}

	if cfg.Server.Port != 8765 {
		t.Errorf("expected server port 8765, got %d", cfg.Server.Port)
	}

	if cfg.Race.HorseCount != 20 {
		t.Errorf("expected 20 horses, got %d", cfg.Race.HorseCount)
	}

	if cfg.Synthetic.MaxPopulation != 1000 {
		t.Errorf("expected synthetic max population 1000, got %d", cfg.Synthetic.MaxPopulation)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("SADDLEUP_APP_NAME", "test-app")
	defer os.Unsetenv("SADDLEUP_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("expected app name 'test-app' from environment, got '%s'", cfg.App.Name)
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion in the config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv("TEST_WEBHOOK_URL", "https://discord.example/api/webhooks/1/abc")
	defer os.Unsetenv("TEST_WEBHOOK_URL")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Notify.DiscordWebhookURL != "https://discord.example/api/webhooks/1/abc" {
		t.Errorf("expected webhook URL from environment expansion, got '%s'", cfg.Notify.DiscordWebhookURL)
	}

	if len(cfg.Notify.Events) != 2 {
		t.Errorf("expected 2 notify events, got %d", len(cfg.Notify.Events))
	}
}

// TestLoadWithDefaultsNoFile tests that a missing file still yields a valid config
func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Server.Port != 8765 {
		t.Errorf("expected default server port 8765, got %d", cfg.Server.Port)
	}

	if cfg.Scheduler.StatsReportCron != "@every 5m" {
		t.Errorf("expected default stats cron '@every 5m', got '%s'", cfg.Scheduler.StatsReportCron)
	}

	// The defaults must be self-consistent.
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

// TestLoadWithDefaultsEnvOverride tests environment override of a defaulted key
func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	os.Setenv("SADDLEUP_GAME_MIN_BET", "2.5")
	defer os.Unsetenv("SADDLEUP_GAME_MIN_BET")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Game.MinBet != 2.5 {
		t.Errorf("expected min bet 2.5 from environment, got %v", cfg.Game.MinBet)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidLogLevel tests validation of invalid log level
func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

// TestValidateRejectsBadRanges tests the bounds on the numeric tuning knobs
func TestValidateRejectsBadRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"house edge above one", func(c *Config) { c.Odds.HouseEdge = 1.2 }},
		{"negative house edge", func(c *Config) { c.Odds.HouseEdge = -0.1 }},
		{"pool weight above one", func(c *Config) { c.Odds.PoolWeight = 1.5 }},
		{"min odds below evens", func(c *Config) { c.Odds.MinOdds = 0.9 }},
		{"too few horses", func(c *Config) { c.Race.HorseCount = 2 }},
		{"zero betting window", func(c *Config) { c.Game.BettingDurationSeconds = 0 }},
		{"negative synthetic population", func(c *Config) { c.Synthetic.MaxPopulation = -1 }},
		{"server port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorLoadingConfig, err)
			}

			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestValidateZeroHouseEdgeAllowed tests that a free-play table validates
func TestValidateZeroHouseEdgeAllowed(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Odds.HouseEdge = 0
	cfg.Odds.PoolWeight = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected zero house edge to validate, got %v", err)
	}
}

// TestValidateCrossFieldRules tests the relationships between fields
func TestValidateCrossFieldRules(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"min bet above max bet", func(c *Config) { c.Game.MinBet = 2000 }, "min_bet"},
		{"starting balance below min bet", func(c *Config) { c.Game.StartingBalance = 0.5 }, "starting_balance"},
		{"attribute range inverted", func(c *Config) { c.Race.AttributeMin = 1.5 }, "attribute_min"},
		{"odds range inverted", func(c *Config) { c.Odds.MinOdds = 60 }, "min_odds"},
		{"synthetic stake floor above base", func(c *Config) { c.Synthetic.MinStake = 5 }, "min_stake"},
		{"health port collides with server", func(c *Config) { c.Health.Port = 8765 }, "health port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorLoadingConfig, err)
			}

			tc.mutate(cfg)
			err = Validate(cfg)
			if err == nil {
				t.Fatal("expected cross-field validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("expected error mentioning %q, got: %v", tc.wantMsg, err)
			}
		})
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "development"},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsStaging() {
		t.Error("expected IsStaging() to return false")
	}
}

// TestIsStaging tests staging environment check
func TestIsStaging(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "staging"},
	}

	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestDurationHelpers tests the second and millisecond field conversions
func TestDurationHelpers(t *testing.T) {
	game := GameConfig{BettingDurationSeconds: 30, ResultsDurationSeconds: 10, OddsIntervalMs: 250}
	if game.BettingDuration() != 30*time.Second {
		t.Errorf("expected 30s betting duration, got %v", game.BettingDuration())
	}
	if game.ResultsDuration() != 10*time.Second {
		t.Errorf("expected 10s results duration, got %v", game.ResultsDuration())
	}
	if game.OddsInterval() != 250*time.Millisecond {
		t.Errorf("expected 250ms odds interval, got %v", game.OddsInterval())
	}

	race := RaceConfig{TickIntervalMs: 100}
	if race.TickInterval() != 100*time.Millisecond {
		t.Errorf("expected 100ms tick interval, got %v", race.TickInterval())
	}

	srv := ServerConfig{RateLimitWindowSeconds: 60}
	if srv.RateLimitWindow() != time.Minute {
		t.Errorf("expected one minute rate limit window, got %v", srv.RateLimitWindow())
	}
}
