// Package main provides the entry point for the SaddleUp game server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/saddleup/internal/config"
	"github.com/yourusername/saddleup/internal/engine"
	"github.com/yourusername/saddleup/internal/game"
	"github.com/yourusername/saddleup/internal/health"
	"github.com/yourusername/saddleup/internal/logger"
	"github.com/yourusername/saddleup/internal/notify"
	"github.com/yourusername/saddleup/internal/odds"
	"github.com/yourusername/saddleup/internal/scheduler"
	"github.com/yourusername/saddleup/internal/server"
	"github.com/yourusername/saddleup/internal/synthetic"
)

// Overridden at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	startedAt := time.Now()

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     version,
	}).Info("SaddleUp server starting")

	// Set up notifications when a webhook is configured. A nil notifier
	// turns every notification into a no-op.
	var notifier *notify.Notifier
	if cfg.Notify.DiscordWebhookURL != "" {
		senders := []notify.Sender{notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL)}
		notifier = notify.NewNotifier(senders, cfg.Notify.Events, appLog)
		appLog.WithField("events", cfg.Notify.Events).Info("Discord notifications enabled")
	}

	// Build the game stack: shared state, synthetic pool, broadcast hub
	// and the loop that drives races.
	state := game.NewState(game.StateConfig{
		StartingBalance: cfg.Game.StartingBalance,
		MinBet:          cfg.Game.MinBet,
		MaxBet:          cfg.Game.MaxBet,
	}, appLog)

	bettors := synthetic.NewManager(synthetic.Config{
		MaxPopulation:   cfg.Synthetic.MaxPopulation,
		StartingBalance: cfg.Synthetic.StartingBalance,
		BaseStake:       cfg.Synthetic.BaseStake,
		MinStake:        cfg.Synthetic.MinStake,
		ScheduleMargin:  time.Second,
	}, state, appLog, nil)

	hub := server.NewHub(state, appLog)

	simCfg := engine.DefaultSimulatorConfig()
	simCfg.TickInterval = cfg.Race.TickInterval()

	loopCfg := game.Config{
		BettingDuration: cfg.Game.BettingDuration(),
		ResultsDuration: cfg.Game.ResultsDuration(),
		OddsInterval:    cfg.Game.OddsInterval(),
		PhaseInterval:   time.Second,
		RecoveryBackoff: 5 * time.Second,
		Race: engine.RaceConfig{
			HorseCount: cfg.Race.HorseCount,
			Distance:   cfg.Race.Distance,
			AttrMin:    cfg.Race.AttributeMin,
			AttrMax:    cfg.Race.AttributeMax,
		},
		Simulator: simCfg,
		Odds: odds.Params{
			HouseEdge:  cfg.Odds.HouseEdge,
			MinOdds:    cfg.Odds.MinOdds,
			MaxOdds:    cfg.Odds.MaxOdds,
			PoolWeight: cfg.Odds.PoolWeight,
		},
	}

	loop := game.NewOrchestrator(loopCfg, state, bettors, hub, appLog, nil)
	loop.SetNotifier(notifier)

	srv := server.New(server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		RateLimit: server.RateLimitConfig{
			MaxPerWindow: cfg.Server.RateLimitMax,
			Window:       cfg.Server.RateLimitWindow(),
		},
	}, state, loop, hub, appLog)
	srv.SetNotifier(notifier)

	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Commit:      commit,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      appLog,
		Loop:        loop,
	})

	// Recurring stats report, logged and pushed as a status notification.
	sched := scheduler.NewScheduler(appLog, notifier)
	if cfg.Scheduler.StatsReportCron != "" {
		err := sched.ScheduleStatsReport(cfg.Scheduler.StatsReportCron, func() scheduler.Snapshot {
			report := scheduler.Snapshot{
				ConnectedClients:    hub.ClientCount(),
				KnownUsers:          state.UserCount(),
				SyntheticPopulation: loop.SyntheticPopulation(),
				Uptime:              time.Since(startedAt),
			}
			if race := state.CurrentRace(); race != nil {
				report.CurrentRaceID = race.ID
			}
			return report
		})
		if err != nil {
			log.Fatalf("Invalid stats report schedule: %v", err)
		}
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := healthSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	if err := loop.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start game loop")
	}

	if err := srv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start websocket server")
	}

	if cfg.Scheduler.StatsReportCron != "" {
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	}

	healthSrv.SetReady(true)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	appLog.WithFields(logrus.Fields{
		"ws_addr":     addr,
		"health_port": cfg.Health.Port,
		"synthetic":   cfg.Synthetic.MaxPopulation,
		"next_stats":  sched.GetNextRun(),
	}).Info("Server is running")

	go notifier.ServerStarted(addr)

	// Wait for shutdown signal
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	// Graceful shutdown
	appLog.Info("Initiating graceful shutdown...")
	healthSrv.SetReady(false)

	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	loop.Stop()

	if err := srv.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during websocket server shutdown")
	}

	notifier.ServerStopping(time.Since(startedAt))

	// Give components time to cleanup
	time.Sleep(2 * time.Second)

	appLog.Info("SaddleUp server shut down successfully")
}
