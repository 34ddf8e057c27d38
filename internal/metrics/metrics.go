// Package metrics provides the centralized Prometheus metrics registry for
// the race server.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "races_completed_total",
		Help:      "Total number of races run to completion",
	})
	BetsPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "bets_placed_total",
		Help:      "Total number of bets accepted, by market and origin",
	}, []string{"bet_type", "origin"})
	BetsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "bets_rejected_total",
		Help:      "Total number of bets rejected, by reason",
	}, []string{"reason"})
	PayoutAmountTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "payout_amount_total",
		Help:      "Total money paid out to bettors, by market",
	}, []string{"bet_type"})
	GameLoopRecoveriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "game_loop_recoveries_total",
		Help:      "Total number of game loop crash recoveries",
	})
)

// Gauge metrics
var (
	SyntheticPopulation = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "saddleup",
		Name:      "synthetic_population",
		Help:      "Number of synthetic bettors currently active",
	})
	ConnectedHumans = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "saddleup",
		Name:      "connected_humans",
		Help:      "Number of logged in human players with live connections",
	})
	CurrentRaceID = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "saddleup",
		Name:      "current_race_id",
		Help:      "Identifier of the race currently in progress",
	})
)

// Histogram metrics
var (
	RaceDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "saddleup",
		Name:      "race_duration_seconds",
		Help:      "Wall clock duration of race simulations in seconds",
		Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 45, 60},
	})
	BetAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saddleup",
		Name:      "bet_amount",
		Help:      "Stake size distribution, by market",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 100, 500, 1000},
	}, []string{"bet_type"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RacesCompletedTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsRejectedTotal)
		registry.MustRegister(PayoutAmountTotal)
		registry.MustRegister(GameLoopRecoveriesTotal)

		// Register gauge metrics
		registry.MustRegister(SyntheticPopulation)
		registry.MustRegister(ConnectedHumans)
		registry.MustRegister(CurrentRaceID)

		// Register histogram metrics
		registry.MustRegister(RaceDurationSeconds)
		registry.MustRegister(BetAmount)

		// Register connection layer metrics
		registry.MustRegister(ActiveConnections)
		registry.MustRegister(MessagesReceivedTotal)
		registry.MustRegister(BroadcastsTotal)
		registry.MustRegister(SlowClientEvictionsTotal)
		registry.MustRegister(RateLimitedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRaceCompleted records one finished race and its duration.
func RecordRaceCompleted(durationSeconds float64) {
	RacesCompletedTotal.Inc()
	RaceDurationSeconds.Observe(durationSeconds)
}

// RecordBetPlaced records an accepted bet. Origin is "human" or "synthetic".
func RecordBetPlaced(betType, origin string) {
	BetsPlacedTotal.WithLabelValues(betType, origin).Inc()
}

// RecordBetRejected records a rejected bet by reason.
func RecordBetRejected(reason string) {
	BetsRejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveBetAmount records the stake of an accepted bet.
func ObserveBetAmount(betType string, amount float64) {
	BetAmount.WithLabelValues(betType).Observe(amount)
}

// RecordPayout adds to the paid out total for a market.
func RecordPayout(betType string, amount float64) {
	PayoutAmountTotal.WithLabelValues(betType).Add(amount)
}

// RecordLoopRecovery records a game loop crash recovery.
func RecordLoopRecovery() {
	GameLoopRecoveriesTotal.Inc()
}

// UpdateSyntheticPopulation updates the synthetic bettor gauge.
func UpdateSyntheticPopulation(count int) {
	SyntheticPopulation.Set(float64(count))
}

// UpdateConnectedHumans updates the live human player gauge.
func UpdateConnectedHumans(count int) {
	ConnectedHumans.Set(float64(count))
}

// UpdateCurrentRace updates the current race gauge.
func UpdateCurrentRace(raceID int) {
	CurrentRaceID.Set(float64(raceID))
}
