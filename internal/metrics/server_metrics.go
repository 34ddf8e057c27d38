package metrics

import "github.com/prometheus/client_golang/prometheus"

// Connection layer metrics
var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "saddleup",
		Name:      "active_connections",
		Help:      "Number of open websocket connections",
	})
	MessagesReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "messages_received_total",
		Help:      "Inbound client messages, by message type",
	}, []string{"type"})
	BroadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "broadcasts_total",
		Help:      "Outbound broadcast messages, by message type",
	}, []string{"type"})
	SlowClientEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "slow_client_evictions_total",
		Help:      "Connections dropped because their send buffer filled",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "saddleup",
		Name:      "rate_limited_total",
		Help:      "Connections refused by the per address rate limiter",
	})
)

// UpdateActiveConnections updates the open connection gauge.
func UpdateActiveConnections(count int) {
	ActiveConnections.Set(float64(count))
}

// RecordMessageReceived records one inbound client message.
func RecordMessageReceived(messageType string) {
	MessagesReceivedTotal.WithLabelValues(messageType).Inc()
}

// RecordBroadcast records one broadcast fan out.
func RecordBroadcast(messageType string) {
	BroadcastsTotal.WithLabelValues(messageType).Inc()
}

// RecordSlowClientEviction records a connection dropped for falling behind.
func RecordSlowClientEviction() {
	SlowClientEvictionsTotal.Inc()
}

// RecordRateLimited records a connection refused by the rate limiter.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
