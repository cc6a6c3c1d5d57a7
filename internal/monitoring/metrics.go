package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry kept private so embedding applications decide whether to expose it
var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)
)

// Operation status labels
const (
	StatusSuccess = "success"
)

// Prometheus metrics for chatcrypt
var (
	// Cipher operation metrics
	OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatcrypt_operations_total",
			Help: "Total number of encrypt/decrypt/generate operations",
		},
		[]string{"operation", "plugin", "status"},
	)

	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatcrypt_operation_duration_seconds",
			Help:    "Cipher operation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation", "plugin"},
	)

	// Bytes fed into cipher operations
	BytesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatcrypt_bytes_processed_total",
			Help: "Total input bytes processed by cipher operations",
		},
		[]string{"operation", "plugin"},
	)

	// Plugin metrics
	PluginsInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatcrypt_plugins_info",
			Help: "Information about registered encryption plugins (1 = default, 0 = available)",
		},
		[]string{"name", "algorithm", "version"},
	)
)

// Gatherer exposes the private registry for scraping and tests.
func Gatherer() prometheus.Gatherer {
	return registry
}

// RecordOperation records the outcome of one cipher operation
func RecordOperation(operation, plugin, status string, duration time.Duration, inputBytes int) {
	OperationsTotal.WithLabelValues(operation, plugin, status).Inc()
	OperationDuration.WithLabelValues(operation, plugin).Observe(duration.Seconds())
	if inputBytes > 0 && status == StatusSuccess {
		BytesProcessed.WithLabelValues(operation, plugin).Add(float64(inputBytes))
	}
}

// SetPluginInfo sets encryption plugin information
func SetPluginInfo(name, algorithm, version string, isDefault bool) {
	value := float64(0)
	if isDefault {
		value = 1
	}
	PluginsInfo.WithLabelValues(name, algorithm, version).Set(value)
}
