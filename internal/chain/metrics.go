package chain

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "chain"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Height of the last committed block.
	Height metrics.Gauge
	// Number of txs executed.
	Txs metrics.Counter
	// Number of txs rolled back.
	FailedTxs metrics.Counter
	// Number of events published.
	Events metrics.Counter
	// Number of blocks whose events the sink failed to take.
	PublishFailures metrics.Counter
	// Number of keys written by a block.
	BlockWrites metrics.Histogram
	// Time between the start and the commit of a block.
	BlockProcessingTime metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "height",
			Help:      "Height of the last committed block.",
		}, labels).With(labelsAndValues...),
		Txs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "txs",
			Help:      "Number of txs executed.",
		}, labels).With(labelsAndValues...),
		FailedTxs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_txs",
			Help:      "Number of txs rolled back.",
		}, labels).With(labelsAndValues...),
		Events: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "events",
			Help:      "Number of events published.",
		}, labels).With(labelsAndValues...),
		PublishFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "publish_failures",
			Help:      "Number of blocks whose events the sink failed to take.",
		}, labels).With(labelsAndValues...),
		BlockWrites: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_writes",
			Help:      "Number of keys written by a block.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 4, 8),
		}, labels).With(labelsAndValues...),
		BlockProcessingTime: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_processing_time",
			Help:      "Time between the start and the commit of a block, in ms.",
			Buckets:   stdprometheus.LinearBuckets(1, 10, 10),
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Height:              discard.NewGauge(),
		Txs:                 discard.NewCounter(),
		FailedTxs:           discard.NewCounter(),
		Events:              discard.NewCounter(),
		PublishFailures:     discard.NewCounter(),
		BlockWrites:         discard.NewHistogram(),
		BlockProcessingTime: discard.NewHistogram(),
	}
}
