package matchorder

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "matchorder"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of bids created, labeled by pair.
	BidsAdded metrics.Counter
	// Number of cancel commands applied, labeled by pair.
	BidsCancelled metrics.Counter
	// Number of settled fills, labeled by pair.
	Fills metrics.Counter
	// Total filled amount, labeled by pair.
	FilledAmount metrics.Counter
	// Number of fills whose settlement failed, labeled by pair.
	MatchFails metrics.Counter
	// Number of price levels a block's match walk visited.
	LevelsWalked metrics.Histogram
	// Time spent in OnFinalize.
	FinalizeDurationSeconds metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	pairLabels := append(append([]string{}, labels...), "pair")
	return &Metrics{
		BidsAdded: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "bids_added",
			Help:      "Number of bids created.",
		}, pairLabels).With(labelsAndValues...),
		BidsCancelled: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "bids_cancelled",
			Help:      "Number of cancel commands applied.",
		}, pairLabels).With(labelsAndValues...),
		Fills: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "fills",
			Help:      "Number of settled fills.",
		}, pairLabels).With(labelsAndValues...),
		FilledAmount: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "filled_amount",
			Help:      "Total filled amount in base token units.",
		}, pairLabels).With(labelsAndValues...),
		MatchFails: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "match_fails",
			Help:      "Number of fills whose settlement failed.",
		}, pairLabels).With(labelsAndValues...),
		LevelsWalked: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "levels_walked",
			Help:      "Number of price levels visited by the match walks of a block.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 2, 10),
		}, labels).With(labelsAndValues...),
		FinalizeDurationSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "finalize_duration_seconds",
			Help:      "Time spent ingesting and matching the commands of a block.",
			Buckets:   stdprometheus.ExponentialBucketsRange(0.0001, 10, 10),
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		BidsAdded:               discard.NewCounter(),
		BidsCancelled:           discard.NewCounter(),
		Fills:                   discard.NewCounter(),
		FilledAmount:            discard.NewCounter(),
		MatchFails:              discard.NewCounter(),
		LevelsWalked:            discard.NewHistogram(),
		FinalizeDurationSeconds: discard.NewHistogram(),
	}
}
