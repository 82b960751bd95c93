package autoupdate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// passes counts auto-update passes.
	// Labels: outcome (changed, unchanged, no_profile, failed)
	passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "autoupdate",
		Name:      "passes_total",
		Help:      "Auto-update passes by outcome",
	}, []string{"outcome"})

	// transitions counts applied stage changes.
	// Labels: from, to
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "autoupdate",
		Name:      "stage_transitions_total",
		Help:      "Stage changes applied by auto-update passes",
	}, []string{"from", "to"})

	// passDuration tracks how long a pass takes including persistence.
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sprout",
		Subsystem: "autoupdate",
		Name:      "pass_duration_seconds",
		Help:      "Duration of auto-update passes",
		Buckets:   prometheus.DefBuckets,
	})
)
