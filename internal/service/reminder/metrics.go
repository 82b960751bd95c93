package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisions counts per-point outcomes of scheduling passes.
	// Labels: outcome (scheduled, past, already_sent, permission_denied, registration_failed)
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "reminder",
		Name:      "decisions_total",
		Help:      "Campaign points considered by scheduling passes, by outcome",
	}, []string{"outcome"})

	// retirements counts campaigns cancelled.
	// Labels: cause (target_changed, stage_changed)
	retirements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "reminder",
		Name:      "campaign_retirements_total",
		Help:      "Reminder campaigns cancelled",
	}, []string{"cause"})

	// rearmed counts recorded points found unarmed and registered again.
	rearmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "reminder",
		Name:      "rearmed_points_total",
		Help:      "Recorded campaign points that were no longer armed and were registered again",
	})

	// coalesced counts callers that shared another caller's in-flight pass.
	coalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "reminder",
		Name:      "coalesced_calls_total",
		Help:      "ScheduleCampaign calls served by an in-flight pass for the same campaign",
	})
)
