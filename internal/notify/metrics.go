package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pendingReminders is the number of reminders currently armed.
	pendingReminders = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sprout",
		Subsystem: "notify",
		Name:      "pending_reminders",
		Help:      "Reminders currently armed in the local registrar",
	})

	// deliveries counts fired reminders.
	// Labels: kind, status (delivered, failed)
	deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sprout",
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Reminders handed to the sink when their instant arrived",
	}, []string{"kind", "status"})
)
