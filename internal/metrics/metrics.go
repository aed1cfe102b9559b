package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_orders_created_total",
		Help: "Total number of orders registered with the engine.",
	})

	ReturnsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_returns_created_total",
		Help: "Total number of return requests opened.",
	})

	TransitionsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_applied_total",
		Help: "Total number of state transitions applied, by edge.",
	},
		[]string{"from", "to"},
	)

	TransitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_rejected_total",
		Help: "Total number of transition attempts rejected by validation, by edge.",
	},
		[]string{"from", "to"},
	)

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_notification_failures_total",
		Help: "Total number of customer notifications that failed and rolled a transition back.",
	})

	ConflictsResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_conflicts_resolved_total",
		Help: "Total number of state conflicts resolved, by winner.",
	},
		[]string{"winner"},
	)

	RepairsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_repairs_total",
		Help: "Total number of consistency repairs performed, by kind.",
	},
		[]string{"kind"},
	)

	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_sweeps_total",
		Help: "Total number of completed sweeper passes.",
	})

	SweepTransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_sweep_transitions_total",
		Help: "Total number of deadline transitions forced by the sweeper.",
	})

	SweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_sweep_errors_total",
		Help: "Total number of per-order failures during sweeps.",
	})

	StateCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lifecycle_state_cache_items",
		Help: "Current number of orders in the state cache.",
	})
)
