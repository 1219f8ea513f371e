package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextmic",
		Subsystem: "pipeline",
		Name:      "stage_transitions_total",
		Help:      "Stage transitions by destination stage and outcome.",
	}, []string{"stage", "outcome"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextmic",
		Subsystem: "pipeline",
		Name:      "loads_total",
		Help:      "Full pipeline loads by outcome.",
	}, []string{"outcome"})

	reminderInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextmic",
		Subsystem: "pipeline",
		Name:      "reminder_invocations_total",
		Help:      "Follow-up reminder function invocations by outcome.",
	}, []string{"outcome"})
)
