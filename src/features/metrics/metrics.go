package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanrelay_events_received_total",
			Help: "Total number of broadcast events received",
		},
		[]string{"kind"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanrelay_events_dropped_total",
			Help: "Total number of events that produced no command",
		},
		[]string{"kind"},
	)

	CommandsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanrelay_commands_emitted_total",
			Help: "Total number of commands emitted by the dispatcher",
		},
		[]string{"kind"},
	)

	HandoffRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanrelay_handoff_rejected_total",
			Help: "Total number of commands the scanner refused to queue",
		},
		[]string{"kind"},
	)
)

// Job metrics
var (
	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanrelay_jobs_finished_total",
			Help: "Total number of finished jobs by type and final status",
		},
		[]string{"type", "status"},
	)

	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scanrelay_jobs_running",
			Help: "Number of jobs currently running",
		},
	)
)
