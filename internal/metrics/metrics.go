package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ConnectionsActive tracks currently identified connections
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "battleship",
		Name:      "connections_active",
		Help:      "Number of identified live connections",
	})

	// CommandsTotal counts inbound commands by type
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "commands_total",
		Help:      "Inbound commands processed, by command type",
	}, []string{"command"})

	// CommandErrorsTotal counts rejected commands by error code
	CommandErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "command_errors_total",
		Help:      "Commands rejected, by error code",
	}, []string{"code"})

	// ShotsTotal counts resolved shots by outcome
	ShotsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "shots_total",
		Help:      "Shots resolved, by outcome",
	}, []string{"result"})

	// MatchesStartedTotal counts matches that reached the turn phase
	MatchesStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "matches_started_total",
		Help:      "Matches created from the waiting queue",
	})

	// MatchesFinishedTotal counts completed matches by how they ended
	MatchesFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "matches_finished_total",
		Help:      "Matches finished, by reason",
	}, []string{"reason"})

	// BroadcastDropsTotal counts events dropped by a saturated hub
	BroadcastDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "battleship",
		Name:      "broadcast_drops_total",
		Help:      "Match events dropped because a hub buffer was full",
	})

	// QueueDepth tracks the number of waiting players
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "battleship",
		Name:      "queue_depth",
		Help:      "Players waiting for a match slot",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsActive,
		CommandsTotal,
		CommandErrorsTotal,
		ShotsTotal,
		MatchesStartedTotal,
		MatchesFinishedTotal,
		BroadcastDropsTotal,
		QueueDepth,
	)
}
