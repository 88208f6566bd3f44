package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every visualizer metric; it is served by Handler.
var Registry = prometheus.NewRegistry()

var (
	// ScenarioFetchTotal counts scenario fetches by result (success/error).
	ScenarioFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_visualizer_scenario_fetch_total",
			Help: "Total number of scenario fetches from the data source.",
		},
		[]string{"source", "result"},
	)

	// PlaybackCommandsTotal counts Start/Stop commands and whether they were applied.
	PlaybackCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_visualizer_playback_commands_total",
			Help: "Total number of playback commands by command and outcome (applied/ignored).",
		},
		[]string{"command", "outcome"},
	)

	// PlaybackCompleted is 1 once the current scenario has auto-completed.
	PlaybackCompleted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenario_visualizer_playback_completed",
			Help: "Playback completion state (1=completed, 0=playing).",
		},
	)

	// VehiclesRendered is the number of vehicle elements on the board.
	VehiclesRendered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenario_visualizer_vehicles_rendered",
			Help: "Number of vehicle elements currently rendered on the board.",
		},
	)

	// BoardClients is the number of connected websocket clients.
	BoardClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scenario_visualizer_board_clients",
			Help: "Number of connected board websocket clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		ScenarioFetchTotal,
		PlaybackCommandsTotal,
		PlaybackCompleted,
		VehiclesRendered,
		BoardClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
