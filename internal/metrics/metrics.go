package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_dispatch_total",
			Help: "Tool dispatches by tool name and outcome",
		},
		[]string{"tool", "outcome"},
	)

	AuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_auth_total",
			Help: "Authentication attempts by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
)

// Init registers metrics with the default Prometheus registry.
func Init() {
	prometheus.MustRegister(DispatchTotal)
	prometheus.MustRegister(AuthTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
