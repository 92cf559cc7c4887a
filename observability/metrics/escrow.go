package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Escrow aggregates the service-level collectors. One instance is shared by
// the RPC layer.
type Escrow struct {
	Actions        *prometheus.CounterVec
	PenaltyCharged prometheus.Counter
	OpenOrders     prometheus.Gauge
}

// NewEscrow registers the escrow collectors with the supplied registerer. A
// nil registerer falls back to the default registry.
func NewEscrow(reg prometheus.Registerer) *Escrow {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Escrow{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrowd",
			Subsystem: "orders",
			Name:      "actions_total",
			Help:      "Order actions processed, labelled by method and outcome.",
		}, []string{"method", "outcome"}),
		PenaltyCharged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "escrowd",
			Subsystem: "orders",
			Name:      "penalty_charged_total",
			Help:      "Cumulative penalty value diverted from sellers to buyers.",
		}),
		OpenOrders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "escrowd",
			Subsystem: "orders",
			Name:      "open_orders",
			Help:      "Orders currently in a non-terminal state.",
		}),
	}
}

// ObserveAction records one processed action.
func (m *Escrow) ObserveAction(method string, err error) {
	if m == nil || m.Actions == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Actions.WithLabelValues(method, outcome).Inc()
}
