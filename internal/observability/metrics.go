package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	StoreRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jade_graph_requests_total",
		Help: "Total number of graph server requests by operation and outcome.",
	}, []string{"op", "outcome"})

	StoreRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jade_graph_request_seconds",
		Help:    "Time spent serving a graph server request.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jade_graph_connections",
		Help: "Current number of open websocket connections.",
	})

	SubscriptionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jade_graph_subscriptions",
		Help: "Current number of subscriptions held by websocket connections.",
	})

	EventsPushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jade_graph_events_pushed_total",
		Help: "Total number of object events pushed to websocket clients.",
	})

	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jade_graph_events_dropped_total",
		Help: "Total number of object events dropped because a client fell behind.",
	})

	ConceptOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jade_concept_operations_total",
		Help: "Total number of concept database operations by operation and outcome.",
	}, []string{"op", "outcome"})
)

// Outcome labels an error for the *_total counters
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRequest records one served graph request
func ObserveRequest(op string, start time.Time, err error) {
	StoreRequestsTotal.WithLabelValues(op, Outcome(err)).Inc()
	StoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
