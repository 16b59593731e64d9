package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the planner's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Plans            *prometheus.CounterVec
	PlanDuration     prometheus.Histogram
	EngineRuns       *prometheus.CounterVec
	EngineDuration   *prometheus.HistogramVec
	EngineQueueWait  prometheus.Histogram
	GraphStops       prometheus.Gauge
	GraphConnections prometheus.Gauge
	FeedReloads      *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Trip plans by outcome",
		}, []string{"outcome"}),
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "End-to-end planning time including verification",
			Buckets:   prometheus.DefBuckets,
		}),
		EngineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_runs_total",
			Help:      "Reasoning engine runs by engine and verdict",
		}, []string{"engine", "verdict"}),
		EngineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_run_duration_seconds",
			Help:      "Wall-clock time of reasoning engine subprocesses",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		}, []string{"engine"}),
		EngineQueueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_queue_wait_seconds",
			Help:      "Time spent waiting for a subprocess slot",
			Buckets:   prometheus.DefBuckets,
		}),
		GraphStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_stops",
			Help:      "Stops in the published transit graph",
		}),
		GraphConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_connections",
			Help:      "Connections in the published transit graph",
		}),
		FeedReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_reloads_total",
			Help:      "Feed reloads by result",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.Plans, m.PlanDuration, m.EngineRuns, m.EngineDuration, m.EngineQueueWait,
		m.GraphStops, m.GraphConnections, m.FeedReloads, m.HTTPRequests,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEngine records one engine run. Safe on a nil receiver.
func (m *Metrics) ObserveEngine(engine, verdict string, took time.Duration) {
	if m == nil {
		return
	}
	m.EngineRuns.WithLabelValues(engine, verdict).Inc()
	m.EngineDuration.WithLabelValues(engine).Observe(took.Seconds())
}

// ObserveQueueWait records time spent waiting for a subprocess slot.
func (m *Metrics) ObserveQueueWait(took time.Duration) {
	if m == nil {
		return
	}
	m.EngineQueueWait.Observe(took.Seconds())
}

// ObservePlan records a finished plan.
func (m *Metrics) ObservePlan(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Plans.WithLabelValues(outcome).Inc()
	m.PlanDuration.Observe(took.Seconds())
}

// SetGraphSize records the size of the published graph.
func (m *Metrics) SetGraphSize(stops, connections int) {
	if m == nil {
		return
	}
	m.GraphStops.Set(float64(stops))
	m.GraphConnections.Set(float64(connections))
}

// ObserveReload records a feed reload result ("ok" or "error").
func (m *Metrics) ObserveReload(result string) {
	if m == nil {
		return
	}
	m.FeedReloads.WithLabelValues(result).Inc()
}

// ObserveHTTP counts one served request by its route pattern.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
