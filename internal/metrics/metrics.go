// Package metrics содержит Prometheus-метрики ядра модерации.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы голосования.
const (
	VoteCreated  = "created"
	VoteSwitched = "switched"
	VoteRemoved  = "removed"
)

// Metrics — набор метрик сервиса. Все методы безопасны для nil-получателя,
// чтобы сервисы можно было собирать без метрик (например, в тестах).
type Metrics struct {
	registry *prometheus.Registry

	votesTotal          *prometheus.CounterVec
	reportsTotal        *prometheus.CounterVec
	cascadeJunctions    prometheus.Counter
	partDeletionsTotal  prometheus.Counter
	flaggedCacheTotal   *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New создаёт метрики и регистрирует их в registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.votesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modplanner_votes_total",
			Help: "Vote actions applied to the vote ledger",
		},
		[]string{"outcome"}, // created, switched, removed
	)
	m.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modplanner_reports_total",
			Help: "Report submissions and review transitions",
		},
		[]string{"action"}, // created, resolved, dismissed
	)
	m.cascadeJunctions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modplanner_cascade_junctions_deleted_total",
		Help: "Build list junction rows removed by part deletion cascades",
	})
	m.partDeletionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modplanner_part_deletions_total",
		Help: "Global parts deleted",
	})
	m.flaggedCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modplanner_flagged_cache_total",
			Help: "Flagged list cache lookups",
		},
		[]string{"result"}, // hit, miss
	)
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modplanner_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modplanner_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Describe реализует prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.votesTotal.Describe(ch)
	m.reportsTotal.Describe(ch)
	m.cascadeJunctions.Describe(ch)
	m.partDeletionsTotal.Describe(ch)
	m.flaggedCacheTotal.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect реализует prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.votesTotal.Collect(ch)
	m.reportsTotal.Collect(ch)
	m.cascadeJunctions.Collect(ch)
	m.partDeletionsTotal.Collect(ch)
	m.flaggedCacheTotal.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordVote(outcome string) {
	if m == nil {
		return
	}
	m.votesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReport(action string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(action).Inc()
}

// RecordPartDeletion учитывает удаление детали и размер каскада.
func (m *Metrics) RecordPartDeletion(junctions int64) {
	if m == nil {
		return
	}
	m.partDeletionsTotal.Inc()
	m.cascadeJunctions.Add(float64(junctions))
}

func (m *Metrics) RecordFlaggedCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.flaggedCacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
