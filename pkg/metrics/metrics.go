package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	DBPoolOpenConns *prometheus.GaugeVec
	DBPoolIdleConns *prometheus.GaugeVec
	DBPoolInUse     *prometheus.GaugeVec

	SchedulerRunsTotal     *prometheus.CounterVec
	SchedulerItemsTotal    *prometheus.CounterVec
	SchedulerItemsFailed   *prometheus.CounterVec
	EventsPublishedTotal   *prometheus.CounterVec
	EventsPublishingFailed *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		DBPoolOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of database connections in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SchedulerRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_runs_total",
			Help:        "Total number of scheduler job runs",
			ConstLabels: constLabels,
		}, []string{"job", "status"}),

		SchedulerItemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_items_processed_total",
			Help:        "Total number of items processed by scheduler jobs",
			ConstLabels: constLabels,
		}, []string{"job"}),

		SchedulerItemsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_items_failed_total",
			Help:        "Total number of items failed in scheduler jobs",
			ConstLabels: constLabels,
		}, []string{"job"}),

		EventsPublishedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Total number of domain events published",
			ConstLabels: constLabels,
		}, []string{"type"}),

		EventsPublishingFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_publishing_failed_total",
			Help:        "Total number of domain event publish failures",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery записывает метрики запроса к БД
func (m *Metrics) ObserveDBQuery(operation, status string, duration time.Duration) {
	m.DBQueriesTotal.WithLabelValues(operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
