package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBOpenConns     *prometheus.GaugeVec
	DBIdleConns     *prometheus.GaugeVec
	DBWaitCount     *prometheus.GaugeVec

	// Бизнес-метрики бронирований
	BookingsTotal    *prometheus.CounterVec
	SlotQueriesTotal *prometheus.CounterVec
	TxRetriesTotal   *prometheus.CounterVec
}

// New регистрирует и возвращает метрики сервиса
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

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of database query errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		BookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Total number of booking operations by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		SlotQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_queries_total",
			Help:        "Total number of availability queries",
			ConstLabels: constLabels,
		}, []string{"result"}),

		TxRetriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "tx_serialization_retries_total",
			Help:        "Total number of serializable transaction retries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
	}
}

// Возможные значения label outcome для BookingsTotal
const (
	OutcomeCreated     = "created"
	OutcomeConflict    = "conflict"
	OutcomeCancelled   = "cancelled"
	OutcomeRescheduled = "rescheduled"
)

// IncBookingOutcome увеличивает счётчик операций с бронированиями
// Безопасен для nil-получателя: при выключенных метриках вызовы не делают ничего
func (m *Metrics) IncBookingOutcome(outcome string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

// Возможные значения label result для SlotQueriesTotal
const (
	SlotResultOK    = "ok"
	SlotResultEmpty = "empty"
	SlotResultError = "error"
)

// IncSlotQuery увеличивает счётчик запросов доступности
func (m *Metrics) IncSlotQuery(result string) {
	if m == nil {
		return
	}
	m.SlotQueriesTotal.WithLabelValues(result).Inc()
}

// IncTxRetry увеличивает счётчик повторов сериализуемых транзакций
func (m *Metrics) IncTxRetry(operation string) {
	if m == nil {
		return
	}
	m.TxRetriesTotal.WithLabelValues(operation).Inc()
}
