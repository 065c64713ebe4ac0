package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики каталога
// ============================================================

const namespace = "directory"

// Результаты приема записи
const (
	ResultAccepted         = "accepted"
	ResultInvalid          = "invalid"
	ResultInvalidSignature = "invalid_signature"
	ResultLowBalance       = "insufficient_balance"
	ResultOracleError      = "oracle_error"
	ResultStoreError       = "store_error"
	ResultOK               = "ok"
	ResultError            = "error"
	ResultCircuitOpen      = "circuit_open"
)

// ============ Прием и выдача записей ============

// EntriesAdmitted - попытки добавить запись по результату
var EntriesAdmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admission",
		Name:      "entries_total",
		Help:      "Entry submissions by result",
	},
	[]string{"result"},
)

// RetrievalLatency - время выдачи записей
var RetrievalLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "retrieval",
		Name:      "latency_ms",
		Help:      "Time to read and filter entries in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	},
	[]string{"route"},
)

// EntriesSuppressed - записи, скрытые черным списком
var EntriesSuppressed = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retrieval",
		Name:      "entries_suppressed_total",
		Help:      "Entries dropped from responses by the blacklist",
	},
)

// ============ Оракул ============

// OracleRequests - запросы к оракулу баланса и merit
var OracleRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "requests_total",
		Help:      "Requests to the balance oracle by endpoint and result",
	},
	[]string{"endpoint", "result"},
)

// OracleLatency - время ответа оракула
var OracleLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "latency_ms",
		Help:      "Oracle response time in milliseconds",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	},
	[]string{"endpoint"},
)

// ============ HTTP и поток ============

// HTTPRequests - обработанные HTTP запросы
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status",
	},
	[]string{"method", "status"},
)

// StreamClients - подключенные websocket клиенты
var StreamClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "clients",
		Help:      "Connected entry stream clients",
	},
)

// StreamDropped - сообщения, не доставленные медленным клиентам
var StreamDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "dropped_messages_total",
		Help:      "Stream messages dropped because a client buffer was full",
	},
)

// ============ Хелперы ============

func RecordAdmission(result string) {
	EntriesAdmitted.WithLabelValues(result).Inc()
}

func RecordRetrieval(route string, started time.Time, suppressed int) {
	RetrievalLatency.WithLabelValues(route).Observe(float64(time.Since(started).Microseconds()) / 1000)
	if suppressed > 0 {
		EntriesSuppressed.Add(float64(suppressed))
	}
}

func RecordOracleRequest(endpoint, result string, latency time.Duration) {
	OracleRequests.WithLabelValues(endpoint, result).Inc()
	OracleLatency.WithLabelValues(endpoint).Observe(float64(latency.Microseconds()) / 1000)
}
