package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций хранилища для label "result".
const (
	ResultOK           = "ok"
	ResultNotFound     = "not_found"
	ResultNotSupported = "not_supported"
	ResultError        = "error"
)

// Операции для label "operation".
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpFind    = "find"
	OpFindAll = "find_all"
)

// RepositoryMetrics содержит метрики хранилища заказов.
type RepositoryMetrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	itemsCreated prometheus.Counter
	eventsFailed prometheus.Counter
}

// NewRepositoryMetrics создаёт метрики в глобальном реестре Prometheus.
func NewRepositoryMetrics() *RepositoryMetrics {
	return NewRepositoryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewRepositoryMetricsWithRegisterer создаёт метрики в заданном реестре (удобно для тестов).
func NewRepositoryMetricsWithRegisterer(registerer prometheus.Registerer) *RepositoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &RepositoryMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_order_repository_operations_total",
			Help: "Total number of order repository operations by result",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "checkout_order_repository_duration_seconds",
			Help:    "Duration of order repository operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		itemsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_order_items_created_total",
			Help: "Total number of order items persisted",
		}),
		eventsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_order_events_failed_total",
			Help: "Total number of order events that could not be published",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation фиксирует результат и длительность операции хранилища.
func (m *RepositoryMetrics) RecordOperation(operation, result string, duration time.Duration) {
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordItemsCreated увеличивает счётчик сохранённых позиций.
func (m *RepositoryMetrics) RecordItemsCreated(n int) {
	if n <= 0 {
		return
	}
	m.itemsCreated.Add(float64(n))
}

// RecordEventFailed увеличивает счётчик неопубликованных событий.
func (m *RepositoryMetrics) RecordEventFailed() {
	m.eventsFailed.Inc()
}
