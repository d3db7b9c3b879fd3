// Package metrics - счётчики Prometheus для бота.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics собирает счётчики на отдельном реестре.
// Нулевой указатель допустим: все методы тогда ничего не делают.
type Metrics struct {
	registry *prometheus.Registry

	events      *prometheus.CounterVec
	appended    *prometheus.CounterVec
	deleted     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	denied      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbot_events_total",
				Help: "Inbound messages by classified trigger",
			},
			[]string{"trigger"},
		),
		appended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbot_rows_appended_total",
				Help: "Rows appended to the store",
			},
			[]string{"table"},
		),
		deleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbot_rows_deleted_total",
				Help: "Rows deleted from the store",
			},
			[]string{"table"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbot_store_errors_total",
				Help: "Failed store and session operations",
			},
			[]string{"op"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetbot_validation_rejections_total",
				Help: "User input rejected by validation",
			},
			[]string{"reason"},
		),
		denied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "budgetbot_unauthorized_total",
				Help: "Messages from users outside the allow-list",
			},
		),
	}

	m.registry.MustRegister(
		m.events, m.appended, m.deleted, m.storeErrors, m.rejections, m.denied,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Event(trigger string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(trigger).Inc()
}

func (m *Metrics) RowAppended(table string) {
	if m == nil {
		return
	}
	m.appended.WithLabelValues(table).Inc()
}

func (m *Metrics) RowDeleted(table string) {
	if m == nil {
		return
	}
	m.deleted.WithLabelValues(table).Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Unauthorized() {
	if m == nil {
		return
	}
	m.denied.Inc()
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
