package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdatesTotal         *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	RateLimited          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	DialogueTurns        *prometheus.CounterVec
	LinksSent            prometheus.Counter
	WizardsCompleted     *prometheus.CounterVec
	WizardsCancelled     *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg; nil означает регистр по умолчанию.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		UpdatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_updates_total",
			Help: "Total number of processed updates",
		}, []string{"kind"}),

		ErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of panics recovered in update handlers",
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_rate_limited_total",
			Help: "Total number of updates dropped by the rate limiter",
		}),

		UpdateProcessingTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		DialogueTurns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_dialogue_turns_total",
			Help: "Selection dialogue turns by result",
		}, []string{"result"}),

		LinksSent: f.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_links_sent_total",
			Help: "Total number of catalog links sent",
		}),

		WizardsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_wizards_completed_total",
			Help: "Completed wizards by kind",
		}, []string{"wizard"}),

		WizardsCancelled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_wizards_cancelled_total",
			Help: "Cancelled wizards by kind",
		}, []string{"wizard"}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_notifications_total",
			Help: "Outbound notifications by kind and result",
		}, []string{"kind", "result"}),
	}
}

// Методы ниже безопасны для nil: обработчики в тестах работают без метрик.

func (m *Metrics) ObserveTurn(result string) {
	if m != nil {
		m.DialogueTurns.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) LinkSent() {
	if m != nil {
		m.LinksSent.Inc()
	}
}

func (m *Metrics) WizardCompleted(kind string) {
	if m != nil {
		m.WizardsCompleted.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) WizardCancelled(kind string) {
	if m != nil {
		m.WizardsCancelled.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Notification(kind string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}
