package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics метрики сервиса быстрого бронирования
type Metrics struct {
	// HTTP-метрики (используются в middleware)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Бизнес-метрики мастера бронирования
	SessionsStarted            prometheus.Counter
	SessionsCompleted          prometheus.Counter
	SessionsClosed             prometheus.Counter
	AvailabilityQueriesTotal   *prometheus.CounterVec
	StaleAvailabilityDiscarded prometheus.Counter
	HoldsCreated               prometheus.Counter
	HoldsExpired               prometheus.Counter
	HoldConflicts              prometheus.Counter
	SubmissionConflicts        prometheus.Counter
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_sessions_started_total",
			Help:        "Total number of started wizard sessions",
			ConstLabels: labels,
		}),

		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_sessions_completed_total",
			Help:        "Total number of wizard sessions finished with a confirmed booking",
			ConstLabels: labels,
		}),

		SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_sessions_closed_total",
			Help:        "Total number of wizard sessions discarded before completion",
			ConstLabels: labels,
		}),

		AvailabilityQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "wizard_availability_queries_total",
			Help:        "Total number of court availability queries by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		StaleAvailabilityDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_stale_availability_discarded_total",
			Help:        "Total number of availability responses discarded as stale",
			ConstLabels: labels,
		}),

		HoldsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_holds_created_total",
			Help:        "Total number of reservation holds created",
			ConstLabels: labels,
		}),

		HoldsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_holds_expired_total",
			Help:        "Total number of reservation holds that reached expiry",
			ConstLabels: labels,
		}),

		HoldConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_hold_conflicts_total",
			Help:        "Total number of reservation hold creation conflicts",
			ConstLabels: labels,
		}),

		SubmissionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "wizard_submission_conflicts_total",
			Help:        "Total number of booking submission conflicts",
			ConstLabels: labels,
		}),
	}
}

// Availability query outcomes
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeClubClosed = "club_closed"
	OutcomeTransient  = "transient_error"
)

// RecordSessionStarted учитывает старт сессии мастера
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionCompleted учитывает сессию с подтвержденным бронированием
func (m *Metrics) RecordSessionCompleted() {
	m.SessionsCompleted.Inc()
}

// RecordSessionClosed учитывает сессию, закрытую без бронирования
func (m *Metrics) RecordSessionClosed() {
	m.SessionsClosed.Inc()
}

// RecordAvailabilityQuery учитывает завершенный запрос доступности
func (m *Metrics) RecordAvailabilityQuery(outcome string) {
	m.AvailabilityQueriesTotal.WithLabelValues(outcome).Inc()
}

// RecordStaleAvailabilityDiscarded учитывает отброшенный устаревший ответ
func (m *Metrics) RecordStaleAvailabilityDiscarded() {
	m.StaleAvailabilityDiscarded.Inc()
}

// RecordHoldCreated учитывает созданную временную бронь
func (m *Metrics) RecordHoldCreated() {
	m.HoldsCreated.Inc()
}

// RecordHoldExpired учитывает истекшую временную бронь
func (m *Metrics) RecordHoldExpired() {
	m.HoldsExpired.Inc()
}

// RecordHoldConflict учитывает конфликт при создании брони
func (m *Metrics) RecordHoldConflict() {
	m.HoldConflicts.Inc()
}

// RecordSubmissionConflict учитывает конфликт при финальной отправке
func (m *Metrics) RecordSubmissionConflict() {
	m.SubmissionConflicts.Inc()
}
