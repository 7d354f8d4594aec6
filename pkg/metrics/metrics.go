// Package metrics exposes the Prometheus collectors for sessions, logins and
// persistence. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "directory"

type Metrics struct {
	ActionsTotal       *prometheus.CounterVec
	CommandsTotal      *prometheus.CounterVec
	CommandFailures    *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	SessionsActive     prometheus.Gauge
	SessionsRejected   prometheus.Counter
	NotificationsTotal *prometheus.CounterVec
	IdleLogouts        prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers every collector on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions dispatched to session reducers",
		}, []string{"type"}),
		CommandsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_commands_total",
			Help:      "Persistence commands executed against the remote store",
		}, []string{"kind"}),
		CommandFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_command_failures_total",
			Help:      "Persistence commands that failed",
		}, []string{"kind"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by surface and outcome",
		}, []string{"surface", "outcome"}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open device sessions",
		}),
		SessionsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_rejected_total",
			Help:      "Sessions refused because the cap was reached",
		}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications queued by template and result",
		}, []string{"template", "result"}),
		IdleLogouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_idle_logouts_total",
			Help:      "Admin sessions closed for inactivity",
		}),
		gatherer: reg,
	}
}

func (m *Metrics) Action(typ string) {
	if m != nil {
		m.ActionsTotal.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) Command(kind string, err error) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(kind).Inc()
	if err != nil {
		m.CommandFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Login(surface, outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(surface, outcome).Inc()
	}
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SessionsActive.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.SessionsActive.Dec()
	}
}

func (m *Metrics) SessionRejected() {
	if m != nil {
		m.SessionsRejected.Inc()
	}
}

func (m *Metrics) Notification(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsTotal.WithLabelValues(template, result).Inc()
}

func (m *Metrics) IdleLogout() {
	if m != nil {
		m.IdleLogouts.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
