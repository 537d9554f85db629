package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mente_aberta"

// Metrics holds domain counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	inviteValidations *prometheus.CounterVec
	inviteRedemptions *prometheus.CounterVec
	authEvents        *prometheus.CounterVec
}

// NewMetrics registers the domain counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		inviteValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "invite", "validations_total"),
			Help: "Invite code validations by result.",
		}, []string{"result"}),
		inviteRedemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "invite", "redemptions_total"),
			Help: "Invite code redemptions by result.",
		}, []string{"result"}),
		authEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(metricsNamespace, "auth", "events_total"),
			Help: "Authentication events by kind.",
		}, []string{"event"}),
	}
}

// InviteValidated counts a validation outcome ("valid" or a failure reason).
func (m *Metrics) InviteValidated(result string) {
	if m == nil {
		return
	}
	m.inviteValidations.WithLabelValues(result).Inc()
}

// InviteRedeemed counts a redemption outcome.
func (m *Metrics) InviteRedeemed(result string) {
	if m == nil {
		return
	}
	m.inviteRedemptions.WithLabelValues(result).Inc()
}

// AuthEvent counts sign-ups, sign-ins and related events.
func (m *Metrics) AuthEvent(event string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event).Inc()
}
