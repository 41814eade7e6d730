package metrics

import "github.com/prometheus/client_golang/prometheus"

// IdentityMetrics exposes counters for customer identity resolution.
type IdentityMetrics struct {
	resolutionsTotal *prometheus.CounterVec
}

func NewIdentityMetrics(reg prometheus.Registerer) *IdentityMetrics {
	m := &IdentityMetrics{
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "omnidesk",
			Subsystem: "identity",
			Name:      "resolutions_total",
			Help:      "Customer identity resolutions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolutionsTotal)
	return m
}

// ObserveResolution records one resolution outcome
// (matched, created, conflict, no_identifiers, error).
func (m *IdentityMetrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
}

// ConversationMetrics exposes counters for conversation mode changes and
// message appends.
type ConversationMetrics struct {
	takeoversTotal   *prometheus.CounterVec
	messagesTotal    *prometheus.CounterVec
	rejectedWrites   prometheus.Counter
	takeoverDuration prometheus.Histogram
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		takeoversTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "omnidesk",
			Subsystem: "conversation",
			Name:      "takeovers_total",
			Help:      "Takeover attempts by outcome (won, already_taken)",
		}, []string{"outcome"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "omnidesk",
			Subsystem: "conversation",
			Name:      "messages_total",
			Help:      "Messages appended by role",
		}, []string{"role"}),
		rejectedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "omnidesk",
			Subsystem: "conversation",
			Name:      "rejected_operator_writes_total",
			Help:      "Operator messages rejected because the conversation was still agent-controlled",
		}),
		takeoverDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "omnidesk",
			Subsystem: "conversation",
			Name:      "takeover_duration_seconds",
			Help:      "Latency of takeover operations against the store",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.takeoversTotal, m.messagesTotal, m.rejectedWrites, m.takeoverDuration)
	return m
}

// ObserveTakeover records one takeover attempt outcome.
func (m *ConversationMetrics) ObserveTakeover(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.takeoversTotal.WithLabelValues(outcome).Inc()
	m.takeoverDuration.Observe(seconds)
}

// ObserveMessage records one appended message by role.
func (m *ConversationMetrics) ObserveMessage(role string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(role).Inc()
}

// ObserveRejectedWrite records an operator message refused in ai mode.
func (m *ConversationMetrics) ObserveRejectedWrite() {
	if m == nil {
		return
	}
	m.rejectedWrites.Inc()
}
