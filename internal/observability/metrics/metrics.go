package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "inmobiliaria"

// LeadMetrics exposes counters for the lead store and API.
type LeadMetrics struct {
	createdTotal  *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
	exportsTotal  prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Leads persisted, by classification and source",
		}, []string{"classification", "source"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "storage_errors_total",
			Help:      "Lead store failures by operation",
		}, []string{"op"}),
		exportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "exports_total",
			Help:      "CSV exports served",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.storageErrors, m.exportsTotal)
	return m
}

func (m *LeadMetrics) ObserveCreated(classification, source string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(classification, source).Inc()
}

func (m *LeadMetrics) ObserveStorageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}

func (m *LeadMetrics) ObserveExport() {
	if m == nil {
		return
	}
	m.exportsTotal.Inc()
}

// ConversationMetrics exposes counters/histograms for chat turns.
type ConversationMetrics struct {
	turnsTotal      *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	extractFailures prometheus.Counter
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns by outcome (reply, fallback, qualified)",
		}, []string{"outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "llm_latency_seconds",
			Help:      "Latency of language model completions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		extractFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "data_summary_parse_errors_total",
			Help:      "Data-summary blocks that could not be parsed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.llmLatency, m.extractFailures)
	return m
}

func (m *ConversationMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveLLMLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(status).Observe(seconds)
}

func (m *ConversationMetrics) ObserveParseError() {
	if m == nil {
		return
	}
	m.extractFailures.Inc()
}
