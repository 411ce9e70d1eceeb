package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the alert-analysis pipeline.
type Metrics struct {
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   *prometheus.HistogramVec
	AttemptsTotal      *prometheus.CounterVec
	RetriesTotal       prometheus.Counter
	ParseFailuresTotal prometheus.Counter
	LLMDuration        prometheus.Histogram
	NotifyTotal        *prometheus.CounterVec
	NotifyDuration     *prometheus.HistogramVec
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meraki_analyses_total",
			Help: "Total processed alerts by analysis provenance.",
		}, []string{"provenance"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meraki_analysis_duration_seconds",
			Help:    "End-to-end pipeline duration per alert in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~128s
		}, []string{"provenance"}),
		AttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meraki_invoke_attempts_total",
			Help: "Inference invocation attempts by tier and outcome.",
		}, []string{"tier", "outcome"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meraki_invoke_retries_total",
			Help: "Throttle retries across all tiers.",
		}),
		ParseFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meraki_parse_failures_total",
			Help: "Model responses that failed the structured-output contract.",
		}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meraki_llm_call_duration_seconds",
			Help:    "Duration of individual inference calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}),
		NotifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meraki_notifications_total",
			Help: "Notification deliveries by channel and outcome status.",
		}, []string{"channel", "status"}),
		NotifyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meraki_notification_duration_seconds",
			Help:    "Duration of channel deliveries in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8), // 50ms .. ~6.4s
		}, []string{"channel"}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.AttemptsTotal,
		m.RetriesTotal,
		m.ParseFailuresTotal,
		m.LLMDuration,
		m.NotifyTotal,
		m.NotifyDuration,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnLLMCall: func(durationSeconds float64, _ bool) {
			m.LLMDuration.Observe(durationSeconds)
		},
		OnAttempt: func(tier int, success bool, _ FailureClass) {
			outcome := "failure"
			if success {
				outcome = "success"
			}
			m.AttemptsTotal.WithLabelValues(tierLabel(tier), outcome).Inc()
		},
		OnRetry: func() {
			m.RetriesTotal.Inc()
		},
		OnParse: func(failed bool) {
			if failed {
				m.ParseFailuresTotal.Inc()
			}
		},
	}
}

// Observer returns the dispatcher callback recording delivery outcomes.
func (m *Metrics) Observer() func(channel string, status OutcomeStatus, durationSeconds float64) {
	return func(channel string, status OutcomeStatus, durationSeconds float64) {
		m.NotifyTotal.WithLabelValues(channel, string(status)).Inc()
		if status != OutcomeSkipped {
			m.NotifyDuration.WithLabelValues(channel).Observe(durationSeconds)
		}
	}
}

// ObserveAnalysis records one completed pipeline run.
func (m *Metrics) ObserveAnalysis(p Provenance, durationSeconds float64) {
	m.AnalysesTotal.WithLabelValues(string(p)).Inc()
	m.AnalysisDuration.WithLabelValues(string(p)).Observe(durationSeconds)
}

func tierLabel(tier int) string {
	switch tier {
	case 1:
		return "primary"
	case 2:
		return "secondary"
	case 3:
		return "fallback"
	default:
		return "override"
	}
}
