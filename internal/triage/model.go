package triage

import "time"

// Severity is the normalized alert severity produced by analysis.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Category classifies what part of the network the alert concerns.
type Category string

const (
	CategorySecurity      Category = "Security"
	CategoryConnectivity  Category = "Connectivity"
	CategoryPerformance   Category = "Performance"
	CategoryConfiguration Category = "Configuration"
	CategoryHardware      Category = "Hardware"
	CategoryInformational Category = "Informational"
)

// Provenance records whether an analysis came from the model or from the
// deterministic degrade path.
type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
)

// Analysis is the structured triage result for one alert. Immutable once
// produced.
type Analysis struct {
	Severity                Severity   `json:"severity"`
	Category                Category   `json:"category"`
	Summary                 string     `json:"summary"`
	Impact                  string     `json:"impact"`
	Recommendations         []string   `json:"recommendations"`
	RequiresImmediateAction bool       `json:"requires_immediate_action"`
	EstimatedResolutionTime string     `json:"estimated_resolution_time"`
	Provenance              Provenance `json:"provenance"`
}

// OutcomeStatus is the delivery state of one notification channel.
type OutcomeStatus string

const (
	OutcomeDelivered OutcomeStatus = "delivered"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// Outcome records the result of one channel delivery for one request.
type Outcome struct {
	Channel string        `json:"channel"`
	Status  OutcomeStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// Attempt is one entry in the append-only invocation log for a request.
// Kept for observability; never surfaced to the external caller.
type Attempt struct {
	Tier    int          `json:"tier"`
	Ref     string       `json:"ref"`
	Profile bool         `json:"profile"`
	Success bool         `json:"success"`
	Class   FailureClass `json:"class,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Result is the full record of one processed webhook: the sanitized alert
// identity, the analysis, the invocation log and the per-channel
// notification outcomes. Persisted to the history store after the
// response is assembled.
type Result struct {
	ID            string    `json:"id"`
	AlertType     string    `json:"alert_type"`
	Organization  string    `json:"organization"`
	Network       string    `json:"network"`
	Analysis      *Analysis `json:"analysis"`
	Attempts      []Attempt `json:"attempts,omitempty"`
	Notifications []Outcome `json:"notifications"`
	CreatedAt     time.Time `json:"created_at"`
	Duration      float64   `json:"duration_seconds"`
}
