package triage

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrParseFailure indicates the model responded but produced nothing
// recognizable as the analysis contract. The invoker treats it like an
// invocation failure for the current tier.
var ErrParseFailure = errors.New("no recognizable analysis structure in model output")

// rawAnalysis is the loose shape we accept from the model before
// normalization. The upstream output format is not contractually
// guaranteed, so every field is optional here.
type rawAnalysis struct {
	Severity                string   `json:"severity"`
	Category                string   `json:"category"`
	Summary                 string   `json:"summary"`
	Impact                  string   `json:"impact"`
	Recommendations         []string `json:"recommendations"`
	RequiresImmediateAction bool     `json:"requires_immediate_action"`
	EstimatedResolutionTime string   `json:"estimated_resolution_time"`
}

// ParseAnalysis validates and normalizes raw model output into an
// Analysis. Unknown enum values are coerced to the nearest defined value
// rather than erroring; structurally absent output returns
// ErrParseFailure.
func ParseAnalysis(raw string) (*Analysis, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return nil, ErrParseFailure
	}

	var ra rawAnalysis
	if err := json.Unmarshal([]byte(body), &ra); err != nil {
		return nil, ErrParseFailure
	}

	a := &Analysis{
		Severity:                CoerceSeverity(ra.Severity),
		Category:                CoerceCategory(ra.Category),
		Summary:                 ra.Summary,
		Impact:                  ra.Impact,
		Recommendations:         ra.Recommendations,
		RequiresImmediateAction: ra.RequiresImmediateAction,
		EstimatedResolutionTime: ra.EstimatedResolutionTime,
		Provenance:              ProvenanceAI,
	}

	// Defaults for fields the model left out. The analysis stays usable
	// even when the response was partial.
	if a.Summary == "" {
		a.Summary = "Alert received but analysis incomplete"
	}
	if a.Impact == "" {
		a.Impact = "Unable to determine impact"
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{"Manual review required", "Check the Meraki dashboard"}
	}
	if a.EstimatedResolutionTime == "" {
		a.EstimatedResolutionTime = "Unknown"
	}

	return a, nil
}

// extractJSON locates the JSON object inside raw model output, stripping
// markdown code fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if after, found := strings.CutPrefix(s, "```json"); found {
		s = after
	} else if after, found := strings.CutPrefix(s, "```"); found {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// CoerceSeverity maps free-form severity text onto the defined enum:
// exact match first, then substring heuristics, then the MEDIUM default.
func CoerceSeverity(s string) Severity {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch Severity(up) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return Severity(up)
	}

	switch {
	case strings.Contains(up, "CRITICAL"):
		return SeverityCritical
	case strings.Contains(up, "HIGH"), strings.Contains(up, "URGENT"):
		return SeverityHigh
	case strings.Contains(up, "LOW"), strings.Contains(up, "MINOR"):
		return SeverityLow
	case strings.Contains(up, "INFO"):
		return SeverityInfo
	default:
		return SeverityMedium
	}
}

// CoerceCategory maps free-form category text onto the defined enum the
// same way. Unmatched values land on Informational.
func CoerceCategory(s string) Category {
	lo := strings.ToLower(strings.TrimSpace(s))
	switch lo {
	case "security":
		return CategorySecurity
	case "connectivity":
		return CategoryConnectivity
	case "performance":
		return CategoryPerformance
	case "configuration":
		return CategoryConfiguration
	case "hardware":
		return CategoryHardware
	case "informational":
		return CategoryInformational
	}

	switch {
	case strings.Contains(lo, "secur"):
		return CategorySecurity
	case strings.Contains(lo, "connect"), strings.Contains(lo, "network"):
		return CategoryConnectivity
	case strings.Contains(lo, "perform"):
		return CategoryPerformance
	case strings.Contains(lo, "config"), strings.Contains(lo, "setting"):
		return CategoryConfiguration
	case strings.Contains(lo, "hardware"), strings.Contains(lo, "device"):
		return CategoryHardware
	default:
		return CategoryInformational
	}
}
