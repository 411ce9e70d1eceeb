package triage

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAnalysis_CleanJSON(t *testing.T) {
	t.Parallel()

	raw := `{
		"severity": "HIGH",
		"category": "Connectivity",
		"summary": "Uplink flapped",
		"impact": "Branch offline intermittently",
		"recommendations": ["Check the WAN circuit", "Review modem logs"],
		"requires_immediate_action": true,
		"estimated_resolution_time": "1-2 hours"
	}`

	a, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}
	if a.Severity != SeverityHigh {
		t.Errorf("severity = %q, want %q", a.Severity, SeverityHigh)
	}
	if a.Category != CategoryConnectivity {
		t.Errorf("category = %q, want %q", a.Category, CategoryConnectivity)
	}
	if !a.RequiresImmediateAction {
		t.Error("requires_immediate_action lost")
	}
	if a.Provenance != ProvenanceAI {
		t.Errorf("provenance = %q, want %q", a.Provenance, ProvenanceAI)
	}
	if len(a.Recommendations) != 2 {
		t.Errorf("recommendations = %v", a.Recommendations)
	}
}

func TestParseAnalysis_CodeFences(t *testing.T) {
	t.Parallel()

	fenced := "```json\n{\"severity\":\"LOW\",\"category\":\"Configuration\",\"summary\":\"ok\"}\n```"
	a, err := ParseAnalysis(fenced)
	if err != nil {
		t.Fatalf("ParseAnalysis fenced: %v", err)
	}
	if a.Severity != SeverityLow || a.Category != CategoryConfiguration {
		t.Errorf("got %q/%q", a.Severity, a.Category)
	}

	bare := "```\n{\"severity\":\"INFO\"}\n```"
	a, err = ParseAnalysis(bare)
	if err != nil {
		t.Fatalf("ParseAnalysis bare fence: %v", err)
	}
	if a.Severity != SeverityInfo {
		t.Errorf("severity = %q, want %q", a.Severity, SeverityInfo)
	}
}

func TestParseAnalysis_SurroundingProse(t *testing.T) {
	t.Parallel()

	raw := "Here is my analysis of the alert:\n{\"severity\":\"critical\",\"category\":\"security\"}\nLet me know if you need more."
	a, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("severity = %q, want %q", a.Severity, SeverityCritical)
	}
	if a.Category != CategorySecurity {
		t.Errorf("category = %q, want %q", a.Category, CategorySecurity)
	}
}

func TestParseAnalysis_DefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	a, err := ParseAnalysis(`{"severity":"HIGH"}`)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}
	if a.Summary == "" || a.Impact == "" || a.EstimatedResolutionTime == "" {
		t.Errorf("missing defaults: %+v", a)
	}
	if len(a.Recommendations) == 0 {
		t.Error("recommendations default not applied")
	}
}

func TestParseAnalysis_NoStructure(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "I'm sorry, I cannot analyze this.", "severity: HIGH", "{not json at all]"} {
		if _, err := ParseAnalysis(raw); !errors.Is(err, ErrParseFailure) {
			t.Errorf("ParseAnalysis(%q) error = %v, want ErrParseFailure", raw, err)
		}
	}
}

func TestCoerceSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Severity
	}{
		{"CRITICAL", SeverityCritical},
		{"critical", SeverityCritical},
		{"This is quite critical!", SeverityCritical},
		{"HIGH", SeverityHigh},
		{"urgent", SeverityHigh},
		{"medium", SeverityMedium},
		{"low priority", SeverityLow},
		{"minor", SeverityLow},
		{"informational", SeverityInfo},
		{"", SeverityMedium},
		{"banana", SeverityMedium},
	}

	for _, tt := range tests {
		if got := CoerceSeverity(tt.in); got != tt.want {
			t.Errorf("CoerceSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoerceCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Category
	}{
		{"Security", CategorySecurity},
		{"security incident", CategorySecurity},
		{"Connectivity", CategoryConnectivity},
		{"network issue", CategoryConnectivity},
		{"Performance", CategoryPerformance},
		{"Configuration", CategoryConfiguration},
		{"settings drift", CategoryConfiguration},
		{"Hardware", CategoryHardware},
		{"device failure", CategoryHardware},
		{"Informational", CategoryInformational},
		{"", CategoryInformational},
		{"System Error", CategoryInformational},
	}

	for _, tt := range tests {
		if got := CoerceCategory(tt.in); got != tt.want {
			t.Errorf("CoerceCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Classification is idempotent: re-serializing a parsed analysis and
// parsing it again maps to the same enum values.
func TestParseAnalysis_RoundTrip(t *testing.T) {
	t.Parallel()

	first, err := ParseAnalysis(`{"severity":"mostly harmless but HIGH-ish","category":"some networking thing","summary":"s"}`)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}

	out, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	second, err := ParseAnalysis(string(out))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}

	if second.Severity != first.Severity {
		t.Errorf("severity drifted: %q -> %q", first.Severity, second.Severity)
	}
	if second.Category != first.Category {
		t.Errorf("category drifted: %q -> %q", first.Category, second.Category)
	}
}
