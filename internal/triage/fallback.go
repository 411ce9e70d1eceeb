package triage

import "strings"

// fallbackRule is one static classification used when every inference
// tier has failed.
type fallbackRule struct {
	severity Severity
	category Category
	summary  string
	impact   string
}

// fallbackRules keys exact alert types to a deterministic classification.
var fallbackRules = map[string]fallbackRule{
	"appliance_connectivity_change": {SeverityMedium, CategoryConnectivity, "Network appliance connectivity status has changed", "Sites behind the appliance may be unreachable"},
	"client_connectivity_change":    {SeverityMedium, CategoryConnectivity, "Client device connectivity status has changed", "Affected clients may have lost network access"},
	"uplink_status_change":          {SeverityHigh, CategoryConnectivity, "Uplink status has changed", "WAN connectivity may be degraded or down"},
	"settings_changed":              {SeverityLow, CategoryConfiguration, "Network or device configuration has been modified", "Behavior may differ from the previously reviewed configuration"},
	"firmware_upgrade_started":      {SeverityInfo, CategoryConfiguration, "Device firmware upgrade process has begun", "Brief service interruption possible during the upgrade window"},
	"firmware_upgrade_completed":    {SeverityInfo, CategoryConfiguration, "Device firmware upgrade has finished", "No impact expected; verify device health"},
	"sensor_change_detected":        {SeverityLow, CategoryInformational, "Environmental sensor reading has changed significantly", "Physical environment may need attention"},
	"rogue_ap_detected":             {SeverityHigh, CategorySecurity, "A rogue access point has been detected", "Unauthorized devices may be intercepting traffic"},
	"ids_alerted":                   {SeverityHigh, CategorySecurity, "Intrusion detection has raised an alert", "Potential security incident in progress"},
}

// FallbackAnalysis synthesizes a deterministic analysis from static
// rules keyed on the alert type. This is the degrade path: the pipeline
// always produces some analysis, never aborting purely because
// inference is unavailable.
func FallbackAnalysis(alertType string) *Analysis {
	rule, ok := fallbackRules[alertType]
	if !ok {
		rule = classifyByKeyword(alertType)
	}

	return &Analysis{
		Severity: rule.severity,
		Category: rule.category,
		Summary:  rule.summary,
		Impact:   rule.impact,
		Recommendations: []string{
			"Manual review required",
			"Check the Meraki dashboard for details",
			"Contact the network administrator if the condition persists",
		},
		RequiresImmediateAction: rule.severity == SeverityCritical || rule.severity == SeverityHigh,
		EstimatedResolutionTime: "Unknown",
		Provenance:              ProvenanceFallback,
	}
}

// classifyByKeyword covers alert types absent from the rule table.
func classifyByKeyword(alertType string) fallbackRule {
	lo := strings.ToLower(alertType)
	switch {
	case strings.Contains(lo, "connectivity"), strings.Contains(lo, "uplink"), strings.Contains(lo, "vpn"):
		return fallbackRule{SeverityMedium, CategoryConnectivity, "Connectivity-related alert received", "Network reachability may be affected"}
	case strings.Contains(lo, "security"), strings.Contains(lo, "ids"), strings.Contains(lo, "rogue"), strings.Contains(lo, "malware"):
		return fallbackRule{SeverityHigh, CategorySecurity, "Security-related alert received", "Potential security exposure"}
	case strings.Contains(lo, "usage"), strings.Contains(lo, "utilization"), strings.Contains(lo, "latency"):
		return fallbackRule{SeverityMedium, CategoryPerformance, "Performance-related alert received", "Service quality may be degraded"}
	case strings.Contains(lo, "settings"), strings.Contains(lo, "config"), strings.Contains(lo, "firmware"):
		return fallbackRule{SeverityLow, CategoryConfiguration, "Configuration-related alert received", "Behavior may differ from the reviewed configuration"}
	case strings.Contains(lo, "hardware"), strings.Contains(lo, "power"), strings.Contains(lo, "cable"):
		return fallbackRule{SeverityMedium, CategoryHardware, "Hardware-related alert received", "A device may need physical attention"}
	default:
		return fallbackRule{SeverityMedium, CategoryInformational, "Alert received but automated analysis was unavailable", "Unable to determine impact, manual review required"}
	}
}
