package triage

import (
	"fmt"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/alert"
)

// buildPrompt embeds the sanitized alert into the fixed analysis prompt.
// The template both requests and documents the expected structured-output
// shape; ParseAnalysis is the other half of this contract.
func buildPrompt(al *alert.Sanitized) string {
	data := al.AlertData
	if data == "" {
		data = "none"
	}

	return fmt.Sprintf(`You are a network infrastructure expert analyzing Cisco Meraki webhook alerts.

Analyze this alert and respond in JSON format:

Alert Details:
- Alert Type: %s
- Context: %s
- Organization: %s
- Network: %s
- Alert Data:
%s

Respond with ONLY a JSON object in this exact format:
{
    "severity": "CRITICAL|HIGH|MEDIUM|LOW|INFO",
    "category": "Security|Connectivity|Performance|Configuration|Hardware|Informational",
    "summary": "Clear description of what happened",
    "impact": "Potential impact on network operations",
    "recommendations": ["Action 1", "Action 2", "Action 3"],
    "requires_immediate_action": true,
    "estimated_resolution_time": "Time estimate"
}`,
		al.AlertType,
		alert.ContextFor(al.AlertType),
		al.Organization,
		al.Network,
		data,
	)
}
