// Package alert defines the inbound Meraki webhook payload and the
// sanitization boundary between untrusted alert content and the prompt.
package alert

import "errors"

// ErrMissingAlertType indicates a payload without the one field every
// Meraki webhook carries. Such payloads are rejected before any
// downstream processing.
var ErrMissingAlertType = errors.New("payload missing alertType")

// Event is the raw webhook body as received. Untrusted, arbitrary shape;
// unknown top-level keys are tolerated.
type Event map[string]any

// Validate checks the minimal structural requirements of an event.
func (e Event) Validate() error {
	at, ok := e["alertType"].(string)
	if !ok || at == "" {
		return ErrMissingAlertType
	}
	return nil
}

// String returns the value of a top-level string key, or fallback if the
// key is absent or not a string.
func (e Event) String(key, fallback string) string {
	if v, ok := e[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// SharedSecret returns the sharedSecret field Meraki includes in webhook
// bodies, or empty if absent.
func (e Event) SharedSecret() string {
	s, _ := e["sharedSecret"].(string)
	return s
}

// Sanitized is the bounded, prompt-safe projection of an Event. Every
// field is length-capped and stripped of characters outside the
// prompt-embedding allowlist.
type Sanitized struct {
	AlertType    string `json:"alert_type"`
	Organization string `json:"organization"`
	Network      string `json:"network"`
	AlertData    string `json:"alert_data"`
}

// alertContexts maps known Meraki alert types to a short description
// embedded in the prompt to orient the model.
var alertContexts = map[string]string{
	"sensor_change_detected":        "Environmental sensor reading has changed significantly",
	"appliance_connectivity_change": "Network appliance connectivity status has changed",
	"client_connectivity_change":    "Client device connectivity status has changed",
	"settings_changed":              "Network or device configuration has been modified",
	"firmware_upgrade_started":      "Device firmware upgrade process has begun",
	"firmware_upgrade_completed":    "Device firmware upgrade has finished",
}

// ContextFor returns additional context for a known alert type.
func ContextFor(alertType string) string {
	if c, ok := alertContexts[alertType]; ok {
		return c
	}
	return "Unknown alert type"
}
