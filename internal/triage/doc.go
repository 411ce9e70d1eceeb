// Package triage implements the alert-analysis pipeline: model-candidate
// resolution, the tiered inference invoker, the tolerant response-contract
// parser, rule-based fallback analysis, and notification dispatch. It
// defines the Service (per-request orchestration), Store interface
// (analysis history) and domain models.
package triage
