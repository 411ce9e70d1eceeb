package alert

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultMaxFieldLen is the truncation cap applied to every sanitized
// text field when no explicit limit is configured.
const DefaultMaxFieldLen = 1000

// injectionPatterns match instruction-override phrasing and role-switch
// tokens that must never reach the prompt. Matched case-insensitively
// and replaced before the allowlist filter runs, since the filter keeps
// word characters and would pass these phrases through untouched.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|context)`),
	regexp.MustCompile(`(?i)(new|updated|revised)\s+(system\s+)?instructions?\s*:`),
	regexp.MustCompile(`(?im)^\s*(system|assistant|human|user)\s*:`),
	regexp.MustCompile(`<\|[a-z_]+\|>`),
}

// allowlist removes everything outside the character set considered safe
// for prompt embedding: word characters, whitespace, and -.@:/
var allowlist = regexp.MustCompile(`[^\w\s\-\.\@\:\/]`)

// Sanitizer normalizes and bounds raw alert input. It never fails:
// missing fields default to a neutral placeholder and oversized values
// are truncated, not rejected.
type Sanitizer struct {
	maxLen int
}

// NewSanitizer returns a Sanitizer that caps every text field at maxLen
// characters. maxLen <= 0 selects DefaultMaxFieldLen.
func NewSanitizer(maxLen int) *Sanitizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxFieldLen
	}
	return &Sanitizer{maxLen: maxLen}
}

// Sanitize projects a raw event into its bounded, prompt-safe form.
func (s *Sanitizer) Sanitize(ev Event) *Sanitized {
	return &Sanitized{
		AlertType:    s.Clean(ev.String("alertType", "Unknown")),
		Organization: s.Clean(ev.String("organizationName", "Unknown")),
		Network:      s.Clean(ev.String("networkName", "Unknown")),
		AlertData:    s.renderAlertData(ev["alertData"]),
	}
}

// Clean applies the full sanitization chain to a single string:
// injection-phrase removal, allowlist filtering, then truncation.
func (s *Sanitizer) Clean(v string) string {
	for _, re := range injectionPatterns {
		v = re.ReplaceAllString(v, "")
	}
	v = allowlist.ReplaceAllString(v, "")
	v = strings.TrimSpace(v)
	if len(v) > s.maxLen {
		v = v[:s.maxLen]
	}
	return v
}

// renderAlertData sanitizes the nested alert-data object recursively and
// renders it as indented key/value text. The result is treated as opaque
// text from here on; structure only survives for readability.
func (s *Sanitizer) renderAlertData(data any) string {
	clean := s.sanitizeValue(data)
	if clean == nil {
		return ""
	}
	out, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return ""
	}
	rendered := string(out)
	if len(rendered) > s.maxLen {
		rendered = rendered[:s.maxLen]
	}
	return rendered
}

// sanitizeValue walks arbitrary decoded JSON, cleaning every string leaf.
// Map keys are cleaned too: injected content can hide in either position.
func (s *Sanitizer) sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return s.Clean(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[s.Clean(k)] = s.sanitizeValue(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, s.sanitizeValue(item))
		}
		return out
	default:
		// numbers, bools, nil pass through unchanged
		return v
	}
}
