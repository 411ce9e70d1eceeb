// Package cfg holds the application-specific configuration surface,
// following the common cfg.Registerable and cfg.Validatable interfaces.
package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// Config carries every knob the alert pipeline consumes. All fields are
// read-only after startup; the pipeline never mutates configuration.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int

	// Inference
	Region               string
	ModelOverride        string
	AnthropicAPIKey      string
	AnthropicBaseURL     string
	RequestBudgetSeconds int

	// Sanitization
	MaxFieldLength int

	// Notification channels
	NotifyTimeoutSeconds int
	GoogleChatWebhookURL string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFrom            string
	EmailRecipients      string

	// Misc
	DatabaseURL   string
	WebhookSecret string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.Region, "region", "us-east-1", "deployment region used to resolve the model tier table")
	fs.StringVar(&c.ModelOverride, "model-override", "", "explicit model id, bypasses tiered resolution when set")
	fs.StringVar(&c.AnthropicAPIKey, "anthropic-api-key", "", "API key for the inference endpoint")
	fs.StringVar(&c.AnthropicBaseURL, "anthropic-base-url", "", "inference endpoint base URL (empty = provider default)")
	fs.IntVar(&c.RequestBudgetSeconds, "request-budget-seconds", 25, "overall wall-clock budget per webhook request (1..120)")
	fs.IntVar(&c.MaxFieldLength, "max-field-length", 1000, "maximum length of any sanitized alert text field (1..10000)")
	fs.IntVar(&c.NotifyTimeoutSeconds, "notify-timeout-seconds", 10, "per-channel notification timeout (1..60)")
	fs.StringVar(&c.GoogleChatWebhookURL, "google-chat-webhook-url", "", "Google Chat incoming webhook URL (empty = channel skipped)")
	fs.StringVar(&c.SMTPHost, "smtp-host", "", "SMTP server host for email notifications (empty = channel skipped)")
	fs.IntVar(&c.SMTPPort, "smtp-port", 587, "SMTP server port (465 for implicit TLS, 587 for STARTTLS)")
	fs.StringVar(&c.SMTPUsername, "smtp-username", "", "SMTP username (optional)")
	fs.StringVar(&c.SMTPPassword, "smtp-password", "", "SMTP password (optional)")
	fs.StringVar(&c.EmailFrom, "email-from", "", "sender address for email notifications")
	fs.StringVar(&c.EmailRecipients, "email-recipients", "", "comma-separated recipient addresses for email notifications")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL for analysis history (empty = in-memory store)")
	fs.StringVar(&c.WebhookSecret, "webhook-secret", "", "shared secret Meraki embeds in webhook bodies (empty = no auth)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Region drives candidate resolution and must be set
	if c.Region == "" {
		errs = append(errs, errors.New("REGION is required"))
	}

	// API key is required for inference access
	if c.AnthropicAPIKey == "" {
		errs = append(errs, errors.New("ANTHROPIC_API_KEY is required"))
	}

	if c.RequestBudgetSeconds <= 0 || c.RequestBudgetSeconds > 120 {
		errs = append(errs, fmt.Errorf("invalid REQUEST_BUDGET_SECONDS %d (must be 1..120)", c.RequestBudgetSeconds))
	}
	if c.MaxFieldLength <= 0 || c.MaxFieldLength > 10000 {
		errs = append(errs, fmt.Errorf("invalid MAX_FIELD_LENGTH %d (must be 1..10000)", c.MaxFieldLength))
	}
	if c.NotifyTimeoutSeconds <= 0 || c.NotifyTimeoutSeconds > 60 {
		errs = append(errs, fmt.Errorf("invalid NOTIFY_TIMEOUT_SECONDS %d (must be 1..60)", c.NotifyTimeoutSeconds))
	}

	// Per-channel timeout has to fit inside the overall request budget,
	// otherwise a slow channel eats the whole response window.
	if c.NotifyTimeoutSeconds >= c.RequestBudgetSeconds {
		errs = append(errs, fmt.Errorf("NOTIFY_TIMEOUT_SECONDS %d must be less than REQUEST_BUDGET_SECONDS %d", c.NotifyTimeoutSeconds, c.RequestBudgetSeconds))
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d (must be 1..65535)", c.SMTPPort))
	}

	// Email is all-or-nothing: a host without sender/recipients (or the
	// reverse) is a misconfiguration we want to surface at startup, not a
	// silently skipped channel.
	var set, unset int
	for _, f := range []string{c.SMTPHost, c.EmailFrom, c.EmailRecipients} {
		if strings.TrimSpace(f) == "" {
			unset++
		} else {
			set++
		}
	}
	if set > 0 && unset > 0 {
		errs = append(errs, errors.New("email configuration incomplete: SMTP_HOST, EMAIL_FROM and EMAIL_RECIPIENTS must all be set together"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
