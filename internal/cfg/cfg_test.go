package cfg

import (
	"flag"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		Region:                "us-east-1",
		AnthropicAPIKey:       "sk-test-key",
		RequestBudgetSeconds:  25,
		MaxFieldLength:        1000,
		NotifyTimeoutSeconds:  10,
		SMTPPort:              587,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.Region != "us-east-1" {
		t.Errorf("Region = %q, want %q", c.Region, "us-east-1")
	}
	if c.RequestBudgetSeconds != 25 {
		t.Errorf("RequestBudgetSeconds = %d, want 25", c.RequestBudgetSeconds)
	}
	if c.MaxFieldLength != 1000 {
		t.Errorf("MaxFieldLength = %d, want 1000", c.MaxFieldLength)
	}
	if c.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", c.SMTPPort)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-http-port", "9090",
		"-region", "ap-southeast-1",
		"-model-override", "anthropic.claude-3-haiku-20240307-v1:0",
		"-anthropic-api-key", "sk-override",
		"-request-budget-seconds", "40",
		"-max-field-length", "500",
		"-google-chat-webhook-url", "https://chat.googleapis.com/v1/spaces/x/messages?key=y",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.Region != "ap-southeast-1" {
		t.Errorf("Region = %q, want %q", c.Region, "ap-southeast-1")
	}
	if c.ModelOverride != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("ModelOverride = %q", c.ModelOverride)
	}
	if c.AnthropicAPIKey != "sk-override" {
		t.Errorf("AnthropicAPIKey = %q, want %q", c.AnthropicAPIKey, "sk-override")
	}
	if c.RequestBudgetSeconds != 40 {
		t.Errorf("RequestBudgetSeconds = %d, want 40", c.RequestBudgetSeconds)
	}
	if c.MaxFieldLength != 500 {
		t.Errorf("MaxFieldLength = %d, want 500", c.MaxFieldLength)
	}
	if c.GoogleChatWebhookURL == "" {
		t.Error("GoogleChatWebhookURL not set from flag")
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"drain too low", func(c *Config) { c.DrainSeconds = 0 }, "DRAIN_SECONDS"},
		{"drain too high", func(c *Config) { c.DrainSeconds = 301 }, "DRAIN_SECONDS"},
		{"shutdown budget below drain", func(c *Config) { c.ShutdownBudgetSeconds = 30 }, "must be greater than DRAIN_SECONDS"},
		{"port zero", func(c *Config) { c.APIPort = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.APIPort = 70000 }, "HTTP_PORT"},
		{"region empty", func(c *Config) { c.Region = "" }, "REGION is required"},
		{"api key empty", func(c *Config) { c.AnthropicAPIKey = "" }, "ANTHROPIC_API_KEY is required"},
		{"budget zero", func(c *Config) { c.RequestBudgetSeconds = 0 }, "REQUEST_BUDGET_SECONDS"},
		{"field length zero", func(c *Config) { c.MaxFieldLength = 0 }, "MAX_FIELD_LENGTH"},
		{"field length huge", func(c *Config) { c.MaxFieldLength = 20000 }, "MAX_FIELD_LENGTH"},
		{"notify timeout zero", func(c *Config) { c.NotifyTimeoutSeconds = 0 }, "NOTIFY_TIMEOUT_SECONDS"},
		{"notify timeout >= budget", func(c *Config) { c.NotifyTimeoutSeconds = 25 }, "must be less than REQUEST_BUDGET_SECONDS"},
		{"smtp port invalid", func(c *Config) { c.SMTPPort = -1 }, "SMTP_PORT"},
		{"email partially configured", func(c *Config) { c.SMTPHost = "mail.example.com" }, "email configuration incomplete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validBase()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_EmailFullyConfigured(t *testing.T) {
	t.Parallel()

	c := validBase()
	c.SMTPHost = "mail.example.com"
	c.EmailFrom = "alerts@example.com"
	c.EmailRecipients = "ops@example.com,noc@example.com"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
