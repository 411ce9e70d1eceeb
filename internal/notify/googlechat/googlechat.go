// Package googlechat sends alert analyses to Google Chat via incoming
// webhooks.
package googlechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

const httpTimeout = 10 * time.Second

// Notifier posts alert analyses to a Google Chat webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a Google Chat notifier. An empty webhookURL leaves the
// channel unconfigured.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Name implements triage.Notifier.
func (n *Notifier) Name() string { return "google_chat" }

// Configured implements triage.Notifier.
func (n *Notifier) Configured() bool { return n.webhookURL != "" }

// Send posts the analysis to the configured webhook. Google Chat's
// simple-message API takes a single text field.
func (n *Notifier) Send(ctx context.Context, res *triage.Result) error {
	body, err := json.Marshal(map[string]string{"text": buildMessage(res)})
	if err != nil {
		return fmt.Errorf("googlechat: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("googlechat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("googlechat: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("googlechat: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(res *triage.Result) string {
	a := res.Analysis

	var recs strings.Builder
	for _, rec := range a.Recommendations {
		fmt.Fprintf(&recs, "• %s\n", rec)
	}

	urgent := "No"
	if a.RequiresImmediateAction {
		urgent = "*YES*"
	}

	return fmt.Sprintf(`%s *NETWORK ALERT*

*Severity:* %s
*Category:* %s
*Organization:* %s
*Network:* %s

*Summary:* %s

*Impact:* %s

*Recommended Actions:*
%s
*Urgent:* %s
*ETA:* %s`,
		severityEmoji(a.Severity),
		a.Severity, a.Category, res.Organization, res.Network,
		a.Summary, a.Impact,
		recs.String(),
		urgent, a.EstimatedResolutionTime,
	)
}

func severityEmoji(s triage.Severity) string {
	switch s {
	case triage.SeverityCritical:
		return "\U0001f534" // red circle
	case triage.SeverityHigh:
		return "\U0001f7e0" // orange circle
	case triage.SeverityMedium:
		return "\U0001f7e1" // yellow circle
	case triage.SeverityLow:
		return "\U0001f7e2" // green circle
	case triage.SeverityInfo:
		return "ℹ️" // information
	default:
		return "⚪" // white circle
	}
}
