// Package claude implements the inference provider on the Anthropic API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxAnalysisTokens bounds the model response. The analysis contract is
// a small JSON object; anything near this limit is already malformed.
const maxAnalysisTokens = 1500

// Client invokes Claude models through the Anthropic API. It implements
// triage.Provider.
type Client struct {
	api anthropic.Client
}

// New creates a client for the given API key. baseURL overrides the API
// endpoint when non-empty (used by tests).
func New(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// The invoker owns the retry policy across model tiers; SDK-level
		// retries would double up on throttling.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{api: anthropic.NewClient(opts...)}
}

// Invoke sends a single-turn prompt to the given model and returns the
// text content of the response.
func (c *Client) Invoke(ctx context.Context, ref, prompt string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(ref),
		MaxTokens: maxAnalysisTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrapErr(ref, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &InvokeError{Ref: ref, Message: "response contained no text content"}
	}
	return sb.String(), nil
}

// InvokeError is an invocation failure carrying the upstream HTTP status
// so the invoker can classify it.
type InvokeError struct {
	Status  int
	Ref     string
	Message string
	err     error
}

func (e *InvokeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("invoke %s: status %d: %s", e.Ref, e.Status, e.Message)
	}
	return fmt.Sprintf("invoke %s: %s", e.Ref, e.Message)
}

func (e *InvokeError) Unwrap() error { return e.err }

// HTTPStatus implements triage.HTTPStatusError. Zero means no HTTP
// response was received.
func (e *InvokeError) HTTPStatus() int { return e.Status }

func wrapErr(ref string, err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &InvokeError{
			Status:  apierr.StatusCode,
			Ref:     ref,
			Message: apierr.Error(),
			err:     err,
		}
	}
	// Transport failures and context expiry pass through wrapped so the
	// invoker still sees context.DeadlineExceeded.
	return fmt.Errorf("invoke %s: %w", ref, err)
}
