package alertapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/alert"
	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

// webhookResponse is the success body returned to the webhook caller.
// The correlation id is always present, also on degraded runs.
type webhookResponse struct {
	Message       string           `json:"message"`
	CorrelationID string           `json:"correlation_id"`
	AlertType     string           `json:"alert_type"`
	Organization  string           `json:"organization"`
	Network       string           `json:"network"`
	Analysis      *triage.Analysis `json:"analysis"`
	Notifications []triage.Outcome `json:"notifications"`
	Timestamp     string           `json:"timestamp"`
}

// errorResponse is the body for every non-200 outcome.
type errorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}

func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var ev alert.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		// No pipeline run happened, so mint a correlation id here to keep
		// the response contract uniform.
		a.writeError(w, http.StatusBadRequest, "invalid JSON payload", ulid.Make().String())
		return
	}

	if !a.authorized(ev) {
		a.logger.Warn(ctx, "webhook rejected: shared secret mismatch")
		a.writeError(w, http.StatusUnauthorized, "invalid shared secret", ulid.Make().String())
		return
	}

	res, err := a.svc.Process(ctx, ev)
	if err != nil {
		if errors.Is(err, alert.ErrMissingAlertType) {
			a.writeError(w, http.StatusBadRequest, "payload missing alertType", res.ID)
			return
		}
		a.logger.Error(ctx, err, "webhook processing failed", "correlation_id", res.ID)
		a.writeError(w, http.StatusInternalServerError, "internal error", res.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(webhookResponse{
		Message:       "Webhook processed successfully",
		CorrelationID: res.ID,
		AlertType:     res.AlertType,
		Organization:  res.Organization,
		Network:       res.Network,
		Analysis:      res.Analysis,
		Notifications: res.Notifications,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// authorized checks the sharedSecret field against the configured
// webhook secret with constant-time comparison. An empty configured
// secret disables the check.
func (a *API) authorized(ev alert.Event) bool {
	if a.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(ev.SharedSecret()), []byte(a.secret)) == 1
}

func (a *API) writeError(w http.ResponseWriter, status int, msg, correlationID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:         "Request failed",
		Message:       msg,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
