// Package alertapi exposes the webhook ingestion and analysis-history
// HTTP endpoints.
package alertapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/alert"
	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

// AlertService defines the business operations alertapi needs.
type AlertService interface {
	Process(ctx context.Context, ev alert.Event) (*triage.Result, error)
	Get(ctx context.Context, id string) (*triage.Result, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    AlertService
	secret string
}

// New creates a new API handler. secret is the shared webhook secret;
// empty disables the check.
func New(logger log.Logger, svc AlertService, secret string) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("alert service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		secret: secret,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhook", a.handleWebhook)
		r.Get("/analyses/{id}", a.handleGetAnalysis)
	})
}

func (a *API) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("meraki.analysis.id", id))

	result, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get analysis", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
