package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/alert"
)

// Service owns per-request orchestration: sanitize, resolve, invoke,
// dispatch, persist. One call to Process is one request-scoped unit of
// work; the only shared state is immutable configuration.
type Service struct {
	sanitizer  *alert.Sanitizer
	engine     *Engine
	dispatcher *Dispatcher
	store      Store
	logger     log.Logger
	metrics    *Metrics

	region   string
	override string
	budget   time.Duration
}

// NewService wires the pipeline components together.
func NewService(sanitizer *alert.Sanitizer, engine *Engine, dispatcher *Dispatcher, store Store, logger log.Logger, metrics *Metrics, region, override string, budget time.Duration) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		sanitizer:  sanitizer,
		engine:     engine,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		metrics:    metrics,
		region:     region,
		override:   override,
		budget:     budget,
	}
}

// Process runs the full pipeline for one webhook event. A structurally
// invalid event returns alert.ErrMissingAlertType (wrapped) with a
// partial Result carrying only the correlation id. Inference and
// notification failures never surface as errors: they degrade into the
// returned Result instead.
func (s *Service) Process(ctx context.Context, ev alert.Event) (*Result, error) {
	start := time.Now()
	id := ulid.Make().String()
	L := s.logger.With("correlation_id", id)

	res := &Result{ID: id, CreatedAt: start.UTC()}

	if err := ev.Validate(); err != nil {
		return res, fmt.Errorf("validate payload: %w", err)
	}

	// The whole pipeline runs under one wall-clock budget. When it is
	// close to exhaustion we still return a best-effort response rather
	// than raise a timeout to the caller.
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	sa := s.sanitizer.Sanitize(ev)
	res.AlertType = sa.AlertType
	res.Organization = sa.Organization
	res.Network = sa.Network

	L.Info(ctx, "processing alert",
		"alert_type", sa.AlertType,
		"organization", sa.Organization,
		"network", sa.Network,
	)

	candidates := Resolve(s.region, s.override)
	res.Analysis, res.Attempts = s.engine.Run(ctx, sa, candidates)

	res.Notifications = s.dispatcher.Dispatch(ctx, res)
	res.Duration = time.Since(start).Seconds()

	if s.metrics != nil {
		s.metrics.ObserveAnalysis(res.Analysis.Provenance, res.Duration)
	}

	// History write is best effort and must not fail the request.
	// WithoutCancel: the record should land even when the budget just
	// expired.
	if err := s.store.Put(context.WithoutCancel(ctx), res); err != nil {
		L.Error(ctx, err, "failed to persist analysis history")
	}

	L.Info(ctx, "alert processed",
		"provenance", res.Analysis.Provenance,
		"severity", res.Analysis.Severity,
		"category", res.Analysis.Category,
		"attempts", len(res.Attempts),
		"duration", res.Duration,
	)

	return res, nil
}

// Get retrieves a stored analysis record by correlation id.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}
