// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

var tracer = otel.Tracer("github.com/coozgan/meraki-webhook-alert-processor/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists analysis history in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, applies the schema, and returns a ready Store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const analysisColumns = `id, alert_type, organization, network, analysis,
	attempts, notifications, created_at, duration_s`

// Get retrieves an analysis record by correlation ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Result, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	r, err := s.scanResult(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// Put inserts or updates an analysis record (upsert on correlation ID).
func (s *Store) Put(ctx context.Context, r *triage.Result) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	analysisJSON, err := json.Marshal(r.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	attemptsJSON, err := json.Marshal(r.Attempts)
	if err != nil {
		return fmt.Errorf("marshal attempts: %w", err)
	}
	notificationsJSON, err := json.Marshal(r.Notifications)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}

	var severity, category, provenance string
	if r.Analysis != nil {
		severity = string(r.Analysis.Severity)
		category = string(r.Analysis.Category)
		provenance = string(r.Analysis.Provenance)
	}

	query := `INSERT INTO analyses (
		id, alert_type, organization, network, severity, category, provenance,
		analysis, attempts, notifications, created_at, duration_s
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	ON CONFLICT (id) DO UPDATE SET
		alert_type    = EXCLUDED.alert_type,
		organization  = EXCLUDED.organization,
		network       = EXCLUDED.network,
		severity      = EXCLUDED.severity,
		category      = EXCLUDED.category,
		provenance    = EXCLUDED.provenance,
		analysis      = EXCLUDED.analysis,
		attempts      = EXCLUDED.attempts,
		notifications = EXCLUDED.notifications,
		duration_s    = EXCLUDED.duration_s`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.AlertType, r.Organization, r.Network, severity, category, provenance,
		analysisJSON, attemptsJSON, notificationsJSON, r.CreatedAt, r.Duration,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// scanResult scans a single row into a triage.Result. Returns (nil, nil)
// when no row is found.
func (s *Store) scanResult(row pgx.Row) (*triage.Result, error) {
	var (
		r                 triage.Result
		analysisJSON      []byte
		attemptsJSON      []byte
		notificationsJSON []byte
	)

	err := row.Scan(
		&r.ID, &r.AlertType, &r.Organization, &r.Network, &analysisJSON,
		&attemptsJSON, &notificationsJSON, &r.CreatedAt, &r.Duration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &r.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
	}
	if len(attemptsJSON) > 0 {
		if err := json.Unmarshal(attemptsJSON, &r.Attempts); err != nil {
			return nil, fmt.Errorf("unmarshal attempts: %w", err)
		}
	}
	if len(notificationsJSON) > 0 {
		if err := json.Unmarshal(notificationsJSON, &r.Notifications); err != nil {
			return nil, fmt.Errorf("unmarshal notifications: %w", err)
		}
	}

	return &r, nil
}
