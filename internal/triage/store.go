package triage

import "context"

// Store is the persistence interface for the analysis history. The
// pipeline writes each Result once after assembly; reads are by
// correlation id only.
type Store interface {
	Get(ctx context.Context, id string) (*Result, bool, error)
	Put(ctx context.Context, result *Result) error
}
