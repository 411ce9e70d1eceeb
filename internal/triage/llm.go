package triage

import "context"

// Provider is the interface for the inference backend. ref is a model id
// or a cross-region routing profile reference; the backend treats it as
// an opaque invocation target.
type Provider interface {
	Invoke(ctx context.Context, ref string, prompt string) (string, error)
}

// HTTPStatusError is implemented by provider errors that carry the
// upstream HTTP status, which drives failure classification in the
// invoker.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}
