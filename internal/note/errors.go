package note

import "errors"

// Sentinel errors returned by the ingestion and fetch engines. The
// protocol surface (internal/rpc) is the only place that translates
// these into gRPC status codes.
var (
	// ErrInvalidArgument covers malformed or oversized input, and
	// tag/header mismatches (invariant H-TAG).
	ErrInvalidArgument = errors.New("note: invalid argument")
	// ErrResourceExhausted covers subscription/ingestion limits.
	ErrResourceExhausted = errors.New("note: resource exhausted")
	// ErrUnavailable covers transient backend failures.
	ErrUnavailable = errors.New("note: backend unavailable")
	// ErrInternal covers invariant violations that should never
	// happen (e.g. a monotonic clock regression the server could not
	// repair). The process continues; callers see Internal.
	ErrInternal = errors.New("note: internal invariant violated")
)
