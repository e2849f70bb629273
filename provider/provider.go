// Package provider defines the cache backend abstraction used by bookcache.
//
// Every call reports an explicit Outcome so callers branch on a typed result
// instead of guessing from an error value. A backend that could not be reached
// (dial failure, timeout, closed pool, open circuit) reports Unreachable together
// with the underlying error; a reachable backend never returns a non-nil error.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// bytes previously passed to Set for a key. The "books:" and "reviews:" keyspaces
// are owned by bookcache.
package provider

import (
	"context"
	"time"
)

// Outcome is the typed result of a single backend call.
type Outcome uint8

const (
	// OK means the call succeeded. For Get it means a hit.
	OK Outcome = iota
	// Miss means the key is absent or expired (Get only).
	Miss
	// Rejected means the backend was reachable but declined the write
	// (in-process stores under memory pressure).
	Rejected
	// Unreachable means the backend could not serve the call.
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Miss:
		return "miss"
	case Rejected:
		return "rejected"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Provider is a minimal byte store with per-key TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, OK, nil) on hit, (nil, Miss, nil) on miss and
	// (nil, Unreachable, err) when the backend failed.
	Get(ctx context.Context, key string) ([]byte, Outcome, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (Outcome, error)

	// Del removes a key. Deleting an absent key is OK.
	Del(ctx context.Context, key string) (Outcome, error)

	// Ping probes connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Fail is a helper for implementations: it maps a non-nil transport error to
// Unreachable and nil to OK.
func Fail(err error) (Outcome, error) {
	if err != nil {
		return Unreachable, err
	}
	return OK, nil
}
