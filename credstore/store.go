// Package credstore persists bearer credentials across process restarts.
//
// Implementations are scoped secure key-value stores with opaque semantics:
// the SDK never interprets stored values beyond treating them as secrets.
// Three implementations ship with the SDK: an in-memory store for tests, an
// encrypted file store for on-device use, and a Redis-backed store for
// server-side agents that hold sessions on behalf of users.
package credstore

import (
	"context"
	"errors"
)

// Well-known keys used by the SDK. Stores may hold additional keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// ErrNotFound is returned by Get when the key has never been set or has
// been deleted.
var ErrNotFound = errors.New("credstore: key not found")

// Store is the secure credential boundary. A single process may call it
// concurrently; cross-process concurrency is not assumed.
type Store interface {
	// Get returns the stored value, or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
