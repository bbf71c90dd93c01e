// Package prefcache is the local persistent cache for user preference sets.
//
// The cache is the offline side of the favorites reconciliation engine: it
// must be readable and writable with no network and no authentication, and
// it stores whole sets per namespace (one namespace per preference kind,
// e.g. "favorites"). There is no per-item API on purpose — the engine always
// reasons about the full set.
package prefcache

import "context"

// Cache stores one set of opaque item identifiers per namespace.
type Cache interface {
	// ReadAll returns the full set for the namespace. A namespace that was
	// never written reads as an empty set, not an error.
	ReadAll(ctx context.Context, namespace string) (map[string]struct{}, error)
	// WriteAll replaces the namespace's set.
	WriteAll(ctx context.Context, namespace string, items map[string]struct{}) error
}
