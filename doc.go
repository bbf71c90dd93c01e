// Package dukani is the client SDK for the Dukani storefront backend. It
// owns the authenticated-request pipeline with single-flight token refresh
// and the local/remote reconciliation engine behind user favorites.
//
// The package is designed for concurrent callers: Client methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// dukani is the public surface. It exposes [Client], [Builder], [Config],
// value types (Session, CredentialPair, MetricsSnapshot, etc.) and sentinel
// errors. Flow orchestration lives under internal/ and is never exported.
// The backend wire envelope lives in the transport subpackage; credential
// persistence in credstore; the durable preference cache in prefcache.
//
// # What this package must NOT do
//
//   - Interpret business-level response bodies: everything past the one
//     internal authorization retry is returned to the caller unchanged.
//   - Write credentials from anywhere but the session and refresh flows.
//   - Retry anything except the single coordinated refresh-and-reissue.
//
// # Refresh contract
//
// Refresh tokens are single-use: the backend invalidates the presented
// token on a successful exchange. The coordinator therefore collapses all
// concurrent refresh demand into one exchange and fans the outcome out to
// every waiter; two concurrent 401s can never race to consume the same
// token and destroy a session that the winner just repaired.
package dukani
