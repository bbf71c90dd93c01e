package dukani

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricCodeRequested counts issued one-time codes.
	MetricCodeRequested MetricID = iota
	// MetricLoginSuccess counts successful code verifications.
	MetricLoginSuccess
	// MetricLoginFailure counts failed code verifications.
	MetricLoginFailure
	// MetricRestoreSuccess counts restores that produced a session.
	MetricRestoreSuccess
	// MetricRestoreAnonymous counts restores that ended anonymous.
	MetricRestoreAnonymous
	// MetricLogout counts logouts.
	MetricLogout
	// MetricRefreshSuccess counts refresh exchanges that produced a pair.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts that resolved empty.
	MetricRefreshFailure
	// MetricRefreshJoined counts callers that attached to an in-flight
	// refresh instead of starting one.
	MetricRefreshJoined
	// MetricSendFailFast counts sends rejected before any network call.
	MetricSendFailFast
	// MetricSendRetry counts calls reissued after a coordinated refresh.
	MetricSendRetry
	// MetricSendSessionExpired counts sends that died on an unrefreshable
	// 401.
	MetricSendSessionExpired
	// MetricFavoritesLoadRemote counts loads served by the backend.
	MetricFavoritesLoadRemote
	// MetricFavoritesLoadLocal counts loads degraded to the local cache.
	MetricFavoritesLoadLocal
	// MetricFavoritePushed counts reconcile push-adds issued.
	MetricFavoritePushed
	// MetricFavoriteToggled counts optimistic local toggles.
	MetricFavoriteToggled
	// MetricFavoriteToggleRemoteFailure counts background toggle pushes
	// that failed (local state kept).
	MetricFavoriteToggleRemoteFailure
	// MetricReconcileRuns counts reconciliation passes executed.
	MetricReconcileRuns
	// MetricReconcileJoined counts callers that attached to an in-flight
	// reconciliation pass.
	MetricReconcileJoined

	metricIDCount
)

// MetricsConfig enables or disables the counter set. Disabled metrics are
// no-ops.
type MetricsConfig struct {
	Enabled bool
}

// Metrics holds atomic counters. All operations are safe for concurrent
// use; when disabled they do nothing.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || !m.enabled {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters []uint64
}

// Counter returns the snapshot value for id, or 0 for unknown IDs.
func (s MetricsSnapshot) Counter(id MetricID) uint64 {
	if int(id) >= len(s.Counters) {
		return 0
	}
	return s.Counters[id]
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{Counters: make([]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for i := range m.counters {
		out.Counters[i] = m.counters[i].Load()
	}
	return out
}
