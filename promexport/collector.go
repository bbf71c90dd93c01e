// Package promexport bridges the client's internal counters into a
// Prometheus collector, for host applications that already scrape a
// registry.
package promexport

import (
	"github.com/prometheus/client_golang/prometheus"

	dukani "github.com/dukani/dukani-go"
)

type metricDef struct {
	id   dukani.MetricID
	desc *prometheus.Desc
}

func newDef(id dukani.MetricID, name, help string) metricDef {
	return metricDef{
		id:   id,
		desc: prometheus.NewDesc("dukani_"+name, help, nil, nil),
	}
}

var defs = []metricDef{
	newDef(dukani.MetricCodeRequested, "codes_requested_total", "One-time codes requested."),
	newDef(dukani.MetricLoginSuccess, "logins_total", "Successful code verifications."),
	newDef(dukani.MetricLoginFailure, "login_failures_total", "Failed code verifications."),
	newDef(dukani.MetricRestoreSuccess, "restores_total", "Session restores that produced a session."),
	newDef(dukani.MetricRestoreAnonymous, "restores_anonymous_total", "Session restores that ended anonymous."),
	newDef(dukani.MetricLogout, "logouts_total", "Logouts."),
	newDef(dukani.MetricRefreshSuccess, "refreshes_total", "Successful token refresh exchanges."),
	newDef(dukani.MetricRefreshFailure, "refresh_failures_total", "Refresh attempts that resolved empty."),
	newDef(dukani.MetricRefreshJoined, "refresh_joins_total", "Callers that attached to an in-flight refresh."),
	newDef(dukani.MetricSendFailFast, "send_fail_fast_total", "Requests rejected before any network call."),
	newDef(dukani.MetricSendRetry, "send_retries_total", "Requests reissued after a coordinated refresh."),
	newDef(dukani.MetricSendSessionExpired, "send_session_expired_total", "Requests that died on an unrefreshable authorization failure."),
	newDef(dukani.MetricFavoritesLoadRemote, "favorites_loads_remote_total", "Favorite loads served by the backend."),
	newDef(dukani.MetricFavoritesLoadLocal, "favorites_loads_local_total", "Favorite loads degraded to the local cache."),
	newDef(dukani.MetricFavoritePushed, "favorites_pushed_total", "Reconcile push-adds issued."),
	newDef(dukani.MetricFavoriteToggled, "favorites_toggled_total", "Optimistic local toggles."),
	newDef(dukani.MetricFavoriteToggleRemoteFailure, "favorite_toggle_push_failures_total", "Background toggle pushes that failed."),
	newDef(dukani.MetricReconcileRuns, "reconcile_runs_total", "Reconciliation passes executed."),
	newDef(dukani.MetricReconcileJoined, "reconcile_joins_total", "Callers that attached to an in-flight reconciliation."),
}

// Collector exposes a snapshot source as constant Prometheus counters.
type Collector struct {
	source func() dukani.MetricsSnapshot
}

// NewCollector collects from a built client.
func NewCollector(client *dukani.Client) *Collector {
	return &Collector{source: client.Metrics}
}

// NewCollectorFunc collects from an arbitrary snapshot source.
func NewCollectorFunc(source func() dukani.MetricsSnapshot) *Collector {
	return &Collector{source: source}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range defs {
		ch <- d.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source()
	for _, d := range defs {
		ch <- prometheus.MustNewConstMetric(d.desc, prometheus.CounterValue, float64(snap.Counter(d.id)))
	}
}
