package promexport

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	dukani "github.com/dukani/dukani-go"
)

func TestCollectorExposesEveryCounter(t *testing.T) {
	snap := dukani.MetricsSnapshot{Counters: make([]uint64, len(defs))}
	for i := range snap.Counters {
		snap.Counters[i] = uint64(i + 1)
	}
	col := NewCollectorFunc(func() dukani.MetricsSnapshot { return snap })

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(col); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if got := testutil.CollectAndCount(col); got != len(defs) {
		t.Fatalf("collected %d metrics, want %d", got, len(defs))
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	seen := make(map[string]float64, len(families))
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "dukani_") {
			t.Fatalf("unexpected metric family %q", fam.GetName())
		}
		seen[fam.GetName()] = fam.GetMetric()[0].GetCounter().GetValue()
	}
	if got := seen["dukani_logins_total"]; got != float64(dukani.MetricLoginSuccess)+1 {
		t.Fatalf("dukani_logins_total = %v", got)
	}
	if got := seen["dukani_reconcile_runs_total"]; got != float64(dukani.MetricReconcileRuns)+1 {
		t.Fatalf("dukani_reconcile_runs_total = %v", got)
	}
}

func TestCollectorHandlesShortSnapshot(t *testing.T) {
	// A zero-value snapshot has no counters; every metric reads 0.
	col := NewCollectorFunc(func() dukani.MetricsSnapshot { return dukani.MetricsSnapshot{} })
	if got := testutil.CollectAndCount(col); got != len(defs) {
		t.Fatalf("collected %d metrics, want %d", got, len(defs))
	}
}
