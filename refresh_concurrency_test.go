package dukani

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
)

// The refresh token is single-use: if two goroutines raced to exchange it,
// the second exchange would present a consumed token, get rejected, and tear
// the session down. The fake backend enforces exactly that, so any
// coordination bug here fails loudly rather than flaking.
func TestConcurrentRequestsCollapseIntoOneRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.refreshDelay = 200 * time.Millisecond
	env.backend.invalidateAccess()

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	statuses := make([]int, callers)

	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			resp, err := env.client.Do(context.Background(), pingRequest())
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.Status
			}
		}()
	}
	close(start)
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if statuses[i] != http.StatusOK {
			t.Fatalf("caller %d got status %d", i, statuses[i])
		}
	}
	if env.backend.refreshCalls != 1 {
		t.Fatalf("refreshCalls = %d, want exactly 1", env.backend.refreshCalls)
	}

	snap := env.client.Metrics()
	if got := snap.Counter(MetricRefreshSuccess); got != 1 {
		t.Fatalf("refresh success counter = %d, want 1", got)
	}
	if got := snap.Counter(MetricRefreshJoined); got == 0 {
		t.Fatal("no caller joined the in-flight refresh")
	}
}

// A canceled waiter must not abort the shared refresh attempt for everyone
// else.
func TestCanceledWaiterDoesNotAbortSharedRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.refreshDelay = 200 * time.Millisecond
	env.backend.invalidateAccess()

	var wg sync.WaitGroup

	// The owner drives the refresh to completion.
	wg.Add(1)
	var ownerErr error
	go func() {
		defer wg.Done()
		_, ownerErr = env.client.Do(context.Background(), pingRequest())
	}()

	// A second caller joins the in-flight refresh and then gives up.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = env.client.Do(ctx, pingRequest())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	if ownerErr != nil {
		t.Fatalf("owner failed after waiter cancellation: %v", ownerErr)
	}
	if env.backend.refreshCalls != 1 {
		t.Fatalf("refreshCalls = %d, want 1", env.backend.refreshCalls)
	}
	if !env.client.Session().Authenticated {
		t.Fatal("session lost after waiter cancellation")
	}
}
