package dukani

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/transport"
)

func pingRequest() transport.Request {
	return transport.Request{Method: http.MethodGet, Path: "/v1/ping"}
}

func TestDoFailsFastWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Do(context.Background(), pingRequest())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if env.backend.totalRequests != 0 {
		t.Fatalf("backend saw %d requests, want 0", env.backend.totalRequests)
	}
	if got := env.client.Metrics().Counter(MetricSendFailFast); got != 1 {
		t.Fatalf("fail-fast counter = %d, want 1", got)
	}
}

func TestDoRetriesOnceAfterRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.invalidateAccess()

	resp, err := env.client.Do(context.Background(), pingRequest())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if env.backend.pingCalls != 2 {
		t.Fatalf("pingCalls = %d, want 2 (original + reissue)", env.backend.pingCalls)
	}
	if env.backend.refreshCalls != 1 {
		t.Fatalf("refreshCalls = %d, want 1", env.backend.refreshCalls)
	}
	if got := env.client.Metrics().Counter(MetricSendRetry); got != 1 {
		t.Fatalf("retry counter = %d, want 1", got)
	}
}

func TestDoSecondRejectionIsFinal(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.rejectAllPings = true

	_, err := env.client.Do(context.Background(), pingRequest())
	if err == nil {
		t.Fatal("expected error on doubly rejected call")
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = ErrSessionExpired, want the raw second rejection")
	}
	if !transport.IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized pass-through", err)
	}
	if env.backend.pingCalls != 2 {
		t.Fatalf("pingCalls = %d, want exactly 2", env.backend.pingCalls)
	}
	if env.backend.refreshCalls != 1 {
		t.Fatalf("refreshCalls = %d, want exactly 1", env.backend.refreshCalls)
	}
}

func TestDoPassesThroughNonAuthFailures(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.favoriteStatus = http.StatusInternalServerError

	_, err := env.client.Do(context.Background(), transport.Request{
		Method: http.MethodPost,
		Path:   "/v1/favorites/x",
	})
	var re *transport.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *transport.RemoteError", err)
	}
	if re.Kind != transport.KindRemoteRejected {
		t.Fatalf("kind = %q, want remote_rejected", re.Kind)
	}
	if env.backend.refreshCalls != 0 {
		t.Fatalf("refreshCalls = %d, want 0 for a 500", env.backend.refreshCalls)
	}
}

func TestDoSessionExpiredWhenRefreshFails(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.invalidateAccess()
	env.backend.dropRefresh()
	ctx := context.Background()

	_, err := env.client.Do(ctx, pingRequest())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if env.backend.pingCalls != 1 {
		t.Fatalf("pingCalls = %d, want 1 (no reissue without fresh token)", env.backend.pingCalls)
	}
	if env.client.Session().Authenticated {
		t.Fatal("session still authenticated after failed refresh")
	}
	// Fail closed: the rejected refresh token must not linger in storage.
	if _, err := env.creds.Get(ctx, credstore.KeyRefreshToken); !errors.Is(err, credstore.ErrNotFound) {
		t.Fatalf("stored credentials survived failed refresh: %v", err)
	}
}

func TestDoNetworkErrorDoesNotTriggerRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	token := env.client.Session().AccessToken
	env.backend.srv.Close()

	_, err := env.client.Do(context.Background(), pingRequest())
	if !transport.IsNetwork(err) {
		t.Fatalf("err = %v, want network pass-through", err)
	}
	// The session survives: offline is not expired.
	if got := env.client.Session().AccessToken; got != token {
		t.Fatalf("access token changed on network error: %q -> %q", token, got)
	}
}

func TestDoWithoutStoredRefreshTokenMakesNoExchange(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	ctx := context.Background()

	// Wipe storage out from under the live session, then expire the token.
	if err := env.creds.Delete(ctx, credstore.KeyAccessToken); err != nil {
		t.Fatal(err)
	}
	if err := env.creds.Delete(ctx, credstore.KeyRefreshToken); err != nil {
		t.Fatal(err)
	}
	env.backend.invalidateAccess()

	_, err := env.client.Do(ctx, pingRequest())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if env.backend.refreshCalls != 0 {
		t.Fatalf("refreshCalls = %d, want 0 with no stored refresh token", env.backend.refreshCalls)
	}
}
