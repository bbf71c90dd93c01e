package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunRestoreUsesValidStoredToken(t *testing.T) {
	refreshes := 0
	res := RunRestore(context.Background(), RestoreDeps{
		LoadAccessToken: func(context.Context) (string, error) { return "a1", nil },
		TokenExpired:    func(string) bool { return false },
		FetchUser: func(_ context.Context, token string) (UserInfo, error) {
			if token != "a1" {
				t.Fatalf("fetched with %q, want a1", token)
			}
			return UserInfo{ID: "u1"}, nil
		},
		Refresh: func(context.Context) (TokenPair, bool) {
			refreshes++
			return TokenPair{}, false
		},
		IsUnauthorized: func(error) bool { return false },
		Logger:         zerolog.Nop(),
	})
	if !res.Authenticated || res.Refreshed {
		t.Fatalf("res = %+v, want authenticated without refresh", res)
	}
	if refreshes != 0 {
		t.Fatalf("refreshes = %d, want 0", refreshes)
	}
}

func TestRunRestoreSkipsExpiredTokenStraightToRefresh(t *testing.T) {
	fetches := []string{}
	res := RunRestore(context.Background(), RestoreDeps{
		LoadAccessToken: func(context.Context) (string, error) { return "stale", nil },
		TokenExpired:    func(string) bool { return true },
		FetchUser: func(_ context.Context, token string) (UserInfo, error) {
			fetches = append(fetches, token)
			return UserInfo{ID: "u1"}, nil
		},
		Refresh: func(context.Context) (TokenPair, bool) {
			return TokenPair{AccessToken: "fresh"}, true
		},
		IsUnauthorized: func(error) bool { return false },
		Logger:         zerolog.Nop(),
	})
	if !res.Authenticated || !res.Refreshed {
		t.Fatalf("res = %+v, want authenticated via refresh", res)
	}
	// The expired token never hit the network.
	if len(fetches) != 1 || fetches[0] != "fresh" {
		t.Fatalf("fetches = %v, want only the fresh token", fetches)
	}
}

func TestRunRestoreStaysAnonymousOffline(t *testing.T) {
	// A non-auth fetch failure means "can't tell": stay anonymous but do not
	// burn the stored credentials on a refresh attempt.
	refreshes := 0
	res := RunRestore(context.Background(), RestoreDeps{
		LoadAccessToken: func(context.Context) (string, error) { return "a1", nil },
		TokenExpired:    func(string) bool { return false },
		FetchUser: func(context.Context, string) (UserInfo, error) {
			return UserInfo{}, errors.New("connection refused")
		},
		Refresh: func(context.Context) (TokenPair, bool) {
			refreshes++
			return TokenPair{}, false
		},
		IsUnauthorized: func(error) bool { return false },
		Logger:         zerolog.Nop(),
	})
	if res.Authenticated {
		t.Fatal("authenticated with unreachable backend")
	}
	if refreshes != 0 {
		t.Fatalf("refreshes = %d, want 0 for an offline check", refreshes)
	}
}

func TestRunRestoreRefreshesRejectedToken(t *testing.T) {
	unauthorized := errors.New("401")
	res := RunRestore(context.Background(), RestoreDeps{
		LoadAccessToken: func(context.Context) (string, error) { return "a1", nil },
		TokenExpired:    func(string) bool { return false },
		FetchUser: func(_ context.Context, token string) (UserInfo, error) {
			if token == "a1" {
				return UserInfo{}, unauthorized
			}
			return UserInfo{ID: "u1"}, nil
		},
		Refresh: func(context.Context) (TokenPair, bool) {
			return TokenPair{AccessToken: "a2"}, true
		},
		IsUnauthorized: func(err error) bool { return errors.Is(err, unauthorized) },
		Logger:         zerolog.Nop(),
	})
	if !res.Authenticated || !res.Refreshed || res.AccessToken != "a2" {
		t.Fatalf("res = %+v, want refreshed session on a2", res)
	}
}

func TestRunRestoreAnonymousWhenRefreshFails(t *testing.T) {
	res := RunRestore(context.Background(), RestoreDeps{
		LoadAccessToken: func(context.Context) (string, error) { return "", nil },
		TokenExpired:    func(string) bool { return false },
		FetchUser: func(context.Context, string) (UserInfo, error) {
			t.Fatal("fetch called without a token")
			return UserInfo{}, nil
		},
		Refresh:        func(context.Context) (TokenPair, bool) { return TokenPair{}, false },
		IsUnauthorized: func(error) bool { return false },
		Logger:         zerolog.Nop(),
	})
	if res.Authenticated {
		t.Fatal("authenticated with nothing stored and no refresh")
	}
}
