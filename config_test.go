package dukani

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/prefcache"
)

func TestBuildRequiresStores(t *testing.T) {
	_, err := New().WithBaseURL("https://api.example.com").Build()
	if err == nil {
		t.Fatal("Build succeeded without a credential store")
	}

	_, err = New().
		WithBaseURL("https://api.example.com").
		WithCredentialStore(credstore.NewMemory()).
		Build()
	if err == nil {
		t.Fatal("Build succeeded without a preference cache")
	}
}

func TestBuildRejectsMissingBaseURL(t *testing.T) {
	_, err := New().
		WithCredentialStore(credstore.NewMemory()).
		WithPreferenceCache(prefcache.NewMemory()).
		Build()
	if err == nil {
		t.Fatal("Build succeeded without a base URL")
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	c, err := New().
		WithBaseURL("https://api.example.com").
		WithCredentialStore(credstore.NewMemory()).
		WithPreferenceCache(prefcache.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.config.UserAgent != "dukani-go" {
		t.Fatalf("UserAgent = %q", c.config.UserAgent)
	}
	if c.config.FavoritesNamespace != "favorites" {
		t.Fatalf("FavoritesNamespace = %q", c.config.FavoritesNamespace)
	}
	if c.config.RequestTimeout != 15*time.Second {
		t.Fatalf("RequestTimeout = %v", c.config.RequestTimeout)
	}
}

func TestBuilderBuildsOnce(t *testing.T) {
	b := New().
		WithBaseURL("https://api.example.com").
		WithCredentialStore(credstore.NewMemory()).
		WithPreferenceCache(prefcache.NewMemory())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second Build succeeded")
	}
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+254712345678", true},
		{"+14155552671", true},
		{"0712345678", false},
		{"+254 712 345 678", false},
		{"", false},
		{"not-a-phone", false},
	}
	for _, tc := range cases {
		err := validatePhone(tc.phone)
		if tc.ok && err != nil {
			t.Errorf("validatePhone(%q) = %v, want nil", tc.phone, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("validatePhone(%q) = nil, want error", tc.phone)
		}
	}
}

func TestZeroClientReportsNotReady(t *testing.T) {
	var c Client
	if _, err := c.RequestCode(t.Context(), testPhone); !errors.Is(err, ErrClientNotReady) {
		t.Fatalf("err = %v, want ErrClientNotReady", err)
	}
}

func signedTestToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAccessTokenExpired(t *testing.T) {
	if accessTokenExpired(signedTestToken(t, time.Now().Add(time.Hour))) {
		t.Fatal("fresh token reported expired")
	}
	if !accessTokenExpired(signedTestToken(t, time.Now().Add(-time.Hour))) {
		t.Fatal("stale token reported fresh")
	}
	// Tokens inside the leeway window are as good as expired.
	if !accessTokenExpired(signedTestToken(t, time.Now().Add(5*time.Second))) {
		t.Fatal("token inside leeway reported fresh")
	}
	// Opaque tokens get the benefit of the doubt; the backend decides.
	if accessTokenExpired("opaque-session-token") {
		t.Fatal("opaque token reported expired")
	}
}
