package credstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.bin")

	store, err := NewFile(path, []byte("test-secret"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh store, got %v", err)
	}

	if err := store.Set(ctx, KeyAccessToken, "at-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, KeyRefreshToken, "rt-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Reopen from disk with the same secret.
	reopened, err := NewFile(path, []byte("test-secret"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	got, err := reopened.Get(ctx, KeyRefreshToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "rt-1" {
		t.Fatalf("expected rt-1, got %q", got)
	}
}

func TestFileWrongSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.bin")

	store, err := NewFile(path, []byte("right"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if err := store.Set(ctx, KeyAccessToken, "at-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	wrong, err := NewFile(path, []byte("wrong"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if _, err := wrong.Get(ctx, KeyAccessToken); !errors.Is(err, ErrBadSecret) {
		t.Fatalf("expected ErrBadSecret, got %v", err)
	}
}

func TestFileDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.bin")

	store, err := NewFile(path, []byte("s"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if err := store.Set(ctx, KeyAccessToken, "at-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, KeyAccessToken, "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, KeyAccessToken)
	if err != nil || got != "v" {
		t.Fatalf("Get returned %q, %v", got, err)
	}
	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
