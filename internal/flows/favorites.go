package flows

import (
	"context"

	"github.com/rs/zerolog"
)

// FavoritesDeps captures reconciliation-engine dependencies. ReadLocal and
// WriteLocal hit the durable on-device cache; FetchRemote, PushAdd and
// PushRemove go through the authenticated pipeline.
type FavoritesDeps struct {
	ReadLocal   func(ctx context.Context) (map[string]struct{}, error)
	WriteLocal  func(ctx context.Context, items map[string]struct{}) error
	FetchRemote func(ctx context.Context) (map[string]struct{}, error)
	PushAdd     func(ctx context.Context, itemID string) error
	PushRemove  func(ctx context.Context, itemID string) error
	Logger      zerolog.Logger
}

// RunLoadFavorites reads the remote set and overwrites the local cache with
// it — remote is authoritative at load time. Any remote failure (offline,
// unauthenticated, server error) degrades to the local cache; a never
// populated cache degrades to the empty set. The only surfaced error is a
// local-storage failure.
func RunLoadFavorites(ctx context.Context, deps FavoritesDeps) (map[string]struct{}, bool, error) {
	remote, err := deps.FetchRemote(ctx)
	if err != nil {
		deps.Logger.Debug().Err(err).Msg("favorites load degraded to local cache")
		local, err := deps.ReadLocal(ctx)
		if err != nil {
			return nil, false, err
		}
		return local, false, nil
	}

	if err := deps.WriteLocal(ctx, remote); err != nil {
		return nil, false, err
	}
	return remote, true, nil
}

// ReconcileOutcome reports what a reconciliation pass did.
type ReconcileOutcome struct {
	Items map[string]struct{}
	// Pushed lists the items present locally but absent remotely for which
	// a push-add was issued.
	Pushed        []string
	RemoteReached bool
}

// RunReconcileFavorites merges the local and remote sets into their union,
// pushes every locally-held item the remote is missing, and writes the
// union back to the local cache. Convergence is additive only: the backend
// is never asked to remove anything here, so a locally-added favorite can
// not be lost to a stale remote. A failed remote leg degrades to local
// state without error.
func RunReconcileFavorites(ctx context.Context, deps FavoritesDeps) (ReconcileOutcome, error) {
	local, err := deps.ReadLocal(ctx)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	remote, err := deps.FetchRemote(ctx)
	if err != nil {
		deps.Logger.Debug().Err(err).Msg("reconcile skipped, remote unavailable")
		return ReconcileOutcome{Items: local}, nil
	}

	union := make(map[string]struct{}, len(local)+len(remote))
	for id := range remote {
		union[id] = struct{}{}
	}
	var pushed []string
	for id := range local {
		union[id] = struct{}{}
		if _, ok := remote[id]; ok {
			continue
		}
		if err := deps.PushAdd(ctx, id); err != nil {
			// The union already holds the item locally; the next pass
			// retries the push.
			deps.Logger.Debug().Err(err).Str("item", id).Msg("favorite push failed")
			continue
		}
		pushed = append(pushed, id)
	}

	if err := deps.WriteLocal(ctx, union); err != nil {
		return ReconcileOutcome{}, err
	}
	return ReconcileOutcome{Items: union, Pushed: pushed, RemoteReached: true}, nil
}

// ToggleOutcome is the immediate, local result of a toggle. Remote is the
// matching backend effect; the caller runs it in the background and must
// not roll back the local mutation if it fails.
type ToggleOutcome struct {
	NowFavorite bool
	Remote      func(ctx context.Context) error
}

// RunToggleFavorite flips local membership for itemID. The local mutation
// is applied before any network activity so the UI state never waits on the
// backend; divergence is corrected by the next load or reconcile pass.
func RunToggleFavorite(ctx context.Context, itemID string, deps FavoritesDeps) (ToggleOutcome, error) {
	local, err := deps.ReadLocal(ctx)
	if err != nil {
		return ToggleOutcome{}, err
	}

	_, had := local[itemID]
	if had {
		delete(local, itemID)
	} else {
		local[itemID] = struct{}{}
	}
	if err := deps.WriteLocal(ctx, local); err != nil {
		return ToggleOutcome{}, err
	}

	remote := deps.PushAdd
	if had {
		remote = deps.PushRemove
	}
	return ToggleOutcome{
		NowFavorite: !had,
		Remote:      func(ctx context.Context) error { return remote(ctx, itemID) },
	}, nil
}
