package dukani

import (
	"context"
	"fmt"
	"sort"

	"github.com/dukani/dukani-go/internal/flows"
)

// FavoritesResult reports where a load or reconcile ended up.
type FavoritesResult struct {
	// Items is the resulting favorite set, sorted.
	Items []string
	// FromRemote reports whether the backend contributed to Items; false
	// means the result is purely the local cache.
	FromRemote bool
	// Pushed lists items uploaded during a reconcile pass.
	Pushed []string
}

// LoadFavorites fetches the remote favorite set and makes it the local
// truth. Remote wins at load time: items removed on another device disappear
// here too. Offline or unauthenticated, it degrades to the local cache
// without error; a local-storage failure is the only error it returns,
// wrapping [ErrStorageFailure].
func (c *Client) LoadFavorites(ctx context.Context) (FavoritesResult, error) {
	if !c.flows.Initialized() {
		return FavoritesResult{}, ErrClientNotReady
	}

	items, fromRemote, err := c.flows.LoadFavorites(ctx)
	if err != nil {
		return FavoritesResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if fromRemote {
		c.metrics.inc(MetricFavoritesLoadRemote)
	} else {
		c.metrics.inc(MetricFavoritesLoadLocal)
	}
	return FavoritesResult{Items: sortedItems(items), FromRemote: fromRemote}, nil
}

type reconcileResult struct {
	outcome flows.ReconcileOutcome
	err     error
}

// ReconcileFavorites merges local and remote favorites into their union and
// uploads every item the backend is missing. Convergence is additive only:
// nothing is removed on either side, so offline additions always survive.
// Concurrent calls collapse into one pass; every caller gets its outcome.
func (c *Client) ReconcileFavorites(ctx context.Context) (FavoritesResult, error) {
	if !c.flows.Initialized() {
		return FavoritesResult{}, ErrClientNotReady
	}

	res, joined := c.reconcileCell.Do(ctx, func(ctx context.Context) reconcileResult {
		c.metrics.inc(MetricReconcileRuns)
		outcome, err := c.flows.ReconcileFavorites(ctx)
		for range outcome.Pushed {
			c.metrics.inc(MetricFavoritePushed)
		}
		return reconcileResult{outcome: outcome, err: err}
	})
	if joined {
		c.metrics.inc(MetricReconcileJoined)
	}
	if res.err != nil {
		return FavoritesResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, res.err)
	}

	return FavoritesResult{
		Items:      sortedItems(res.outcome.Items),
		FromRemote: res.outcome.RemoteReached,
		Pushed:     res.outcome.Pushed,
	}, nil
}

// ToggleFavorite flips membership of itemID and returns the new local state
// immediately. The matching backend mutation runs in the background and is
// never rolled back on failure; the next load or reconcile pass corrects any
// divergence. The returned error only ever wraps [ErrStorageFailure].
func (c *Client) ToggleFavorite(ctx context.Context, itemID string) (bool, error) {
	if !c.flows.Initialized() {
		return false, ErrClientNotReady
	}

	c.favMu.Lock()
	outcome, err := c.flows.ToggleFavorite(ctx, itemID)
	c.favMu.Unlock()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	c.metrics.inc(MetricFavoriteToggled)

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.TogglePushTimeout)
		defer cancel()
		if err := outcome.Remote(pushCtx); err != nil {
			c.metrics.inc(MetricFavoriteToggleRemoteFailure)
			c.logger.Debug().Err(err).Str("item", itemID).Msg("favorite toggle push failed, keeping local state")
		}
	}()

	return outcome.NowFavorite, nil
}

// IsFavorite reports local membership of itemID.
func (c *Client) IsFavorite(ctx context.Context, itemID string) (bool, error) {
	if !c.flows.Initialized() {
		return false, ErrClientNotReady
	}
	items, err := c.readLocalFavorites(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	_, ok := items[itemID]
	return ok, nil
}

func sortedItems(items map[string]struct{}) []string {
	out := make([]string, 0, len(items))
	for id := range items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
