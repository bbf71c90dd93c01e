package flows

import (
	"context"

	"github.com/rs/zerolog"
)

// RefreshDeps captures credential-refresh flow dependencies. The flow body
// runs at most once at a time process-wide: the root client executes it
// inside a single-flight cell, so the stored refresh token is never
// exchanged twice concurrently.
type RefreshDeps struct {
	// LoadRefreshToken returns the stored refresh token, or "" when none is
	// stored.
	LoadRefreshToken func(ctx context.Context) (string, error)
	Exchange         func(ctx context.Context, refreshToken string) (TokenPair, error)
	StoreCredentials func(ctx context.Context, pair TokenPair) error
	ClearCredentials func(ctx context.Context) error
	Logger           zerolog.Logger
}

// RefreshOutcome is the non-exceptional result of a refresh attempt: OK
// false means "refresh didn't work", never an error to handle.
type RefreshOutcome struct {
	Pair TokenPair
	OK   bool
}

// RunRefresh exchanges the stored refresh token for a new credential pair.
//
// No stored token resolves to a failed outcome immediately, with zero
// network calls. Any exchange failure — a rejected token or a plain network
// error — clears the stored credentials (fail closed) and resolves failed;
// the flow itself never retries.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshOutcome {
	token, err := deps.LoadRefreshToken(ctx)
	if err != nil {
		deps.Logger.Warn().Err(err).Msg("refresh token read failed")
		return RefreshOutcome{}
	}
	if token == "" {
		return RefreshOutcome{}
	}

	pair, err := deps.Exchange(ctx, token)
	if err != nil {
		deps.Logger.Debug().Err(err).Msg("refresh exchange failed, clearing credentials")
		if clearErr := deps.ClearCredentials(ctx); clearErr != nil {
			deps.Logger.Warn().Err(clearErr).Msg("credential clear failed after refresh failure")
		}
		return RefreshOutcome{}
	}

	if err := deps.StoreCredentials(ctx, pair); err != nil {
		deps.Logger.Warn().Err(err).Msg("credential persist failed after refresh")
		if clearErr := deps.ClearCredentials(ctx); clearErr != nil {
			deps.Logger.Warn().Err(clearErr).Msg("credential clear failed after persist failure")
		}
		return RefreshOutcome{}
	}

	return RefreshOutcome{Pair: pair, OK: true}
}
