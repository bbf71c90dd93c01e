package flows

import (
	"context"

	"github.com/rs/zerolog"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	RemoteSignOut    func(ctx context.Context) error
	ClearCredentials func(ctx context.Context) error
	Logger           zerolog.Logger
}

// RunLogout signs out remotely best-effort and clears local credentials
// unconditionally. It has no failure mode: from the user's perspective
// logout always succeeds, reachable server or not.
func RunLogout(ctx context.Context, deps LogoutDeps) {
	if err := deps.RemoteSignOut(ctx); err != nil {
		deps.Logger.Debug().Err(err).Msg("remote sign-out failed, clearing locally anyway")
	}
	if err := deps.ClearCredentials(ctx); err != nil {
		deps.Logger.Warn().Err(err).Msg("credential clear failed during logout")
	}
}
