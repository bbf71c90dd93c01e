package flows

import (
	"context"

	"github.com/rs/zerolog"
)

// RestoreDeps captures session-restore flow dependencies.
type RestoreDeps struct {
	// LoadAccessToken returns the stored access token, or "" when none is
	// stored.
	LoadAccessToken func(ctx context.Context) (string, error)
	// TokenExpired reports whether the token is already past its embedded
	// expiry, letting restore skip a round-trip that is certain to 401.
	// Opaque tokens report false and the backend decides.
	TokenExpired func(token string) bool
	FetchUser    func(ctx context.Context, accessToken string) (UserInfo, error)
	// Refresh is the single-flight coordinator.
	Refresh        func(ctx context.Context) (TokenPair, bool)
	IsUnauthorized func(error) bool
	Logger         zerolog.Logger
}

// RestoreResult is never an error: a session that cannot be restored is the
// ordinary logged-out state, not a failure to report.
type RestoreResult struct {
	Authenticated bool
	User          UserInfo
	AccessToken   string
	Refreshed     bool
}

// RunRestore resolves a session from previously stored credentials at
// process start. A stored token that the backend rejects (or that is
// already expired) gets exactly one coordinated refresh before giving up.
func RunRestore(ctx context.Context, deps RestoreDeps) RestoreResult {
	token, err := deps.LoadAccessToken(ctx)
	if err != nil {
		deps.Logger.Warn().Err(err).Msg("access token read failed")
		token = ""
	}

	if token != "" && !deps.TokenExpired(token) {
		user, err := deps.FetchUser(ctx, token)
		if err == nil {
			return RestoreResult{Authenticated: true, User: user, AccessToken: token}
		}
		if !deps.IsUnauthorized(err) {
			// Offline or backend trouble: stay anonymous for now but keep
			// the stored credentials for the next restore.
			deps.Logger.Debug().Err(err).Msg("session check unavailable")
			return RestoreResult{}
		}
	}

	pair, ok := deps.Refresh(ctx)
	if !ok {
		return RestoreResult{}
	}

	user, err := deps.FetchUser(ctx, pair.AccessToken)
	if err != nil {
		deps.Logger.Debug().Err(err).Msg("session check failed after refresh")
		return RestoreResult{}
	}
	return RestoreResult{Authenticated: true, User: user, AccessToken: pair.AccessToken, Refreshed: true}
}
