package flows

import (
	"context"
	"time"

	"github.com/dukani/dukani-go/transport"
)

// Service is the centralized flow runner built once by the root client.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Send.Call != nil
}

func (s Service) RequestCode(ctx context.Context, phone string) RequestCodeResult {
	return RunRequestCode(ctx, phone, s.deps.Login)
}

func (s Service) VerifyCode(ctx context.Context, phone, code, name string) VerifyResult {
	return RunVerifyCode(ctx, phone, code, name, s.deps.Login)
}

func (s Service) Restore(ctx context.Context) RestoreResult {
	return RunRestore(ctx, s.deps.Restore)
}

func (s Service) Logout(ctx context.Context) {
	RunLogout(ctx, s.deps.Logout)
}

func (s Service) Refresh(ctx context.Context) RefreshOutcome {
	return RunRefresh(ctx, s.deps.Refresh)
}

func (s Service) Send(ctx context.Context, req transport.Request) SendResult {
	return RunSend(ctx, req, s.deps.Send)
}

func (s Service) LoadFavorites(ctx context.Context) (map[string]struct{}, bool, error) {
	return RunLoadFavorites(ctx, s.deps.Favorites)
}

func (s Service) ReconcileFavorites(ctx context.Context) (ReconcileOutcome, error) {
	return RunReconcileFavorites(ctx, s.deps.Favorites)
}

func (s Service) ToggleFavorite(ctx context.Context, itemID string) (ToggleOutcome, error) {
	return RunToggleFavorite(ctx, itemID, s.deps.Favorites)
}

// codeExpiryFallback is used when the backend omits an expiry hint.
const codeExpiryFallback = 5 * time.Minute

// CodeExpiry normalizes the backend's expiry hint.
func CodeExpiry(expiresIn time.Duration) time.Duration {
	if expiresIn <= 0 {
		return codeExpiryFallback
	}
	return expiresIn
}
