package dukani

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/internal/flight"
	"github.com/dukani/dukani-go/internal/flows"
	"github.com/dukani/dukani-go/transport"
)

// Client is the storefront session client. It owns the live session state,
// the single-flight refresh coordinator and the favorites reconciliation
// engine. All methods are safe for concurrent use.
type Client struct {
	config    Config
	logger    zerolog.Logger
	metrics   *Metrics
	transport *transport.Client
	creds     CredentialStore
	prefs     PreferenceCache
	flows     flows.Service

	sessionMu sync.RWMutex
	session   Session

	refreshCell   flight.Cell[flows.RefreshOutcome]
	reconcileCell flight.Cell[reconcileResult]

	// favMu serializes the local read-modify-write of a toggle; the
	// background remote effect runs outside it.
	favMu      sync.Mutex
	background sync.WaitGroup
}

// Session returns a snapshot of the current authentication state.
func (c *Client) Session() Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session
}

// Metrics returns a snapshot of the client's counters.
func (c *Client) Metrics() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *Client) accessToken() string {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session.AccessToken
}

func (c *Client) setAuthenticated(user User, accessToken string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session = Session{
		Authenticated: true,
		User:          user,
		Role:          user.Role,
		AccessToken:   accessToken,
	}
}

func (c *Client) setAccessToken(token string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session.AccessToken = token
}

func (c *Client) resetSession() {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session = Session{}
}

// RequestCode asks the backend to send a one-time code to phone and returns
// how long the code stays valid. On success the session records the pending
// phone so VerifyCode callers don't have to re-thread it.
func (c *Client) RequestCode(ctx context.Context, phone string) (time.Duration, error) {
	if !c.flows.Initialized() {
		return 0, ErrClientNotReady
	}

	res := c.flows.RequestCode(ctx, phone)
	switch res.Failure {
	case flows.RequestCodeFailureNone:
	case flows.RequestCodeFailureInvalidPhone:
		return 0, fmt.Errorf("%w: %v", ErrInvalidPhone, res.Err)
	case flows.RequestCodeFailureRateLimited:
		return 0, fmt.Errorf("%w: %v", ErrRateLimited, res.Err)
	default:
		return 0, res.Err
	}

	expiry := flows.CodeExpiry(res.ExpiresIn)
	c.sessionMu.Lock()
	c.session.PendingPhone = phone
	c.session.CodeExpiresAt = time.Now().Add(expiry)
	c.sessionMu.Unlock()

	c.metrics.inc(MetricCodeRequested)
	return expiry, nil
}

// VerifyCode exchanges the one-time code for a session. name is only used
// when the backend creates a new account; pass "" for returning users.
func (c *Client) VerifyCode(ctx context.Context, phone, code, name string) (*LoginResult, error) {
	if !c.flows.Initialized() {
		return nil, ErrClientNotReady
	}

	res := c.flows.VerifyCode(ctx, phone, code, name)
	switch res.Failure {
	case flows.VerifyFailureNone:
	case flows.VerifyFailureCodeExpired:
		c.metrics.inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrCodeExpired, res.Err)
	case flows.VerifyFailureCodeIncorrect:
		c.metrics.inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrCodeIncorrect, res.Err)
	case flows.VerifyFailureRateLimited:
		c.metrics.inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, res.Err)
	case flows.VerifyFailureStorage:
		c.metrics.inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, res.Err)
	default:
		c.metrics.inc(MetricLoginFailure)
		return nil, res.Err
	}

	user := userFromInfo(res.User)
	c.setAuthenticated(user, res.Pair.AccessToken)
	c.metrics.inc(MetricLoginSuccess)
	c.logger.Info().Str("user", user.ID).Bool("new", res.IsNewUser).Msg("session established")

	return &LoginResult{Session: c.Session(), IsNewUser: res.IsNewUser}, nil
}

// RestoreSession resolves a session from previously stored credentials. Call
// it once at process start, before issuing authenticated requests. It never
// fails: a session that cannot be restored is the ordinary logged-out state.
func (c *Client) RestoreSession(ctx context.Context) Session {
	if !c.flows.Initialized() {
		return Session{}
	}

	res := c.flows.Restore(ctx)
	if !res.Authenticated {
		c.resetSession()
		c.metrics.inc(MetricRestoreAnonymous)
		return c.Session()
	}

	user := userFromInfo(res.User)
	c.setAuthenticated(user, res.AccessToken)
	c.metrics.inc(MetricRestoreSuccess)
	c.logger.Info().Str("user", user.ID).Bool("refreshed", res.Refreshed).Msg("session restored")
	return c.Session()
}

// Logout signs out remotely best-effort and always resets the local session.
func (c *Client) Logout(ctx context.Context) {
	if !c.flows.Initialized() {
		return
	}
	c.flows.Logout(ctx)
	c.resetSession()
	c.metrics.inc(MetricLogout)
}

// Do executes one authenticated backend request through the retry-once
// pipeline. Without an access token it fails with [ErrNotAuthenticated] and
// no network call. A backend authorization rejection triggers exactly one
// coordinated refresh and one reissue; the second response is final either
// way. Every other failure, timeouts included, passes through untouched.
func (c *Client) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if !c.flows.Initialized() {
		return nil, ErrClientNotReady
	}

	res := c.flows.Send(ctx, req)
	if res.Retried {
		c.metrics.inc(MetricSendRetry)
	}
	switch res.Failure {
	case flows.SendFailureNone:
		return res.Response, nil
	case flows.SendFailureNoCredentials:
		c.metrics.inc(MetricSendFailFast)
		return nil, ErrNotAuthenticated
	case flows.SendFailureSessionExpired:
		c.metrics.inc(MetricSendSessionExpired)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, res.Err)
	default:
		return nil, res.Err
	}
}

// Flush blocks until in-flight background work (toggle pushes) has settled.
// Call it before process exit in short-lived programs.
func (c *Client) Flush() {
	c.background.Wait()
}

// coordinatedRefresh collapses concurrent refresh demand into one exchange.
// Exactly one caller executes the flow; everyone else waits for its outcome.
// The flow body runs on a detached context so a canceled waiter never aborts
// the shared attempt.
func (c *Client) coordinatedRefresh(ctx context.Context) (flows.TokenPair, bool) {
	outcome, joined := c.refreshCell.Do(ctx, func(ctx context.Context) flows.RefreshOutcome {
		out := c.flows.Refresh(ctx)
		if out.OK {
			c.setAccessToken(out.Pair.AccessToken)
			c.metrics.inc(MetricRefreshSuccess)
		} else {
			c.resetSession()
			c.metrics.inc(MetricRefreshFailure)
		}
		return out
	})
	if joined {
		c.metrics.inc(MetricRefreshJoined)
	}
	return outcome.Pair, outcome.OK
}

// Backend endpoints.
const (
	pathOTPRequest = "/v1/auth/otp/request"
	pathOTPVerify  = "/v1/auth/otp/verify"
	pathRefresh    = "/v1/auth/refresh"
	pathMe         = "/v1/auth/me"
	pathLogout     = "/v1/auth/logout"
	pathFavorites  = "/v1/favorites"
)

type otpRequestBody struct {
	Phone string `json:"phone"`
}

type otpRequestReply struct {
	ExpiresIn int64 `json:"expires_in"`
}

type otpVerifyBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
}

type userReply struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type otpVerifyReply struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IsNewUser    bool      `json:"is_new_user"`
	User         userReply `json:"user"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshReply struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type favoritesReply struct {
	Items []string `json:"items"`
}

// apiRequestCode calls the code-issuance endpoint unauthenticated.
func (c *Client) apiRequestCode(ctx context.Context, phone string) (time.Duration, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   pathOTPRequest,
		Body:   otpRequestBody{Phone: phone},
	}, "")
	if err != nil {
		return 0, err
	}
	var reply otpRequestReply
	if err := resp.Decode(&reply); err != nil {
		return 0, err
	}
	return time.Duration(reply.ExpiresIn) * time.Second, nil
}

func (c *Client) apiVerifyCode(ctx context.Context, phone, code, name string) (flows.VerifyReply, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   pathOTPVerify,
		Body:   otpVerifyBody{Phone: phone, Code: code, Name: name},
	}, "")
	if err != nil {
		return flows.VerifyReply{}, err
	}
	var reply otpVerifyReply
	if err := resp.Decode(&reply); err != nil {
		return flows.VerifyReply{}, err
	}
	return flows.VerifyReply{
		Pair: flows.TokenPair{AccessToken: reply.AccessToken, RefreshToken: reply.RefreshToken},
		User: flows.UserInfo{
			ID:    reply.User.ID,
			Phone: reply.User.Phone,
			Name:  reply.User.Name,
			Role:  reply.User.Role,
		},
		IsNewUser: reply.IsNewUser,
	}, nil
}

// apiExchangeRefresh presents the stored refresh token. The backend
// invalidates it on success, which is why only the coordinator may call this.
func (c *Client) apiExchangeRefresh(ctx context.Context, refreshToken string) (flows.TokenPair, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   pathRefresh,
		Body:   refreshBody{RefreshToken: refreshToken},
	}, "")
	if err != nil {
		return flows.TokenPair{}, err
	}
	var reply refreshReply
	if err := resp.Decode(&reply); err != nil {
		return flows.TokenPair{}, err
	}
	return flows.TokenPair{AccessToken: reply.AccessToken, RefreshToken: reply.RefreshToken}, nil
}

func (c *Client) apiFetchUser(ctx context.Context, accessToken string) (flows.UserInfo, error) {
	resp, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   pathMe,
	}, accessToken)
	if err != nil {
		return flows.UserInfo{}, err
	}
	var reply userReply
	if err := resp.Decode(&reply); err != nil {
		return flows.UserInfo{}, err
	}
	return flows.UserInfo{ID: reply.ID, Phone: reply.Phone, Name: reply.Name, Role: reply.Role}, nil
}

func (c *Client) apiSignOut(ctx context.Context) error {
	_, err := c.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   pathLogout,
	}, c.accessToken())
	return err
}

// Favorites endpoints go through Do so they get the full pipeline: token
// attach, refresh-and-reissue, fail-fast when logged out.
func (c *Client) apiFetchFavorites(ctx context.Context) (map[string]struct{}, error) {
	resp, err := c.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   pathFavorites,
	})
	if err != nil {
		return nil, err
	}
	var reply favoritesReply
	if err := resp.Decode(&reply); err != nil {
		return nil, err
	}
	items := make(map[string]struct{}, len(reply.Items))
	for _, id := range reply.Items {
		items[id] = struct{}{}
	}
	return items, nil
}

func (c *Client) apiPushFavoriteAdd(ctx context.Context, itemID string) error {
	_, err := c.Do(ctx, transport.Request{
		Method:         http.MethodPost,
		Path:           pathFavorites + "/" + itemID,
		IdempotencyKey: transport.NewIdempotencyKey(),
	})
	return err
}

func (c *Client) apiPushFavoriteRemove(ctx context.Context, itemID string) error {
	_, err := c.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   pathFavorites + "/" + itemID,
	})
	return err
}

// Credential persistence helpers shared by the flows.

func (c *Client) storeCredentials(ctx context.Context, pair flows.TokenPair) error {
	if err := c.creds.Set(ctx, credstore.KeyAccessToken, pair.AccessToken); err != nil {
		return err
	}
	return c.creds.Set(ctx, credstore.KeyRefreshToken, pair.RefreshToken)
}

func (c *Client) clearCredentials(ctx context.Context) error {
	if err := c.creds.Delete(ctx, credstore.KeyAccessToken); err != nil {
		return err
	}
	return c.creds.Delete(ctx, credstore.KeyRefreshToken)
}

// loadToken reads one stored token; absence is "" rather than an error.
func (c *Client) loadToken(ctx context.Context, key string) (string, error) {
	val, err := c.creds.Get(ctx, key)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (c *Client) readLocalFavorites(ctx context.Context) (map[string]struct{}, error) {
	return c.prefs.ReadAll(ctx, c.config.FavoritesNamespace)
}

func (c *Client) writeLocalFavorites(ctx context.Context, items map[string]struct{}) error {
	return c.prefs.WriteAll(ctx, c.config.FavoritesNamespace, items)
}
