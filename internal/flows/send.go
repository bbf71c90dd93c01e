package flows

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dukani/dukani-go/transport"
)

// SendFailure classifies pipeline failures for root-level mapping.
type SendFailure int

const (
	SendFailureNone SendFailure = iota
	// SendFailureNoCredentials: no access token has ever been available;
	// the request was not sent.
	SendFailureNoCredentials
	// SendFailureSessionExpired: the backend rejected the token and the
	// coordinated refresh did not produce a new one.
	SendFailureSessionExpired
	// SendFailureCall: the underlying call failed for a reason this
	// pipeline does not interpret; Err is surfaced untouched.
	SendFailureCall
)

// SendResult carries the backend response or failure metadata.
type SendResult struct {
	Failure  SendFailure
	Err      error
	Response *transport.Response
	Retried  bool
}

// SendDeps captures authenticated-pipeline dependencies.
type SendDeps struct {
	AccessToken func() string
	Call        func(ctx context.Context, req transport.Request, accessToken string) (*transport.Response, error)
	// Refresh is the single-flight coordinator; ok false means the session
	// could not be refreshed.
	Refresh        func(ctx context.Context) (TokenPair, bool)
	IsUnauthorized func(error) bool
	Logger         zerolog.Logger
}

// RunSend executes one authenticated call with retry-once semantics.
//
// Guarantees, in order: with no access token the call is never issued; an
// authorization failure triggers exactly one coordinated refresh and, when
// that yields a pair, exactly one reissue; the second response — success or
// failure — is final. Every non-authorization failure passes through
// untouched, including timeouts.
func RunSend(ctx context.Context, req transport.Request, deps SendDeps) SendResult {
	token := deps.AccessToken()
	if token == "" {
		return SendResult{Failure: SendFailureNoCredentials}
	}

	resp, err := deps.Call(ctx, req, token)
	if err == nil {
		return SendResult{Response: resp}
	}
	if !deps.IsUnauthorized(err) {
		return SendResult{Failure: SendFailureCall, Err: err}
	}

	pair, ok := deps.Refresh(ctx)
	if !ok {
		return SendResult{Failure: SendFailureSessionExpired, Err: err}
	}

	deps.Logger.Debug().Str("path", req.Path).Msg("reissuing call after refresh")
	resp, err = deps.Call(ctx, req, pair.AccessToken)
	if err != nil {
		return SendResult{Failure: SendFailureCall, Err: err, Retried: true}
	}
	return SendResult{Response: resp, Retried: true}
}
