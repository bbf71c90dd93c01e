package flows

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukani/dukani-go/transport"
)

// RequestCodeFailure classifies code-issuance failures for root-level mapping.
type RequestCodeFailure int

const (
	RequestCodeFailureNone RequestCodeFailure = iota
	RequestCodeFailureInvalidPhone
	RequestCodeFailureRateLimited
	RequestCodeFailureBackend
)

// RequestCodeResult carries the code expiry hint or failure metadata.
type RequestCodeResult struct {
	Failure   RequestCodeFailure
	Err       error
	ExpiresIn time.Duration
}

// VerifyFailure classifies code-verification failures for root-level mapping.
type VerifyFailure int

const (
	VerifyFailureNone VerifyFailure = iota
	VerifyFailureCodeExpired
	VerifyFailureCodeIncorrect
	VerifyFailureRateLimited
	VerifyFailureStorage
	VerifyFailureBackend
)

// VerifyReply is what the backend returns on a successful code exchange.
type VerifyReply struct {
	Pair      TokenPair
	User      UserInfo
	IsNewUser bool
}

// VerifyResult carries the verified session material or failure metadata.
// On any failure no credentials have been persisted.
type VerifyResult struct {
	Failure   VerifyFailure
	Err       error
	Pair      TokenPair
	User      UserInfo
	IsNewUser bool
}

// LoginDeps captures OTP login flow dependencies.
type LoginDeps struct {
	ValidatePhone    func(phone string) error
	RequestCode      func(ctx context.Context, phone string) (time.Duration, error)
	VerifyCode       func(ctx context.Context, phone, code, name string) (VerifyReply, error)
	StoreCredentials func(ctx context.Context, pair TokenPair) error
	Logger           zerolog.Logger
}

// Backend error codes for the OTP verify endpoint.
const (
	codeExpired   = "code_expired"
	codeIncorrect = "code_incorrect"
)

// RunRequestCode asks the backend to issue a one-time code. Nothing is
// persisted; the pending-verification state lives in the caller's session.
func RunRequestCode(ctx context.Context, phone string, deps LoginDeps) RequestCodeResult {
	if deps.ValidatePhone != nil {
		if err := deps.ValidatePhone(phone); err != nil {
			return RequestCodeResult{Failure: RequestCodeFailureInvalidPhone, Err: err}
		}
	}

	expiresIn, err := deps.RequestCode(ctx, phone)
	if err != nil {
		var re *transport.RemoteError
		if errors.As(err, &re) {
			switch re.Kind {
			case transport.KindRateLimited:
				return RequestCodeResult{Failure: RequestCodeFailureRateLimited, Err: err}
			case transport.KindInvalidInput:
				return RequestCodeResult{Failure: RequestCodeFailureInvalidPhone, Err: err}
			}
		}
		return RequestCodeResult{Failure: RequestCodeFailureBackend, Err: err}
	}

	return RequestCodeResult{ExpiresIn: expiresIn}
}

// RunVerifyCode exchanges a one-time code for a credential pair and persists
// it. The session stays unauthenticated on every failure path.
func RunVerifyCode(ctx context.Context, phone, code, name string, deps LoginDeps) VerifyResult {
	reply, err := deps.VerifyCode(ctx, phone, code, name)
	if err != nil {
		var re *transport.RemoteError
		if errors.As(err, &re) {
			switch {
			case re.Code == codeExpired:
				return VerifyResult{Failure: VerifyFailureCodeExpired, Err: err}
			case re.Code == codeIncorrect:
				return VerifyResult{Failure: VerifyFailureCodeIncorrect, Err: err}
			case re.Kind == transport.KindRateLimited:
				return VerifyResult{Failure: VerifyFailureRateLimited, Err: err}
			}
		}
		return VerifyResult{Failure: VerifyFailureBackend, Err: err}
	}

	if err := deps.StoreCredentials(ctx, reply.Pair); err != nil {
		deps.Logger.Warn().Err(err).Msg("credential persist failed after verification")
		return VerifyResult{Failure: VerifyFailureStorage, Err: err}
	}

	return VerifyResult{
		Pair:      reply.Pair,
		User:      reply.User,
		IsNewUser: reply.IsNewUser,
	}
}
