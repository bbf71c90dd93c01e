package dukani

import "errors"

var (
	// ErrInvalidPhone is returned when the supplied phone number is not a
	// plausible E.164 number or the backend rejects its format.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrRateLimited is returned when the backend throttles the operation.
	ErrRateLimited = errors.New("rate limited")
	// ErrCodeExpired is returned when the one-time code is no longer valid.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeIncorrect is returned when the one-time code does not match.
	ErrCodeIncorrect = errors.New("verification code incorrect")
	// ErrNotAuthenticated is returned by Do when no access token has ever
	// been available; no network call was made.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned by Do when the backend rejected the
	// access token and the coordinated refresh could not produce a new one.
	ErrSessionExpired = errors.New("session expired")
	// ErrStorageFailure wraps local persistence failures. It is the only
	// hard failure the reconciliation engine surfaces.
	ErrStorageFailure = errors.New("local storage failure")
	// ErrClientNotReady is returned when a Client is used before Build.
	ErrClientNotReady = errors.New("client not initialized")
)
