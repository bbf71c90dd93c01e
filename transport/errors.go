package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind tags a normalized backend failure.
type ErrorKind string

const (
	// KindInvalidInput marks requests the backend rejected as malformed.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindUnauthorized marks authorization failures (stale or missing token).
	KindUnauthorized ErrorKind = "unauthorized"
	// KindRateLimited marks throttled requests.
	KindRateLimited ErrorKind = "rate_limited"
	// KindRemoteRejected marks structured business errors from the backend.
	KindRemoteRejected ErrorKind = "remote_rejected"
	// KindNetwork marks transport-level failures: the request may never
	// have reached the backend at all.
	KindNetwork ErrorKind = "network"
)

// RemoteError is the single error representation for everything that goes
// wrong between this client and the backend. The backend reports failures
// either as a bare non-2xx status or as an {error:{code,message}} body
// (older endpoints use a plain string); all three shapes collapse into this
// one type at response-parse time.
type RemoteError struct {
	Kind    ErrorKind
	Code    string
	Message string
	// Status is the HTTP status, or 0 when the request never completed.
	Status int

	cause error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *RemoteError) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is a normalized authorization failure.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindUnauthorized
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindNetwork
}

// errorBody matches the backend's structured error envelope. Error is kept
// as RawMessage because some endpoints send {"error":"message"} instead of
// the nested object.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func normalize(status int, raw []byte) *RemoteError {
	re := &RemoteError{Status: status, Kind: kindForStatus(status)}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Error) > 0 {
		var detail errorDetail
		if err := json.Unmarshal(body.Error, &detail); err == nil && (detail.Code != "" || detail.Message != "") {
			re.Code = detail.Code
			re.Message = detail.Message
		} else {
			var plain string
			if err := json.Unmarshal(body.Error, &plain); err == nil {
				re.Message = plain
			}
		}
	}
	if re.Message == "" {
		re.Message = http.StatusText(status)
	}
	return re
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindInvalidInput
	default:
		return KindRemoteRejected
	}
}
