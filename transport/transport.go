// Package transport is the boundary adapter for the storefront backend.
//
// It owns nothing of the wire protocol beyond the envelope: JSON bodies,
// bearer authorization, and the backend's error shape. Every response that
// is not a 2xx is normalized into a [*RemoteError] before any other package
// sees it, so no caller ever pattern-matches on raw status codes or JSON.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultUserAgent = "dukani-go"

// Request describes one outbound backend operation.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body   any
	Header http.Header

	// IdempotencyKey, when set, is sent on every attempt of this request,
	// including the authorization retry. Callers of non-idempotent
	// operations supply it via NewIdempotencyKey.
	IdempotencyKey string
}

// Response is a decoded-enough backend reply: status plus raw body.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// NewIdempotencyKey returns a fresh key for [Request.IdempotencyKey].
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// Config configures a transport [Client].
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client executes backend requests. It is stateless apart from configuration
// and is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    zerolog.Logger
}

// New creates a transport client. When cfg.HTTPClient is nil a client with
// cfg.Timeout is constructed.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: ua,
		http:      httpClient,
		logger:    cfg.Logger,
	}
}

// Do executes req. accessToken, when non-empty, is attached as a bearer
// credential. The returned error is always either a [*RemoteError] or nil;
// a non-nil *Response is returned only for 2xx replies.
func (c *Client) Do(ctx context.Context, req Request, accessToken string) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &RemoteError{Kind: KindInvalidInput, Message: fmt.Sprintf("encode request body: %v", err), cause: err}
		}
		body = bytes.NewReader(encoded)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &RemoteError{Kind: KindInvalidInput, Message: err.Error(), cause: err}
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	// Fresh correlation ID per attempt; the idempotency key, not this,
	// is what survives the retry.
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug().Str("method", req.Method).Str("path", req.Path).Err(err).Msg("backend unreachable")
		return nil, &RemoteError{Kind: KindNetwork, Message: err.Error(), cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RemoteError{Kind: KindNetwork, Message: err.Error(), cause: err}
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &Response{Status: httpResp.StatusCode, Body: raw}, nil
	}

	remoteErr := normalize(httpResp.StatusCode, raw)
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Str("kind", string(remoteErr.Kind)).
		Str("code", remoteErr.Code).
		Msg("backend rejected request")
	return nil, remoteErr
}

// maxBodyBytes caps response reads; backend payloads in this API are small.
const maxBodyBytes = 1 << 20
