package dukani

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/internal/flows"
	"github.com/dukani/dukani-go/transport"
)

// Builder assembles a [Client]. Zero-value options fall back to defaults;
// CredentialStore and PreferenceCache are required.
type Builder struct {
	config     Config
	httpClient *http.Client
	creds      CredentialStore
	prefs      PreferenceCache
	logger     zerolog.Logger
	built      bool
}

// New returns a Builder with default configuration and a no-op logger.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration. Unset fields stay at their
// zero values; use the other With methods for targeted overrides.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the backend root URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithHTTPClient overrides the underlying HTTP client, e.g. for custom
// transports or test servers. RequestTimeout is ignored when set.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithCredentialStore sets the secure persistence for bearer secrets.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.creds = store
	return b
}

// WithPreferenceCache sets the durable local cache behind favorites.
func (b *Builder) WithPreferenceCache(cache PreferenceCache) *Builder {
	b.prefs = cache
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the client. A Builder
// builds at most once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.creds == nil {
		return nil, errors.New("credential store is required")
	}
	if b.prefs == nil {
		return nil, errors.New("preference cache is required")
	}
	cfg := cloneConfig(b.config)
	defaults := defaultConfig()
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.TogglePushTimeout == 0 {
		cfg.TogglePushTimeout = defaults.TogglePushTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	logger := b.logger.With().Str("component", "dukani").Logger()

	c := &Client{
		config:  cfg,
		logger:  logger,
		metrics: newMetrics(cfg.Metrics),
		creds:   b.creds,
		prefs:   b.prefs,
	}
	c.transport = transport.New(transport.Config{
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: b.httpClient,
		Logger:     logger.With().Str("component", "transport").Logger(),
	})

	c.flows = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			ValidatePhone:    validatePhone,
			RequestCode:      c.apiRequestCode,
			VerifyCode:       c.apiVerifyCode,
			StoreCredentials: c.storeCredentials,
			Logger:           logger,
		},
		Restore: flows.RestoreDeps{
			LoadAccessToken: func(ctx context.Context) (string, error) {
				return c.loadToken(ctx, credstore.KeyAccessToken)
			},
			TokenExpired:   accessTokenExpired,
			FetchUser:      c.apiFetchUser,
			Refresh:        c.coordinatedRefresh,
			IsUnauthorized: transport.IsUnauthorized,
			Logger:         logger,
		},
		Logout: flows.LogoutDeps{
			RemoteSignOut:    c.apiSignOut,
			ClearCredentials: c.clearCredentials,
			Logger:           logger,
		},
		Refresh: flows.RefreshDeps{
			LoadRefreshToken: func(ctx context.Context) (string, error) {
				return c.loadToken(ctx, credstore.KeyRefreshToken)
			},
			Exchange:         c.apiExchangeRefresh,
			StoreCredentials: c.storeCredentials,
			ClearCredentials: c.clearCredentials,
			Logger:           logger,
		},
		Send: flows.SendDeps{
			AccessToken:    c.accessToken,
			Call:           c.transport.Do,
			Refresh:        c.coordinatedRefresh,
			IsUnauthorized: transport.IsUnauthorized,
			Logger:         logger,
		},
		Favorites: flows.FavoritesDeps{
			ReadLocal:   c.readLocalFavorites,
			WriteLocal:  c.writeLocalFavorites,
			FetchRemote: c.apiFetchFavorites,
			PushAdd:     c.apiPushFavoriteAdd,
			PushRemove:  c.apiPushFavoriteRemove,
			Logger:      logger,
		},
	})

	return c, nil
}
