package dukani

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the tunables of a [Client]. Configure it before Build and
// treat it as immutable afterwards.
type Config struct {
	// BaseURL is the storefront backend root, e.g. https://api.example.com.
	BaseURL string `validate:"required,http_url"`

	// UserAgent is sent on every request.
	UserAgent string `validate:"required"`

	// RequestTimeout bounds each network attempt, original and retry
	// separately. A timeout surfaces like any other network failure and
	// never triggers a refresh.
	RequestTimeout time.Duration `validate:"min=0"`

	// TogglePushTimeout bounds the background remote effect of a favorite
	// toggle.
	TogglePushTimeout time.Duration `validate:"min=0"`

	// FavoritesNamespace keys the preference cache.
	FavoritesNamespace string `validate:"required"`

	Metrics MetricsConfig
}

func defaultConfig() Config {
	return Config{
		UserAgent:          "dukani-go",
		RequestTimeout:     15 * time.Second,
		TogglePushTimeout:  10 * time.Second,
		FavoritesNamespace: "favorites",
		Metrics:            MetricsConfig{Enabled: true},
	}
}

// cloneConfig exists so Build holds its own copy; Config currently has no
// reference fields but the call sites shouldn't need to know that.
func cloneConfig(cfg Config) Config {
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration via struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// validatePhone enforces E.164 at the SDK boundary before any network call.
func validatePhone(phone string) error {
	if err := validate.Var(phone, "required,e164"); err != nil {
		return fmt.Errorf("phone %q is not E.164", phone)
	}
	return nil
}
