// Package cmd provides the CLI commands for the dukani terminal client.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dukani "github.com/dukani/dukani-go"
	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/prefcache"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dukani",
	Short: "Terminal client for the Dukani storefront backend",
	Long: `dukani talks to a Dukani storefront backend from the shell.

Credentials are sealed to disk under the data directory and reused across
invocations; favorites are cached locally and reconciled with the backend.

Configuration:
  Config is loaded from dukani.yaml in the current directory or
  $HOME/.dukani/. Environment variables override config values with the
  DUKANI_ prefix, e.g. DUKANI_BASE_URL=https://api.example.com.

  The credential file secret is read from DUKANI_SECRET.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dukani.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for credentials and the favorites cache (default: $HOME/.dukani)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log client internals to stderr")
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dukani")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".dukani"))
		}
	}
	viper.SetEnvPrefix("DUKANI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "read config: %v\n", err)
			os.Exit(1)
		}
	}
}

func dataDir() (string, error) {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(home, ".dukani"), nil
}

// buildClient assembles a client from config: sealed file credentials and a
// sqlite favorites cache under the data directory. The returned closer
// flushes background work and releases the cache.
func buildClient() (*dukani.Client, func(), error) {
	baseURL := viper.GetString("base_url")
	if baseURL == "" {
		return nil, nil, errors.New("base URL not configured (set base_url or DUKANI_BASE_URL)")
	}
	secret := viper.GetString("secret")
	if secret == "" {
		return nil, nil, errors.New("credential secret not configured (set DUKANI_SECRET)")
	}

	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	creds, err := credstore.NewFile(filepath.Join(dir, "credentials.sealed"), []byte(secret))
	if err != nil {
		return nil, nil, err
	}
	prefs, err := prefcache.NewSQLite(filepath.Join(dir, "preferences.db"))
	if err != nil {
		return nil, nil, err
	}

	logger := zerolog.Nop()
	if viper.GetBool("verbose") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	client, err := dukani.New().
		WithBaseURL(baseURL).
		WithCredentialStore(creds).
		WithPreferenceCache(prefs).
		WithLogger(logger).
		Build()
	if err != nil {
		_ = prefs.Close()
		return nil, nil, err
	}

	closer := func() {
		client.Flush()
		_ = prefs.Close()
	}
	return client, closer, nil
}
