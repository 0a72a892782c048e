package docgate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var validate = validator.New()

type Config struct {
	// Port is the port number to listen on. The default is 8080.
	Port int `validate:"required,gt=0,lte=65535"`
	// Hostname is the hostname to listen on. The default is 0.0.0.0.
	Hostname string `validate:"required"`
	Auth     struct {
		// Passphrase is the static secret the token signing key is
		// derived from. The derivation is deterministic, so tokens stay
		// valid across restarts as long as the passphrase is unchanged.
		Passphrase string `validate:"required"`
		// TokenExp is the validity window of issued tokens.
		TokenExp time.Duration `validate:"required"`
		// CredentialFile is the KEY=VALUE env file carrying the
		// administrator credentials.
		CredentialFile string `validate:"required"`
	}
	SQLite struct {
		// File is the path to the SQLite database file holding the auth
		// event log.
		File string `validate:"required"`
		// Migrations is the path to the directory the migration files
		// reside in.
		Migrations string `validate:"required"`
	}
	Backend struct {
		// URL is the base URL of the document-processing backend that
		// protected routes are proxied to.
		URL string `validate:"required,url"`
	}
	// AllowedOrigins is a list of origins that are allowed to call the
	// auth endpoints cross-origin. The default is ["*"] because the login
	// UI may be served from a different origin than the API.
	AllowedOrigins []string
}

// LoadConfig loads the configuration from an optional config.yaml in the
// working directory and from environment variables (AUTH_PASSPHRASE,
// BACKEND_URL, ...). Missing values fall back to defaults.
func LoadConfig() (*Config, error) {
	config := &Config{}
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("port", 8080)
	viper.SetDefault("hostname", "0.0.0.0")
	viper.SetDefault("auth.passphrase", "docgate_auth_secret_2025")
	viper.SetDefault("auth.tokenexp", 24*time.Hour)
	viper.SetDefault("auth.credentialfile", "docker/.env")
	viper.SetDefault("sqlite.file", "./docgate.db")
	viper.SetDefault("sqlite.migrations", "./migrations")
	viper.SetDefault("backend.url", "http://127.0.0.1:7860")
	viper.SetDefault("allowedorigins", "*")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := viper.Unmarshal(&config,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(",")),
		),
	); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
