// Package config provides application configuration with multi-source
// priority: environment variables over config file (~/.pagesmith/config.yaml)
// over defaults.
//
// Sensitive values (database password, API key) are masked in MarshalJSON
// and never logged. Validation is fail-fast at load time with sentinel
// errors checkable via errors.Is.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

// Config stores application configuration.
// SECURITY: sensitive fields are masked in MarshalJSON; when adding new
// secrets, update maskSensitive.
type Config struct {
	// Generation service configuration
	GeminiAPIKey string  `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON
	ModelName    string  `mapstructure:"model_name" json:"model_name"`
	Temperature  float32 `mapstructure:"temperature" json:"temperature"`

	// HTTP server configuration
	Addr string `mapstructure:"addr" json:"addr"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".pagesmith")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("temperature", 0.4)

	viper.SetDefault("addr", "127.0.0.1:8700")

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "pagesmith")
	viper.SetDefault("postgres_password", "pagesmith_dev_password")
	viper.SetDefault("postgres_db_name", "pagesmith")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variables explicitly. Secrets come from
// the environment only, never from the config file in production.
func bindEnvVariables() {
	_ = viper.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("postgres_password", "PAGESMITH_POSTGRES_PASSWORD")
	_ = viper.BindEnv("addr", "PAGESMITH_ADDR")
	_ = viper.BindEnv("log_level", "PAGESMITH_LOG_LEVEL")
}

// Validate checks configuration values. Fail-fast at load time.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %.2f (want 0..2)", ErrInvalidTemperature, c.Temperature)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (want 1..65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}
	return nil
}

// GenerationConfigured reports whether a generation API key is present.
// An unconfigured service is not a startup error: the server runs, and edit
// requests fail with an explicit not-configured result.
func (c *Config) GenerationConfigured() bool {
	return c.GeminiAPIKey != ""
}

// MarshalJSON masks sensitive fields.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(c)
	if masked.PostgresPassword != "" {
		masked.PostgresPassword = "***"
	}
	if masked.GeminiAPIKey != "" {
		masked.GeminiAPIKey = "***"
	}
	return json.Marshal(masked)
}
