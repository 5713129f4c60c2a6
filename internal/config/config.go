package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	// LogOutput is "stdout" or "stderr".
	LogOutput string `mapstructure:"log_output"`

	BaseURL               string        `mapstructure:"bitflyer_base_url"`
	APIKey                string        `mapstructure:"bitflyer_api_key"`
	APISecret             string        `mapstructure:"bitflyer_api_secret"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	RetryCount            int           `mapstructure:"retry_count"`
	KeepSession           bool          `mapstructure:"keep_session"`
	SerializeRequests     bool          `mapstructure:"serialize_requests"`

	FeedsFile           string        `mapstructure:"feeds_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith is Load on a caller-prepared viper instance (for example one with
// command-line flags already bound).
func LoadWith(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "bitflyer-go")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_output", "stdout")
	v.SetDefault("bitflyer_base_url", "https://api.bitflyer.com")
	v.SetDefault("bitflyer_api_key", "")
	v.SetDefault("bitflyer_api_secret", "")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("retry_count", 0)
	v.SetDefault("keep_session", true)
	v.SetDefault("serialize_requests", false)
	v.SetDefault("feeds_file", "./configs/feeds.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("poll_interval", 60) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/fingerprints.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((time.Hour)/time.Second))
}

func (cfg *Config) finalize() error {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return fmt.Errorf("invalid bitflyer_base_url (must not be empty)")
	}
	if cfg.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must not be negative)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if cfg.RetryCount < 0 {
		return fmt.Errorf("invalid retry_count (must not be negative)")
	}

	if cfg.PollIntervalSeconds <= 0 {
		return fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	return nil
}

// HasCredentials reports whether both API credentials are configured.
func (cfg *Config) HasCredentials() bool {
	return cfg != nil && cfg.APIKey != "" && cfg.APISecret != ""
}

// Redacted returns a copy safe to log: the API secret is masked and the key
// is cut to its first four characters.
func (cfg Config) Redacted() Config {
	if cfg.APISecret != "" {
		cfg.APISecret = "****"
	}
	if len(cfg.APIKey) > 4 {
		cfg.APIKey = cfg.APIKey[:4] + "****"
	}
	return cfg
}
