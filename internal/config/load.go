package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var defaults = map[string]interface{}{
	"server.port":                    8080,
	"server.log_level":               "info",
	"server.request_timeout_seconds": 5,
	"database.url":                   "",
	"auth.jwt_secret":                "",
	"auth.token_lifetime_minutes":    60,
	"progress.backend":               BackendMemory,
	"redis.addr":                     "localhost:6379",
	"redis.password":                 "",
	"redis.db":                       0,
	"catalog.source":                 CatalogFile,
	"catalog.seed_file":              "stacks.yaml",
	"catalog.cache_ttl_seconds":      60,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching for config.yaml. An empty path means search.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SCRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if cfg.NeedsDatabase() && cfg.Database.URL == "" {
		return fmt.Errorf("validation failed: database.url is required when progress.backend or catalog.source is postgres")
	}
	if cfg.Progress.Backend == BackendRedis && cfg.Redis.Addr == "" {
		return fmt.Errorf("validation failed: redis.addr is required when progress.backend is redis")
	}
	if cfg.Catalog.Source == CatalogFile && cfg.Catalog.SeedFile == "" {
		return fmt.Errorf("validation failed: catalog.seed_file is required when catalog.source is file")
	}
	return nil
}
