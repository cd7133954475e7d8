package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Progress ProgressConfig `mapstructure:"progress" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Catalog  CatalogConfig  `mapstructure:"catalog" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                  int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel              string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is only required when a Postgres-backed component is selected.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// Progress backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ProgressConfig selects where ring progress records live.
type ProgressConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory postgres redis"`
}

// RedisConfig contains connection settings for the redis progress backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// Catalog sources.
const (
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// CatalogConfig selects where questions are read from.
type CatalogConfig struct {
	Source          string `mapstructure:"source" validate:"required,oneof=file postgres"`
	SeedFile        string `mapstructure:"seed_file"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// NeedsDatabase reports whether any configured component uses Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Progress.Backend == BackendPostgres || c.Catalog.Source == CatalogPostgres
}
