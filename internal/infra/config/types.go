package config

import "time"

// Config is the process-level bootstrap configuration: everything needed
// before a single request names a tenant. Per-tenant settings (identity
// provider, storage location, size policy) are the Config Resolver's job
// (core/service/configresolver), not this package's.
type Config struct {
	Environment     string         `mapstructure:"environment"`
	Server          ServerConfig   `mapstructure:"server"`
	Database        DatabaseConfig `mapstructure:"database"`
	Logging         LoggingConfig  `mapstructure:"logging"`
	Storage         StorageConfig  `mapstructure:"storage"`
	MockUsers       []MockUser     `mapstructure:"mock_users"`
	SettingsPath    string         `mapstructure:"settings_path"`
	TenantConfigDir string         `mapstructure:"tenant_config_dir"`
}

// StorageConfig selects and configures the single object-store backend
// this process's adapters run against. Every tenant shares it; isolation
// is by tenant-prefixed key, not by backend (DESIGN.md, "Storage backend
// selection").
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "fs" | "s3"
	Root     string `mapstructure:"root"`    // fs only
	Bucket   string `mapstructure:"bucket"`  // s3 only
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"` // s3-compatible services (MinIO, LocalStack)
}

// MockUser is a statically-configured bearer token for the mock identity
// provider. Populated only in development/test settings files — a
// production app.yaml has an empty list, and any tenant resolving to
// identity_provider.kind=mock with no matching token simply fails auth.
type MockUser struct {
	Token       string   `mapstructure:"token"`
	Subject     string   `mapstructure:"subject"`
	Email       string   `mapstructure:"email"`
	Groups      []string `mapstructure:"groups"`
	Permissions []string `mapstructure:"permissions"`
	IsAdmin     bool     `mapstructure:"is_admin"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// ReadTimeoutDuration returns the read timeout as time.Duration.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as time.Duration.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// ShutdownTimeoutDuration returns the shutdown timeout as time.Duration.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// DatabaseConfig holds the Postgres connection settings backing the River
// job queue — the only relational state this core owns.
type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxConns           int32  `mapstructure:"max_conns"`
	MinConns           int32  `mapstructure:"min_conns"`
	MaxConnIdleSeconds int    `mapstructure:"max_conn_idle_seconds"`
}

// MaxConnIdleDuration returns the idle timeout as time.Duration.
func (d DatabaseConfig) MaxConnIdleDuration() time.Duration {
	return time.Duration(d.MaxConnIdleSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
