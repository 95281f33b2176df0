// Package config loads and validates the service configuration from a YAML
// file with environment variable overrides.
package config

import "time"

// Config is the root configuration for the authentication service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Token    TokenConfig    `yaml:"token"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr      string   `yaml:"listenAddr"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DatabaseConfig configures the PostgreSQL user store.
type DatabaseConfig struct {
	URL             string   `yaml:"url"`
	MaxOpenConns    int      `yaml:"maxOpenConns"`
	MaxIdleConns    int      `yaml:"maxIdleConns"`
	ConnMaxLifetime Duration `yaml:"connMaxLifetime"`
	MigrateOnStart  bool     `yaml:"migrateOnStart"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	URL            string   `yaml:"url"`
	PoolSize       int      `yaml:"poolSize"`
	ConnectTimeout Duration `yaml:"connectTimeout"`
	ReadTimeout    Duration `yaml:"readTimeout"`
	WriteTimeout   Duration `yaml:"writeTimeout"`
	KeyPrefix      string   `yaml:"keyPrefix"`
}

// RabbitMQConfig configures the event publisher. When Enabled is false the
// service runs with a no-op publisher; events are observability, not a
// correctness dependency.
type RabbitMQConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// TokenConfig configures token signing and lifetimes.
type TokenConfig struct {
	Secret     string   `yaml:"secret"`
	Issuer     string   `yaml:"issuer"`
	AccessTTL  Duration `yaml:"accessTTL"`
	RefreshTTL Duration `yaml:"refreshTTL"`
}

// CacheConfig configures application-level cache policy.
type CacheConfig struct {
	UserTTL Duration `yaml:"userTTL"`
}

// Default returns a configuration populated with development defaults.
// Load starts from these and overlays file and environment values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(10 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			URL:             "postgres://localhost:5432/authcove",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(30 * time.Minute),
			MigrateOnStart:  true,
		},
		Redis: RedisConfig{
			URL:            "redis://localhost:6379",
			PoolSize:       10,
			ConnectTimeout: Duration(5 * time.Second),
			ReadTimeout:    Duration(2 * time.Second),
			WriteTimeout:   Duration(2 * time.Second),
			KeyPrefix:      "authcove:",
		},
		RabbitMQ: RabbitMQConfig{
			Enabled: true,
			URL:     "amqp://localhost:5672",
		},
		Token: TokenConfig{
			Issuer:     "authcove",
			AccessTTL:  Duration(15 * time.Minute),
			RefreshTTL: Duration(4 * time.Hour),
		},
		Cache: CacheConfig{
			UserTTL: Duration(time.Hour),
		},
	}
}
