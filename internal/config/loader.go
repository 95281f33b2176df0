package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides applied after file loading. Secrets and
// endpoint URLs are expected to arrive through the environment in
// deployments; the file carries everything else.
const (
	EnvListenAddr  = "AUTHCOVE_LISTEN_ADDR"
	EnvLogLevel    = "AUTHCOVE_LOG_LEVEL"
	EnvDatabaseURL = "AUTHCOVE_DATABASE_URL"
	EnvRedisURL    = "AUTHCOVE_REDIS_URL"
	EnvRabbitMQURL = "AUTHCOVE_RABBITMQ_URL"
	EnvTokenSecret = "AUTHCOVE_TOKEN_SECRET"
)

// Load reads the configuration file at path, overlays it on the defaults,
// and applies environment overrides. An empty path skips the file and uses
// defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides overlays environment variables onto the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv(EnvRabbitMQURL); v != "" {
		cfg.RabbitMQ.URL = v
	}
	if v := os.Getenv(EnvTokenSecret); v != "" {
		cfg.Token.Secret = v
	}
}
