package config

import (
	"errors"
	"fmt"
)

// minSecretLength is the minimum accepted signing secret length in bytes.
// Shorter HMAC keys weaken the token integrity guarantee.
const minSecretLength = 32

// Validate checks the configuration for values the service cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listenAddr is required"))
	}
	if cfg.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if cfg.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required"))
	}
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		errs = append(errs, errors.New("rabbitmq.url is required when rabbitmq is enabled"))
	}

	if cfg.Token.Secret == "" {
		errs = append(errs, errors.New("token.secret is required"))
	} else if len(cfg.Token.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("token.secret must be at least %d bytes", minSecretLength))
	}
	if cfg.Token.AccessTTL <= 0 {
		errs = append(errs, errors.New("token.accessTTL must be positive"))
	}
	if cfg.Token.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token.refreshTTL must be positive"))
	}
	if cfg.Token.AccessTTL > 0 && cfg.Token.RefreshTTL > 0 &&
		cfg.Token.RefreshTTL.Duration() <= cfg.Token.AccessTTL.Duration() {
		errs = append(errs, errors.New("token.refreshTTL must exceed token.accessTTL"))
	}

	if cfg.Cache.UserTTL <= 0 {
		errs = append(errs, errors.New("cache.userTTL must be positive"))
	}

	return errors.Join(errs...)
}
