package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 15*time.Minute, cfg.Token.AccessTTL.Duration())
	assert.Equal(t, 4*time.Hour, cfg.Token.RefreshTTL.Duration())
	assert.Equal(t, time.Hour, cfg.Cache.UserTTL.Duration())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listenAddr: ":9090"
token:
  secret: file-secret
  accessTTL: 5m
redis:
  keyPrefix: "custom:"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "file-secret", cfg.Token.Secret)
	assert.Equal(t, 5*time.Minute, cfg.Token.AccessTTL.Duration())
	assert.Equal(t, "custom:", cfg.Redis.KeyPrefix)
	// Unset values keep their defaults.
	assert.Equal(t, 4*time.Hour, cfg.Token.RefreshTTL.Duration())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTHCOVE_LISTEN_ADDR", ":7070")
	t.Setenv("AUTHCOVE_TOKEN_SECRET", "env-secret")
	t.Setenv("AUTHCOVE_REDIS_URL", "redis://elsewhere:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, "env-secret", cfg.Token.Secret)
	assert.Equal(t, "redis://elsewhere:6379", cfg.Redis.URL)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := Default()
		cfg.Token.Secret = validSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Token.Secret = "" }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.Token.Secret = "tooshort" }, wantErr: true},
		{name: "missing listen addr", mutate: func(c *Config) { c.Server.ListenAddr = "" }, wantErr: true},
		{name: "missing database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
		{name: "missing redis url", mutate: func(c *Config) { c.Redis.URL = "" }, wantErr: true},
		{
			name: "refresh not longer than access",
			mutate: func(c *Config) {
				c.Token.AccessTTL = Duration(time.Hour)
				c.Token.RefreshTTL = Duration(time.Hour)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDurationYAML(t *testing.T) {
	t.Parallel()

	d := Duration(90 * time.Second)
	out, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", out)
}
