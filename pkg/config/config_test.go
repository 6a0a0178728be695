package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "engagehub.yaml")

	cfg := Default()
	cfg.Store.Driver = DriverPostgres
	cfg.Engagement.MaxCommentLength = 500
	cfg.Database.Timeout = 3 * time.Second
	cfg.Posts = map[string]string{"post-1": "Hello"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, loaded.Store.Driver)
	assert.Equal(t, 500, loaded.Engagement.MaxCommentLength)
	assert.Equal(t, 3*time.Second, loaded.Database.Timeout)
	assert.Equal(t, "Hello", loaded.Posts["post-1"])
	assert.Equal(t, cfg.Server, loaded.Server)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ENGAGEHUB_SERVER_PORT", "9090")
	t.Setenv("ENGAGEHUB_IDENTITY_JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Identity.JWTSecret)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"server port", func(c *Config) { c.Server.Port = 0 }},
		{"comment length", func(c *Config) { c.Engagement.MaxCommentLength = 0 }},
		{"page sizes", func(c *Config) { c.Engagement.DefaultPageSize = 500 }},
		{"rate", func(c *Config) { c.RateLimit.Burst = -1 }},
		{"max clients", func(c *Config) { c.RateLimit.MaxClients = -1 }},
		{"redis", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConnection(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "pw"

	conn := cfg.Database.Connection()
	assert.Equal(t, cfg.Database.Host, conn.Host)
	assert.Equal(t, cfg.Database.Port, conn.Port)
	assert.Equal(t, "pw", conn.Password)
	assert.Equal(t, cfg.Database.ConnMaxLifetime, conn.ConnMaxLifetime)
}
