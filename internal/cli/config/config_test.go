package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "engagehub/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ConfigCmd.SetOut(&buf)
	ConfigCmd.SetErr(&buf)
	ConfigCmd.SetArgs(args)
	err := ConfigCmd.Execute()
	return buf.String(), err
}

func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagehub.yaml")

	out, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := appconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, appconfig.Default().Server, cfg.Server)

	_, err = run(t, "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init", path, "--force")
	assert.NoError(t, err)
}

func TestShowMasksSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engagehub.yaml")
	cfg := appconfig.Default()
	cfg.Database.Password = "hunter2"
	cfg.Identity.JWTSecret = "signing-key"
	require.NoError(t, cfg.Save(path))

	viper.Set("config", path)
	t.Cleanup(func() { viper.Set("config", "") })

	out, err := run(t, "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "signing-key")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "max_comment_length: 1000")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hunter2")
}
