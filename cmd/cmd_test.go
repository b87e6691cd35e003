package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edit-relay/internal/config"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "edit-relay dev\n", out.String())
}

func TestUnknownCommandFails(t *testing.T) {
	err := Execute(context.Background(), []string{"bogus"})
	require.Error(t, err)
}

func TestServeFailsWithoutAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	err = Execute(context.Background(), []string{"serve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvAPIKey)
}

func TestLoadConfigAppliesPortOverride(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "hf_test")
	t.Setenv(config.EnvPort, "")

	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	cfg, err := loadConfig(serveOptions{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)

	cfg, err = loadConfig(serveOptions{configPath: path, overridePort: 9100})
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)

	_, err = loadConfig(serveOptions{configPath: path, overridePort: 70000})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))

	_, err = newLogger("loud", &buf)
	require.Error(t, err)
}
