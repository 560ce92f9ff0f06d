package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// matching t.Chdir from newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultRemoteOrigin, cfg.RemoteOrigin)
	assert.Equal(t, DefaultResourceDir, cfg.ResourceDir)
	assert.Equal(t, ModeDesktop, cfg.Mode)
	assert.Equal(t, SourceDefault, cfg.Sources["port"])
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvPort, "5050")
	t.Setenv(EnvRemoteOrigin, "https://staging.worldmonitor.app")
	t.Setenv(EnvMode, "dev")

	cfg := NewDefault()
	LoadEnv(cfg)

	assert.Equal(t, 5050, cfg.Port)
	assert.Equal(t, "https://staging.worldmonitor.app", cfg.RemoteOrigin)
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, SourceEnv, cfg.Sources["port"])
	// Untouched fields keep their default source.
	assert.Equal(t, SourceDefault, cfg.Sources["resourceDir"])
}

func TestLoadEnvIgnoresBadPort(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")

	cfg := NewDefault()
	LoadEnv(cfg)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, SourceDefault, cfg.Sources["port"])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatewayd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nresourceDir: /opt/wm/resources\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/opt/wm/resources", cfg.ResourceDir)
	assert.Empty(t, cfg.RemoteOrigin)
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatewayd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gatewayd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nmode: dev\n"), 0o644))

	// Env beats file; file beats default.
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, SourceEnv, cfg.Sources["port"])
	assert.Equal(t, "dev", cfg.Mode)
	assert.Equal(t, SourceFile, cfg.Sources["mode"])
	assert.Equal(t, DefaultRemoteOrigin, cfg.RemoteOrigin)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Validate(NewDefault()).IsValid())
	})

	t.Run("rejects bad port", func(t *testing.T) {
		t.Parallel()
		cfg := NewDefault()
		cfg.Port = 0
		result := Validate(cfg)
		require.False(t, result.IsValid())
		assert.Contains(t, result.Error(), "port")
	})

	t.Run("rejects relative remote origin", func(t *testing.T) {
		t.Parallel()
		cfg := NewDefault()
		cfg.RemoteOrigin = "worldmonitor.app/api"
		assert.False(t, Validate(cfg).IsValid())
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		t.Parallel()
		cfg := NewDefault()
		cfg.Mode = "turbo"
		result := Validate(cfg)
		require.False(t, result.IsValid())
		assert.Contains(t, result.Error(), "mode")
	})

	t.Run("collects multiple errors", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		result := Validate(cfg)
		assert.GreaterOrEqual(t, len(result.Errors), 3)
	})
}
