package shim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDesktopRuntime(t *testing.T) {
	t.Run("false without marker", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "")
		assert.False(t, IsDesktopRuntime())
	})

	t.Run("true with marker", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "1")
		assert.True(t, IsDesktopRuntime())
	})
}

func TestAPIBaseURL(t *testing.T) {
	t.Run("empty outside desktop runtime regardless of override", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "")
		t.Setenv(EnvAPIBase, "http://127.0.0.1:9999")
		assert.Equal(t, "", APIBaseURL())
	})

	t.Run("default local base inside runtime", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "1")
		t.Setenv(EnvAPIBase, "")
		assert.Equal(t, DefaultLocalBase, APIBaseURL())
	})

	t.Run("override with trailing slash stripped", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "1")
		t.Setenv(EnvAPIBase, "http://127.0.0.1:9999/")
		assert.Equal(t, "http://127.0.0.1:9999", APIBaseURL())
	})
}

func TestRemoteAPIBaseURL(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		t.Setenv(EnvRemoteAPIBase, "https://custom.example.com")
		t.Setenv(EnvVariant, "staging")
		assert.Equal(t, "https://custom.example.com", RemoteAPIBaseURL())
	})

	t.Run("variant table selection", func(t *testing.T) {
		t.Setenv(EnvRemoteAPIBase, "")
		t.Setenv(EnvVariant, "staging")
		assert.Equal(t, "https://staging.worldmonitor.app", RemoteAPIBaseURL())
	})

	t.Run("unrecognized variant falls back to default host", func(t *testing.T) {
		t.Setenv(EnvRemoteAPIBase, "")
		t.Setenv(EnvVariant, "chaos")
		assert.Equal(t, DefaultRemoteHost, RemoteAPIBaseURL())
	})

	t.Run("no variant falls back to default host", func(t *testing.T) {
		t.Setenv(EnvRemoteAPIBase, "")
		t.Setenv(EnvVariant, "")
		assert.Equal(t, DefaultRemoteHost, RemoteAPIBaseURL())
	})
}

func TestToRuntimeURL(t *testing.T) {
	t.Run("identity for non-absolute paths", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "1")
		assert.Equal(t, "https://example.com/x", ToRuntimeURL("https://example.com/x"))
		assert.Equal(t, "relative/path", ToRuntimeURL("relative/path"))
	})

	t.Run("identity outside desktop runtime", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "")
		assert.Equal(t, "/api/x", ToRuntimeURL("/api/x"))
	})

	t.Run("qualifies absolute paths inside runtime", func(t *testing.T) {
		t.Setenv(EnvDesktopMarker, "1")
		t.Setenv(EnvAPIBase, "http://127.0.0.1:46123")
		assert.Equal(t, "http://127.0.0.1:46123/api/x", ToRuntimeURL("/api/x"))
	})
}
