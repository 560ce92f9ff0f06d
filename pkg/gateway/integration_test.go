package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldmonitor/gatewayd/pkg/config"
	"github.com/worldmonitor/gatewayd/pkg/dispatch"
	"github.com/worldmonitor/gatewayd/pkg/proxy"
	"github.com/worldmonitor/gatewayd/pkg/registry"
)

// newGateway wires a real registry, proxy, and dispatcher around a cloud
// upstream, mirroring the production assembly in the serve command.
func newGateway(t *testing.T, resourceDir, cloudURL string) *Server {
	t.Helper()
	cfg := config.NewDefault()
	cfg.ResourceDir = resourceDir
	cfg.RemoteOrigin = cloudURL

	reg := registry.New(resourceDir)
	cloud := proxy.New(cloudURL)
	d := dispatch.New(cfg, reg, cloud)
	return NewServer(cfg, d)
}

func writeModule(t *testing.T, resourceDir, name, content string) {
	t.Helper()
	path := filepath.Join(resourceDir, "api", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGatewayEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("service-status reports both components", func(t *testing.T) {
		t.Parallel()
		srv := newGateway(t, t.TempDir(), "https://worldmonitor.app")

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/service-status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["summary"].(map[string]any)["operational"])
		assert.Equal(t, true, body["local"].(map[string]any)["enabled"])
	})

	t.Run("missing handler passes through to cloud unchanged", func(t *testing.T) {
		t.Parallel()
		cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/weather", r.URL.Path)
			w.Header().Set("X-Origin", "cloud")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"temp":12}`))
		}))
		defer cloud.Close()

		srv := newGateway(t, t.TempDir(), cloud.URL)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cloud", rec.Header().Get("X-Origin"))
		assert.JSONEq(t, `{"temp":12}`, rec.Body.String())
	})

	t.Run("local handler overrides cloud", func(t *testing.T) {
		t.Parallel()
		cloudCalls := 0
		cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cloudCalls++
		}))
		defer cloud.Close()

		dir := t.TempDir()
		writeModule(t, dir, "weather.expr", `{"status": 200, "body": {"temp": -3, "source": "local"}}`)
		srv := newGateway(t, dir, cloud.URL)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"temp":-3,"source":"local"}`, rec.Body.String())
		assert.Zero(t, cloudCalls)
	})

	t.Run("broken handler falls back to cloud invisibly", func(t *testing.T) {
		t.Parallel()
		cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"source":"cloud"}`))
		}))
		defer cloud.Close()

		dir := t.TempDir()
		writeModule(t, dir, "weather.expr", `{"status": unclosed`)
		srv := newGateway(t, dir, cloud.URL)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"source":"cloud"}`, rec.Body.String())
	})

	t.Run("broken handler with unreachable cloud is the terminal 502", func(t *testing.T) {
		t.Parallel()
		cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		cloudURL := cloud.URL
		cloud.Close()

		dir := t.TempDir()
		writeModule(t, dir, "weather.expr", `{"status": unclosed`)
		srv := newGateway(t, dir, cloudURL)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/weather", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"local handler failed and cloud fallback unavailable"}`, rec.Body.String())
	})

	t.Run("POST body reaches the local handler", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeModule(t, dir, "echo.expr", `{"status": 200, "body": {"received": request.json.note}}`)
		srv := newGateway(t, dir, "https://worldmonitor.app")

		req := httptest.NewRequest("POST", "/api/echo", strings.NewReader(`{"note":"hi"}`))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":"hi"}`, rec.Body.String())
	})
}
