package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		data := map[string]string{"foo": "bar"}

		WriteJSON(rec, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	t.Run("writes the gateway error shape", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteError(rec, http.StatusBadGateway, "cloud fallback unavailable")

		assert.Equal(t, http.StatusBadGateway, rec.Code)

		var result map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, "cloud fallback unavailable", result["error"])
		assert.Len(t, result, 1)
	})
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "not found") }, http.StatusNotFound},
		{"internal error", func(w http.ResponseWriter) { WriteInternalError(w, "internal gateway error") }, http.StatusInternalServerError},
		{"bad gateway", func(w http.ResponseWriter) { WriteBadGateway(w, "upstream unreachable") }, http.StatusBadGateway},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)

			var result map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.NotEmpty(t, result["error"])
		})
	}
}

func TestWriteOK(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteOK(rec, map[string]bool{"success": true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
