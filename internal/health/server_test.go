package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(checks map[string]Pinger) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(Config{ServiceName: "gallop", Version: "test", Logger: log, Checks: checks})
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	s := newTestServer(nil)

	rec, body := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gallop", body["service"])
	assert.Equal(t, "test", body["version"])

	rec, _ = get(t, s.Handler(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReflectsStateAndChecks(t *testing.T) {
	healthy := true
	s := newTestServer(map[string]Pinger{
		"database": PingFunc(func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		}),
	})

	rec, body := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["checks"].(map[string]interface{})["service"])

	s.SetReady(true)
	rec, _ = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec, body = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error: connection refused", body["checks"].(map[string]interface{})["database"])
}

func TestHandleMountsHandlers(t *testing.T) {
	s := newTestServer(nil)
	s.Handle("/api/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTeapot, map[string]string{"path": r.URL.Path})
	}))

	rec, body := get(t, s.Handler(), "/api/horses")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "/api/horses", body["path"])
}
