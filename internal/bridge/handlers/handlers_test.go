package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verimodel/desktop/internal/backend"
	"github.com/verimodel/desktop/internal/bridge/commands"
	"github.com/verimodel/desktop/internal/version"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct {
	res backend.Result
}

func (f fakeChecker) Check(ctx context.Context) backend.Result {
	return f.res
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/health")
	Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestStatusHandler_ReportsCommandsAndVersion(t *testing.T) {
	reg := commands.NewRegistry()
	reg.MustRegister("check_backend_health", func(ctx context.Context) (any, error) { return true, nil })

	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	h := NewStatusHandler(started, backend.DefaultURL, reg)

	c, w := newTestContext(http.MethodGet, "/v1/status")
	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[StatusResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, version.Version, resp.Version)
	assert.Equal(t, "2026-10-19T08:00:00Z", resp.StartedAt)
	assert.Equal(t, backend.DefaultURL, resp.BackendURL)
	assert.Equal(t, []string{"check_backend_health"}, resp.Commands)
}

func TestStatusHandler_NoCommands(t *testing.T) {
	h := NewStatusHandler(time.Now(), backend.DefaultURL, nil)

	c, w := newTestContext(http.MethodGet, "/v1/status")
	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"commands":[]`)
}

func TestInvokeHandler(t *testing.T) {
	reg := commands.NewRegistry()
	reg.MustRegister("healthy", func(ctx context.Context) (any, error) { return true, nil })
	reg.MustRegister("unhealthy", func(ctx context.Context) (any, error) { return false, nil })
	reg.MustRegister("broken", func(ctx context.Context) (any, error) {
		return false, errors.New("backend: http client init: bad url")
	})
	h := NewInvokeHandler(reg)

	invoke := func(name string) *httptest.ResponseRecorder {
		c, w := newTestContext(http.MethodPost, "/v1/invoke/"+url.PathEscape(name))
		c.Params = gin.Params{{Key: "command", Value: name}}
		h.Invoke(c)
		return w
	}

	t.Run("true result", func(t *testing.T) {
		w := invoke("healthy")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[InvokeResponse](t, w)
		assert.True(t, resp.OK)
		assert.Equal(t, true, resp.Result)
		assert.Equal(t, "healthy", resp.Command)
		assert.Len(t, resp.ID, 36)
	})

	t.Run("false result is still ok", func(t *testing.T) {
		w := invoke("unhealthy")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"result":false`)
		resp := decode[InvokeResponse](t, w)
		assert.True(t, resp.OK)
		assert.Empty(t, resp.Error)
	})

	t.Run("command error becomes a string", func(t *testing.T) {
		w := invoke("broken")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[InvokeResponse](t, w)
		assert.False(t, resp.OK)
		assert.Nil(t, resp.Result)
		assert.Contains(t, resp.Error, "http client init")
	})

	t.Run("malformed name", func(t *testing.T) {
		for _, name := range []string{"", "Check Backend", "../status"} {
			w := invoke(name)
			require.Equal(t, http.StatusBadRequest, w.Code, name)
			resp := decode[BridgeError](t, w)
			assert.Equal(t, ErrCodeBadRequest, resp.ErrorCode)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		w := invoke("scan_file")
		require.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[BridgeError](t, w)
		assert.Equal(t, ErrCodeUnknownCommand, resp.ErrorCode)
	})
}

func TestBackendHandler_ReturnsFullResult(t *testing.T) {
	h := NewBackendHandler(fakeChecker{res: backend.Result{
		Status:    backend.StatusUnhealthy,
		Reason:    backend.ReasonTimeout,
		URL:       backend.DefaultURL,
		LatencyMs: 2001,
		Error:     "context deadline exceeded",
	}})

	c, w := newTestContext(http.MethodGet, "/v1/backend/health")
	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[backend.Result](t, w)
	assert.Equal(t, backend.StatusUnhealthy, resp.Status)
	assert.Equal(t, backend.ReasonTimeout, resp.Reason)
	assert.EqualValues(t, 2001, resp.LatencyMs)
}

func TestRecovery_RendersUnknownError(t *testing.T) {
	r := gin.New()
	r.Use(gin.CustomRecovery(Recovery))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[BridgeError](t, w)
	assert.Equal(t, ErrCodeUnknownError, resp.ErrorCode)
	assert.Contains(t, resp.Error, "boom")
}
