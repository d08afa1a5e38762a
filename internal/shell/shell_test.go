package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verimodel/desktop/internal/backend"
	"github.com/verimodel/desktop/internal/bridge/handlers"
	"github.com/verimodel/desktop/internal/utils"
)

func closedPortURL(t *testing.T) string {
	t.Helper()
	port, err := utils.GetFreePort()
	require.NoError(t, err)
	return fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
}

type runningShell struct {
	*Shell
	stdout *syncBuffer
	stderr *syncBuffer
	result chan backend.Result
	start  time.Time
	ready  time.Time
}

func runShell(t *testing.T, cfg *Config) *runningShell {
	t.Helper()
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = "127.0.0.1:0"
	}

	rs := &runningShell{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		result: make(chan backend.Result, 1),
	}
	sh, err := New(cfg, Options{
		Stdout:          rs.stdout,
		Stderr:          rs.stderr,
		OnStartupResult: func(r backend.Result) { rs.result <- r },
	})
	require.NoError(t, err)
	rs.Shell = sh

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	rs.start = time.Now()
	go func() { done <- sh.Start(ctx) }()

	select {
	case <-sh.Ready():
		rs.ready = time.Now()
	case err := <-done:
		t.Fatalf("shell exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("shell not ready")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("shell did not stop")
		}
	})
	return rs
}

func (rs *runningShell) waitStartupResult(t *testing.T) backend.Result {
	t.Helper()
	select {
	case r := <-rs.result:
		<-rs.StartupProbeDone()
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("no startup result")
		return backend.Result{}
	}
}

func TestShell_ReadyBeforeStartupDelay(t *testing.T) {
	delay := 500 * time.Millisecond
	rs := runShell(t, &Config{BackendURL: closedPortURL(t), StartupDelay: delay})

	assert.Less(t, rs.ready.Sub(rs.start), delay, "bridge must be up before the probe fires")

	res := rs.waitStartupResult(t)
	assert.GreaterOrEqual(t, time.Since(rs.start), delay)
	assert.False(t, res.Healthy())
	assert.Equal(t, backend.ReasonConnect, res.Reason)

	assert.Contains(t, rs.stderr.String(), "Backend server not detected at http://127.0.0.1:")
	assert.Contains(t, rs.stderr.String(), "Please start the backend with: python run_api.py")
	assert.Contains(t, rs.stdout.String(), "Bridge running at: http://127.0.0.1:")
	assert.Contains(t, rs.stdout.String(), "Token: "+rs.Token())
}

func TestShell_HealthyBackend(t *testing.T) {
	be := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(be.Close)

	rs := runShell(t, &Config{BackendURL: be.URL + "/api/v1/health", StartupDelay: 10 * time.Millisecond})

	res := rs.waitStartupResult(t)
	assert.True(t, res.Healthy())
	assert.Empty(t, rs.stderr.String())

	ok, err := rs.CheckBackendHealth(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShell_BridgeInvokeCheckBackendHealth(t *testing.T) {
	healthy := make(chan bool, 1)
	healthy <- false
	be := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok := <-healthy
		healthy <- ok
		if ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(be.Close)

	rs := runShell(t, &Config{BackendURL: be.URL, StartupDelay: time.Hour, HTTPToken: "tok"})
	base, err := rs.BridgeURL()
	require.NoError(t, err)

	invoke := func() handlers.InvokeResponse {
		req, err := http.NewRequest(http.MethodPost, base+"/v1/invoke/"+CheckBackendHealth, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer tok")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out handlers.InvokeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	first := invoke()
	assert.True(t, first.OK)
	assert.Equal(t, false, first.Result)

	<-healthy
	healthy <- true

	second := invoke()
	assert.True(t, second.OK)
	assert.Equal(t, true, second.Result)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestShell_StartFailsWhenBridgeCannotBind(t *testing.T) {
	blocker := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(blocker.Close)

	cfg := &Config{
		BackendURL:   closedPortURL(t),
		StartupDelay: 10 * time.Millisecond,
		HTTPAddr:     blocker.Listener.Addr().String(),
	}
	sh, err := New(cfg, Options{Stdout: &syncBuffer{}, Stderr: &syncBuffer{}})
	require.NoError(t, err)

	err = sh.Start(context.Background())
	assert.Error(t, err)
}

func TestNew_ValidatesConfig(t *testing.T) {
	cfg := &Config{BackendURL: closedPortURL(t), HTTPAddr: "127.0.0.1:0"}
	_, err := New(cfg, Options{Stdout: &syncBuffer{}, Stderr: &syncBuffer{}})
	require.NoError(t, err)

	assert.Equal(t, DefaultStartupDelay, cfg.StartupDelay)
	assert.Equal(t, DefaultStartHint, cfg.StartHint)
	assert.Len(t, cfg.HTTPToken, 32)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&Config{BackendURL: "localhost:8000"}, Options{})
	assert.ErrorIs(t, err, ErrBackendURL)
}
