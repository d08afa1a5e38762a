package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/verimodel/desktop/internal/backend"
)

// Checker runs one backend probe.
type Checker interface {
	Check(ctx context.Context) backend.Result
}

type SupervisorConfig struct {
	Delay    time.Duration        // grace period before the probe
	Hint     string               // how to start the backend by hand
	Out      io.Writer            // diagnostic stream, usually stderr
	OnResult func(backend.Result) // called from the probe goroutine
}

// StartupSupervisor probes the backend once, shortly after launch, and
// prints a hint when it is not reachable.
//
// The probe goroutine is detached: nothing waits for it and it cannot be
// cancelled. Its lifetime is bounded by Delay plus the prober timeout.
type StartupSupervisor struct {
	checker    Checker
	backendURL string
	config     SupervisorConfig
	warn       lipgloss.Style

	once sync.Once
	done chan struct{}
}

func NewStartupSupervisor(checker Checker, backendURL string, config SupervisorConfig) *StartupSupervisor {
	if config.Out == nil {
		config.Out = io.Discard
	}
	if config.Hint == "" {
		config.Hint = DefaultStartHint
	}

	return &StartupSupervisor{
		checker:    checker,
		backendURL: backendURL,
		config:     config,
		warn:       lipgloss.NewRenderer(config.Out).NewStyle().Foreground(lipgloss.Color("11")),
		done:       make(chan struct{}),
	}
}

// Start schedules the probe and returns immediately. Calls after the first
// are no-ops.
func (s *StartupSupervisor) Start() {
	s.once.Do(func() {
		slog.Debug("startup probe scheduled", "delay", s.config.Delay, "url", s.backendURL)
		go s.run()
	})
}

// Done is closed after the probe finished and diagnostics were written.
func (s *StartupSupervisor) Done() <-chan struct{} {
	return s.done
}

func (s *StartupSupervisor) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("startup probe panic", "panic", r)
		}
	}()

	time.Sleep(s.config.Delay)

	res := s.checker.Check(context.Background())
	if res.Healthy() {
		slog.Info("backend detected", "url", s.backendURL, "latency", res.Latency())
	} else {
		slog.Warn("backend not detected", "url", s.backendURL, "reason", res.Reason, "error", res.Error)
		s.writeDiagnostics()
	}

	if s.config.OnResult != nil {
		s.config.OnResult(res)
	}
}

func (s *StartupSupervisor) writeDiagnostics() {
	var b strings.Builder
	b.WriteString(s.warn.Render(fmt.Sprintf("⚠️ Backend server not detected at %s", backend.Origin(s.backendURL))))
	b.WriteByte('\n')
	b.WriteString(s.warn.Render(fmt.Sprintf("⚠️ Please start the backend with: %s", s.config.Hint)))
	b.WriteByte('\n')

	if _, err := io.WriteString(s.config.Out, b.String()); err != nil {
		slog.Debug("write startup diagnostics", "error", err)
	}
}
