package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/verimodel/desktop/internal/backend"
	"github.com/verimodel/desktop/internal/bridge"
	"github.com/verimodel/desktop/internal/bridge/commands"
	"golang.org/x/sync/errgroup"
)

// CheckBackendHealth is the bridge command name the front end invokes.
const CheckBackendHealth = "check_backend_health"

type Options struct {
	Stdout io.Writer // bridge connection details
	Stderr io.Writer // startup diagnostics

	// OnStartupResult observes the startup probe. Optional.
	OnStartupResult func(backend.Result)
}

// Shell owns the bridge server and the startup probe for one launch.
type Shell struct {
	config     *Config
	stdout     io.Writer
	prober     *backend.Prober
	cmds       *commands.Registry
	bridge     *bridge.Server
	supervisor *StartupSupervisor
}

// New validates config in place and wires the prober, the bridge and the
// startup supervisor. Callers need not call Validate first.
func New(config *Config, opts Options) (*Shell, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	prober := backend.NewProber(backend.Config{
		URL:     config.BackendURL,
		Timeout: config.BackendTimeout,
	})

	cmds := commands.NewRegistry()
	cmds.MustRegister(CheckBackendHealth, func(ctx context.Context) (any, error) {
		return prober.CheckHealth(ctx)
	})

	server, err := bridge.New(bridge.Config{
		Addr:      config.HTTPAddr,
		Token:     config.HTTPToken,
		RateLimit: config.RateLimit,
	}, cmds, prober, config.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge: %w", err)
	}

	supervisor := NewStartupSupervisor(prober, config.BackendURL, SupervisorConfig{
		Delay:    config.StartupDelay,
		Hint:     config.StartHint,
		Out:      opts.Stderr,
		OnResult: opts.OnStartupResult,
	})

	return &Shell{
		config:     config,
		stdout:     opts.Stdout,
		prober:     prober,
		cmds:       cmds,
		bridge:     server,
		supervisor: supervisor,
	}, nil
}

// Start serves the bridge until ctx is cancelled. The startup probe is
// scheduled once the bridge listener is up and is never waited on, so a
// missing backend cannot delay or fail the shell.
func (s *Shell) Start(ctx context.Context) error {
	slog.Info("shell start", "backend", s.config.BackendURL, "bridge", s.config.HTTPAddr)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := s.bridge.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start bridge: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		select {
		case <-s.bridge.Ready():
		case <-egCtx.Done():
			return nil
		}
		s.announce()
		s.supervisor.Start()
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("shell failure", "error", err)
		return err
	}

	slog.Info("shell stopped")
	return nil
}

// Ready is closed once the bridge accepts connections.
func (s *Shell) Ready() <-chan struct{} {
	return s.bridge.Ready()
}

func (s *Shell) BridgeURL() (string, error) {
	return s.bridge.URL()
}

func (s *Shell) Token() string {
	return s.bridge.Token()
}

// StartupProbeDone is closed after the startup probe has run.
func (s *Shell) StartupProbeDone() <-chan struct{} {
	return s.supervisor.Done()
}

// CheckBackendHealth runs the bridge command in-process.
func (s *Shell) CheckBackendHealth(ctx context.Context) (bool, error) {
	out, err := s.cmds.Invoke(ctx, CheckBackendHealth)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (s *Shell) announce() {
	url, err := s.bridge.URL()
	if err != nil {
		return
	}
	fmt.Fprintf(s.stdout, "\nBridge running at: %s\n", url)
	fmt.Fprintf(s.stdout, "Token: %s\n\n", s.bridge.Token())
}
