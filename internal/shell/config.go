package shell

import (
	"errors"
	"fmt"
	"time"

	"github.com/verimodel/desktop/internal/backend"
	"github.com/verimodel/desktop/internal/bridge"
	"github.com/verimodel/desktop/internal/utils"
)

const (
	DefaultStartupDelay = 2 * time.Second
	DefaultStartHint    = "python run_api.py"
)

var (
	ErrBackendURL     = errors.New("invalid backend url")
	ErrBackendTimeout = errors.New("backend timeout must be positive")
	ErrStartupDelay   = errors.New("startup delay must not be negative")
	ErrHTTPAddr       = errors.New("invalid http addr")
	ErrRateLimit      = errors.New("rate limit must not be negative")
)

type Config struct {
	BackendURL     string        `json:"backend_url" mapstructure:"backend_url"`
	BackendTimeout time.Duration `json:"backend_timeout" mapstructure:"backend_timeout"`
	StartupDelay   time.Duration `json:"startup_delay" mapstructure:"startup_delay"`
	StartHint      string        `json:"start_hint" mapstructure:"start_hint"`
	HTTPAddr       string        `json:"http_addr" mapstructure:"http_addr"`
	HTTPToken      string        `json:"http_token" mapstructure:"http_token"`
	RateLimit      int64         `json:"rate_limit" mapstructure:"rate_limit"`
	Path           string        `json:"-" mapstructure:"-"`
}

// Validate fills defaults and rejects values the shell cannot run with.
// A missing bridge token is replaced by a random one.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		c.BackendURL = backend.DefaultURL
	}
	if err := backend.ValidateURL(c.BackendURL); err != nil {
		return fmt.Errorf("%w %q: %w", ErrBackendURL, c.BackendURL, err)
	}

	switch {
	case c.BackendTimeout == 0:
		c.BackendTimeout = backend.DefaultTimeout
	case c.BackendTimeout < 0:
		return fmt.Errorf("%w: %s", ErrBackendTimeout, c.BackendTimeout)
	}

	switch {
	case c.StartupDelay == 0:
		c.StartupDelay = DefaultStartupDelay
	case c.StartupDelay < 0:
		return fmt.Errorf("%w: %s", ErrStartupDelay, c.StartupDelay)
	}

	if c.StartHint == "" {
		c.StartHint = DefaultStartHint
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = bridge.DefaultAddr
	}
	if _, err := utils.AddrToURL(c.HTTPAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrHTTPAddr, err)
	}

	if c.HTTPToken == "" {
		c.HTTPToken = utils.TokenHex(16)
	}

	switch {
	case c.RateLimit == 0:
		c.RateLimit = bridge.DefaultRateLimit
	case c.RateLimit < 0:
		return fmt.Errorf("%w: %d", ErrRateLimit, c.RateLimit)
	}

	if c.Path != "" {
		path, err := utils.ResolvePath(c.Path)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		c.Path = path
	}

	return nil
}
