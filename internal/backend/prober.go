package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/imroc/req/v3"
	"github.com/verimodel/desktop/internal/version"
)

const (
	DefaultURL     = "http://localhost:8000/api/v1/health"
	DefaultTimeout = 2 * time.Second
)

// Config points the prober at the backend health endpoint.
type Config struct {
	URL     string        // full health URL, DefaultURL when empty
	Timeout time.Duration // whole-request budget, DefaultTimeout when zero
}

// Prober checks backend liveness with a single GET per call. It holds no
// connection state: every call builds its own client, so concurrent calls
// are independent.
type Prober struct {
	url     string
	timeout time.Duration
}

func NewProber(cfg Config) *Prober {
	p := &Prober{url: cfg.URL, timeout: cfg.Timeout}
	if p.url == "" {
		p.url = DefaultURL
	}
	if p.timeout == 0 {
		p.timeout = DefaultTimeout
	}
	return p
}

func (p *Prober) URL() string {
	return p.url
}

func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// CheckHealth is the bridge-facing form of Check. Network failures and non-2xx
// responses are folded into false; the error is non-nil only when the HTTP
// client could not be built.
func (p *Prober) CheckHealth(ctx context.Context) (bool, error) {
	res := p.Check(ctx)
	if res.Reason == ReasonClientInit {
		return false, res.Err()
	}
	return res.Healthy(), nil
}

// Check issues one GET against the health URL and classifies the outcome.
// It never retries.
func (p *Prober) Check(ctx context.Context) Result {
	start := time.Now()
	res := Result{
		Status:    StatusUnhealthy,
		URL:       p.url,
		CheckedAt: start.UTC(),
	}

	client, err := p.newClient()
	if err != nil {
		return res.fail(ReasonClientInit, err)
	}
	// the client lives for this call only; drop its pooled connection
	defer client.GetTransport().CloseIdleConnections()

	resp, err := client.R().
		SetContext(ctx).
		Get(p.url)
	res.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		slog.Debug("backend probe failed", "url", p.url, "error", err)
		return res.fail(classifyError(err), err)
	}

	res.StatusCode = resp.GetStatusCode()
	if !resp.IsSuccessState() {
		return res.fail(ReasonBadStatus, fmt.Errorf("backend returned %s", resp.Status))
	}

	res.Status = StatusHealthy
	res.Reason = ReasonOK
	res.Report = decodeReport(resp.Bytes())
	return res
}

func (p *Prober) newClient() (*req.Client, error) {
	if err := ValidateURL(p.url); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrClientInit, p.url, err)
	}
	if p.timeout < 0 {
		return nil, fmt.Errorf("%w: %w", ErrClientInit, errBadTimeout)
	}

	return req.C().
		SetTimeout(p.timeout).
		SetUserAgent(version.UserAgent()), nil
}

func (r Result) fail(reason Reason, err error) Result {
	r.Status = StatusUnhealthy
	r.Reason = reason
	r.err = err
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func classifyError(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonConnect
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return errNoURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errBadScheme
	}
	if u.Host == "" {
		return errNoHost
	}
	return nil
}

// Origin trims the path from a health URL, e.g. http://localhost:8000.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// MarshalIndent renders a result for terminal output.
func MarshalIndent(res Result) ([]byte, error) {
	return jsonMarshalIndent(res)
}
