package backend

import "errors"

var (
	// ErrClientInit is the only error CheckHealth ever returns. Backend
	// unavailability is reported as an unhealthy result instead.
	ErrClientInit = errors.New("backend: http client init")

	errNoURL      = errors.New("url is empty")
	errBadScheme  = errors.New("url scheme must be http or https")
	errNoHost     = errors.New("url has no host")
	errBadTimeout = errors.New("timeout must not be negative")
)
