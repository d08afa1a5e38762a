package backend

import (
	"strings"
	"time"
)

// Status is the two-valued outcome the GUI sees.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Reason refines a Status. It never changes the healthy/unhealthy answer.
type Reason string

const (
	ReasonOK         Reason = "ok"
	ReasonBadStatus  Reason = "bad_status"
	ReasonConnect    Reason = "connect_error"
	ReasonTimeout    Reason = "timeout"
	ReasonCanceled   Reason = "canceled"
	ReasonClientInit Reason = "client_init_error"
)

// Result describes a single probe. Nothing is kept between probes.
type Result struct {
	Status     Status    `json:"status"`
	Reason     Reason    `json:"reason"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	CheckedAt  time.Time `json:"checked_at"`
	Error      string    `json:"error,omitempty"`
	Report     *Report   `json:"report,omitempty"`

	err error
}

func (r Result) Healthy() bool {
	return r.Status == StatusHealthy
}

// Err is the underlying error for unhealthy results, nil otherwise.
func (r Result) Err() error {
	return r.err
}

func (r Result) Latency() time.Duration {
	return time.Duration(r.LatencyMs) * time.Millisecond
}

// Report is the backend's own view of its components, decoded from the health
// response body when it is JSON. Example body:
//
//	{"status":"healthy","platform":"local","static_scanner":"available","dynamic_scanner":"unavailable"}
type Report struct {
	Status     string            `json:"status"`
	Platform   string            `json:"platform,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// Available reports whether the named component was listed as available.
func (r *Report) Available(component string) bool {
	if r == nil {
		return false
	}
	return r.Components[component] == "available"
}

func decodeReport(body []byte) *Report {
	if len(body) == 0 {
		return nil
	}

	var raw map[string]any
	if err := jsonUnmarshal(body, &raw); err != nil {
		return nil
	}

	report := &Report{Components: map[string]string{}}
	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch key {
		case "status":
			report.Status = s
		case "platform":
			report.Platform = s
		default:
			switch strings.ToLower(s) {
			case "available", "unavailable":
				report.Components[key] = strings.ToLower(s)
			}
		}
	}

	if len(report.Components) == 0 {
		report.Components = nil
	}
	return report
}
