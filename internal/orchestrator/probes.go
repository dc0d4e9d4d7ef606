package orchestrator

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ragstack/internal/config"
)

// Probe performs a single readiness check. A nil return means ready.
// Transport errors and not-ready responses are deliberately collapsed:
// either way the attempt failed and the caller retries.
type Probe interface {
	Check(ctx context.Context) error
}

// HTTPProbe checks readiness with an HTTP GET. Any response the transport
// delivers with a status below 500 counts as ready; the body is ignored.
type HTTPProbe struct {
	URL    string
	Client *http.Client
}

// NewHTTPProbe creates an HTTP probe with the given per-request timeout.
func NewHTTPProbe(url string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", p.URL, err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", p.URL, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s returned HTTP %d", p.URL, resp.StatusCode)
	}
	return nil
}

// TCPProbe checks readiness by dialing the address. A successful connect
// counts as ready.
type TCPProbe struct {
	Address string
	Timeout time.Duration
}

// NewTCPProbe creates a TCP probe with the given dial timeout.
func NewTCPProbe(address string, timeout time.Duration) *TCPProbe {
	return &TCPProbe{Address: address, Timeout: timeout}
}

func (p *TCPProbe) Check(ctx context.Context) error {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.Address, err)
	}
	conn.Close()
	return nil
}

// ProbeForDefinition builds the Probe for a service's readiness definition.
func ProbeForDefinition(def config.ProbeDefinition) (Probe, error) {
	def = config.ApplyProbeDefaults(def)

	switch def.Type {
	case config.ProbeTypeHTTP:
		if def.URL == "" {
			return nil, fmt.Errorf("http probe requires a url")
		}
		return NewHTTPProbe(def.URL, def.Timeout), nil
	case config.ProbeTypeTCP:
		if def.Address == "" {
			return nil, fmt.Errorf("tcp probe requires an address")
		}
		return NewTCPProbe(def.Address, def.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown probe type %q", def.Type)
	}
}
