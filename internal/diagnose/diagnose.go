// Package diagnose implements the connectivity diagnostics behind the
// `ragstack debug` command: each configured endpoint is probed with its own
// small retry loop and the outcomes are collected into a report.
package diagnose

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragstack/internal/config"
)

const (
	// DefaultMaxRetries is the diagnostic retry budget. Diagnostics favor a
	// fast answer over the orchestrator's generous startup budget.
	DefaultMaxRetries = 5
	// DefaultDelay is the pause between diagnostic attempts.
	DefaultDelay = 2 * time.Second
	// DefaultTimeout bounds a single diagnostic request.
	DefaultTimeout = 10 * time.Second
)

// Target is one endpoint to diagnose.
type Target struct {
	Name       string
	URL        string
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
}

// Result is the outcome of diagnosing one target.
type Result struct {
	Target   Target
	OK       bool
	Attempts int
	Status   int // last HTTP status, 0 if never connected
	LastErr  error
}

// Report collects the results of a diagnostic run.
type Report struct {
	Results []Result
}

// AllOK reports whether every target was reachable.
func (r Report) AllOK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// TargetsFromConfig derives one diagnostic target per enabled service with
// an HTTP readiness endpoint.
func TargetsFromConfig(cfg config.StackConfig) []Target {
	var targets []Target
	for _, svc := range cfg.EnabledServices() {
		readiness := config.ApplyProbeDefaults(svc.Readiness)
		if readiness.Type != config.ProbeTypeHTTP || readiness.URL == "" {
			continue
		}
		targets = append(targets, Target{
			Name:       svc.Name,
			URL:        readiness.URL,
			MaxRetries: DefaultMaxRetries,
			Delay:      DefaultDelay,
			Timeout:    readiness.Timeout,
		})
	}
	return targets
}

// Run diagnoses every target in order, writing progress and a summary to
// out. Unlike the orchestrator, a failed target does not abort the run:
// the point is a complete picture of what is and is not reachable.
func Run(ctx context.Context, targets []Target, out io.Writer) Report {
	report := Report{Results: make([]Result, 0, len(targets))}

	for _, target := range targets {
		fmt.Fprintf(out, "Testing connection to %s: %s\n", target.Name, target.URL)
		report.Results = append(report.Results, checkTarget(ctx, target, out))
	}

	fmt.Fprintln(out, "\nSummary:")
	for _, res := range report.Results {
		status := "OK"
		if !res.OK {
			status = "FAILED"
		}
		fmt.Fprintf(out, "  %-12s %s (%d attempt(s))\n", res.Target.Name+":", status, res.Attempts)
	}

	return report
}

func checkTarget(ctx context.Context, target Target, out io.Writer) Result {
	result := Result{Target: target}

	delay := target.Delay
	retries := target.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	for attempt := 1; attempt <= retries; attempt++ {
		result.Attempts = attempt

		status, err := get(ctx, client, target.URL)
		if err != nil {
			result.LastErr = err
			fmt.Fprintf(out, "  attempt %d/%d: %v\n", attempt, retries, err)
		} else {
			result.Status = status
			fmt.Fprintf(out, "  attempt %d/%d: HTTP %d\n", attempt, retries, status)
			if status == http.StatusOK {
				result.OK = true
				return result
			}
			result.LastErr = fmt.Errorf("HTTP %d", status)
		}

		if attempt < retries {
			select {
			case <-ctx.Done():
				result.LastErr = ctx.Err()
				return result
			case <-time.After(delay):
			}
		}
	}

	return result
}

func get(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
