package config

import (
	"time"
)

// StackConfig is the top-level configuration structure for ragstack.
type StackConfig struct {
	GlobalSettings GlobalSettings      `yaml:"globalSettings"`
	Services       []ServiceDefinition `yaml:"services"`
}

// GlobalSettings holds settings that apply across the whole stack.
type GlobalSettings struct {
	LogLevel                string `yaml:"logLevel,omitempty"`                // "debug", "info", "warn", "error"
	DefaultContainerRuntime string `yaml:"defaultContainerRuntime,omitempty"` // e.g., "docker"
}

// ServiceKind defines how a service is launched.
type ServiceKind string

const (
	// ServiceKindContainer launches the service as a Docker container.
	ServiceKindContainer ServiceKind = "container"
	// ServiceKindLocalCommand launches the service as a local process.
	ServiceKindLocalCommand ServiceKind = "localCommand"
)

// ProbeType defines how readiness is checked.
type ProbeType string

const (
	ProbeTypeHTTP ProbeType = "http"
	ProbeTypeTCP  ProbeType = "tcp"
)

const (
	// DefaultMaxAttempts is the probe attempt budget applied when a service
	// definition does not set its own.
	DefaultMaxAttempts = 30
	// DefaultRetryDelay is the pause between probe attempts.
	DefaultRetryDelay = 2 * time.Second
	// DefaultProbeTimeout bounds a single probe request.
	DefaultProbeTimeout = 10 * time.Second
)

// ProbeDefinition describes the readiness probe for a service.
type ProbeDefinition struct {
	Type        ProbeType     `yaml:"type,omitempty"`        // "http" (default) or "tcp"
	URL         string        `yaml:"url,omitempty"`         // for http probes, e.g. "http://localhost:8080/v1/.well-known/ready"
	Address     string        `yaml:"address,omitempty"`     // for tcp probes, e.g. "localhost:8080"
	MaxAttempts int           `yaml:"maxAttempts,omitempty"` // attempt budget (default 30)
	RetryDelay  time.Duration `yaml:"retryDelay,omitempty"`  // delay between attempts (default 2s)
	Timeout     time.Duration `yaml:"timeout,omitempty"`     // per-request timeout (default 10s)
}

// ServiceDefinition defines how to launch and probe a single stack service.
// The position of a definition in the services list is its start order:
// a service is only started once every service before it has reported ready.
type ServiceDefinition struct {
	Name    string      `yaml:"name"`              // Unique name, e.g. "weaviate"
	Kind    ServiceKind `yaml:"type"`              // "container" or "localCommand"
	Enabled bool        `yaml:"enabled,omitempty"` // Disabled services are skipped entirely

	// Fields for Kind = "container"
	Image            string            `yaml:"image,omitempty"`            // Container image, e.g. "semitechnologies/weaviate:1.24.4"
	ContainerPorts   []string          `yaml:"containerPorts,omitempty"`   // Port mappings, e.g. ["8080:8080"] (host:container)
	ContainerEnv     map[string]string `yaml:"containerEnv,omitempty"`     // Environment variables for the container; values support ${VAR} expansion
	ContainerVolumes []string          `yaml:"containerVolumes,omitempty"` // Volume mounts, e.g. ["./data:/var/lib/weaviate"]
	Entrypoint       []string          `yaml:"entrypoint,omitempty"`       // Optional entrypoint override

	// Fields for Kind = "localCommand"
	Command []string          `yaml:"command,omitempty"` // Command and its arguments
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables; values support ${VAR} expansion

	Readiness ProbeDefinition `yaml:"readiness"`
}

// EnabledServices returns the enabled services in start order.
func (c StackConfig) EnabledServices() []ServiceDefinition {
	out := make([]ServiceDefinition, 0, len(c.Services))
	for _, svc := range c.Services {
		if svc.Enabled {
			out = append(out, svc)
		}
	}
	return out
}

// ApplyProbeDefaults fills in the documented defaults for any probe fields
// the definition leaves unset.
func ApplyProbeDefaults(p ProbeDefinition) ProbeDefinition {
	if p.Type == "" {
		p.Type = ProbeTypeHTTP
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = DefaultRetryDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultProbeTimeout
	}
	return p
}
