package services

import (
	"context"
)

// ServiceState represents the current lifecycle state of a service
type ServiceState string

const (
	StateUnknown  ServiceState = "Unknown"
	StateStarting ServiceState = "Starting"
	StateRunning  ServiceState = "Running"
	StateStopping ServiceState = "Stopping"
	StateStopped  ServiceState = "Stopped"
	StateFailed   ServiceState = "Failed"
)

// HealthStatus represents the readiness of a service as last observed
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "Unknown"
	HealthHealthy   HealthStatus = "Healthy"
	HealthUnhealthy HealthStatus = "Unhealthy"
)

// ServiceType represents the kind of start action behind a service
type ServiceType string

const (
	TypeContainer    ServiceType = "Container"
	TypeLocalCommand ServiceType = "LocalCommand"
)

// Service is the core interface that all managed services implement.
// Start is the fire-and-forget launch trigger: it reports errors from
// issuing the launch, but readiness is established separately by the
// orchestrator's probes.
type Service interface {
	// Lifecycle management
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// State management
	GetState() ServiceState
	GetHealth() HealthStatus
	GetLastError() error

	// Service metadata
	GetLabel() string
	GetType() ServiceType

	// State change notifications
	// The service calls this callback whenever its state changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(label string, oldState, newState ServiceState, health HealthStatus, err error)

// EndpointProvider is an optional interface for services that expose a
// user-facing endpoint (used by the TUI's copy-to-clipboard action)
type EndpointProvider interface {
	Endpoint() string
}

// ServiceRegistry manages all registered services
type ServiceRegistry interface {
	// Register adds a service to the registry
	Register(service Service) error

	// Unregister removes a service from the registry
	Unregister(label string) error

	// Get returns a service by label
	Get(label string) (Service, bool)

	// GetAll returns all registered services in registration order
	GetAll() []Service

	// GetByType returns all services of a specific type
	GetByType(serviceType ServiceType) []Service
}
