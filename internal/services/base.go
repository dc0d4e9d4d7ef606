package services

import (
	"sync"
)

// BaseService provides the shared state machine plumbing for concrete
// service implementations: guarded state/health fields and state change
// notification. Concrete services embed it and call UpdateState.
type BaseService struct {
	mu sync.RWMutex

	label       string
	serviceType ServiceType

	state     ServiceState
	health    HealthStatus
	lastError error

	stateCallback StateChangeCallback
}

// NewBaseService creates the embedded base for a concrete service.
func NewBaseService(label string, serviceType ServiceType) *BaseService {
	return &BaseService{
		label:       label,
		serviceType: serviceType,
		state:       StateUnknown,
		health:      HealthUnknown,
	}
}

// GetLabel returns the unique service label.
func (b *BaseService) GetLabel() string {
	return b.label
}

// GetType returns the service type.
func (b *BaseService) GetType() ServiceType {
	return b.serviceType
}

// GetState returns the current lifecycle state.
func (b *BaseService) GetState() ServiceState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// GetHealth returns the last observed health status.
func (b *BaseService) GetHealth() HealthStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.health
}

// GetLastError returns the most recent error recorded by UpdateState.
func (b *BaseService) GetLastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// SetStateChangeCallback registers the callback invoked on state changes.
func (b *BaseService) SetStateChangeCallback(callback StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateCallback = callback
}

// UpdateState transitions the service to a new state and notifies the
// registered callback. The callback runs outside the lock so it may call
// back into the service.
func (b *BaseService) UpdateState(state ServiceState, health HealthStatus, err error) {
	b.mu.Lock()
	oldState := b.state
	b.state = state
	b.health = health
	b.lastError = err
	callback := b.stateCallback
	b.mu.Unlock()

	if callback != nil && oldState != state {
		callback(b.label, oldState, state, health, err)
	}
}

// UpdateHealth records a new health observation without a state transition.
func (b *BaseService) UpdateHealth(health HealthStatus) {
	b.mu.Lock()
	b.health = health
	b.mu.Unlock()
}
