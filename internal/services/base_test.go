package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseServiceInitialState(t *testing.T) {
	b := NewBaseService("api", TypeContainer)

	assert.Equal(t, "api", b.GetLabel())
	assert.Equal(t, TypeContainer, b.GetType())
	assert.Equal(t, StateUnknown, b.GetState())
	assert.Equal(t, HealthUnknown, b.GetHealth())
	assert.NoError(t, b.GetLastError())
}

func TestBaseServiceUpdateState(t *testing.T) {
	b := NewBaseService("api", TypeContainer)

	startErr := errors.New("boom")
	b.UpdateState(StateFailed, HealthUnhealthy, startErr)

	assert.Equal(t, StateFailed, b.GetState())
	assert.Equal(t, HealthUnhealthy, b.GetHealth())
	assert.Equal(t, startErr, b.GetLastError())
}

func TestBaseServiceStateChangeCallback(t *testing.T) {
	b := NewBaseService("api", TypeContainer)

	type transition struct {
		oldState, newState ServiceState
	}
	var seen []transition
	b.SetStateChangeCallback(func(label string, oldState, newState ServiceState, health HealthStatus, err error) {
		assert.Equal(t, "api", label)
		seen = append(seen, transition{oldState, newState})
	})

	b.UpdateState(StateStarting, HealthUnknown, nil)
	b.UpdateState(StateRunning, HealthHealthy, nil)
	// Same state again: no transition, no callback.
	b.UpdateState(StateRunning, HealthHealthy, nil)

	require.Len(t, seen, 2)
	assert.Equal(t, transition{StateUnknown, StateStarting}, seen[0])
	assert.Equal(t, transition{StateStarting, StateRunning}, seen[1])
}

func TestBaseServiceUpdateHealth(t *testing.T) {
	b := NewBaseService("api", TypeContainer)

	callbackFired := false
	b.SetStateChangeCallback(func(string, ServiceState, ServiceState, HealthStatus, error) {
		callbackFired = true
	})

	b.UpdateHealth(HealthUnhealthy)

	assert.Equal(t, HealthUnhealthy, b.GetHealth())
	assert.Equal(t, StateUnknown, b.GetState(), "health observations do not change lifecycle state")
	assert.False(t, callbackFired)
}
