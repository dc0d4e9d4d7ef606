package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragstack/internal/config"
	"ragstack/internal/services"
)

func TestStartRejectsEmptyCommand(t *testing.T) {
	svc := NewProcessService(config.ServiceDefinition{
		Name: "ingest",
		Kind: config.ServiceKindLocalCommand,
	})

	err := svc.Start(context.Background())
	assert.ErrorContains(t, err, "command is empty")
	assert.Equal(t, services.StateFailed, svc.GetState())
}

func TestStartRejectsMissingBinary(t *testing.T) {
	svc := NewProcessService(config.ServiceDefinition{
		Name:    "ingest",
		Kind:    config.ServiceKindLocalCommand,
		Command: []string{"ragstack-no-such-binary"},
	})

	err := svc.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, services.StateFailed, svc.GetState())
}

func TestStartStopLifecycle(t *testing.T) {
	svc := NewProcessService(config.ServiceDefinition{
		Name:    "sleeper",
		Kind:    config.ServiceKindLocalCommand,
		Command: []string{"sleep", "60"},
	})

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, services.StateRunning, svc.GetState())
	assert.NotZero(t, svc.PID())

	require.NoError(t, svc.Stop(context.Background()))
	assert.Equal(t, services.StateStopped, svc.GetState())
	assert.Zero(t, svc.PID())
}

func TestUnexpectedExitFlagsFailure(t *testing.T) {
	svc := NewProcessService(config.ServiceDefinition{
		Name:    "flaky",
		Kind:    config.ServiceKindLocalCommand,
		Command: []string{"false"},
	})

	require.NoError(t, svc.Start(context.Background()))

	require.Eventually(t, func() bool {
		return svc.GetState() == services.StateFailed
	}, 5*time.Second, 10*time.Millisecond, "exiting process should transition to failed")
	assert.Error(t, svc.GetLastError())
}

func TestStopWithoutStart(t *testing.T) {
	svc := NewProcessService(config.ServiceDefinition{
		Name:    "never-started",
		Kind:    config.ServiceKindLocalCommand,
		Command: []string{"sleep", "60"},
	})

	require.NoError(t, svc.Stop(context.Background()))
	assert.Equal(t, services.StateStopped, svc.GetState())
}
