package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"ragstack/internal/config"
	"ragstack/internal/services"
	"ragstack/pkg/logging"
)

// ProcessService launches a stack service as a local child process.
// The process inherits the parent environment plus the configured
// variables (with ${VAR} expansion applied).
type ProcessService struct {
	*services.BaseService

	// Immutable configuration
	config config.ServiceDefinition

	mu  sync.Mutex
	cmd *exec.Cmd

	// done is closed by the waiter goroutine when the process exits
	done chan struct{}
}

// NewProcessService creates a process-backed service from its definition.
func NewProcessService(cfg config.ServiceDefinition) *ProcessService {
	return &ProcessService{
		BaseService: services.NewBaseService(cfg.Name, services.TypeLocalCommand),
		config:      cfg,
	}
}

// Start launches the configured command. The launch is fire-and-forget:
// a process that starts and then exits before becoming ready is surfaced
// by the readiness probes, not here.
func (s *ProcessService) Start(ctx context.Context) error {
	if s.GetState() == services.StateRunning {
		return nil
	}
	if len(s.config.Command) == 0 {
		err := fmt.Errorf("service %s: command is empty", s.config.Name)
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return err
	}

	s.UpdateState(services.StateStarting, services.HealthUnknown, nil)

	cmd := exec.Command(s.config.Command[0], s.config.Command[1:]...)
	cmd.Env = os.Environ()
	for k, v := range config.ExpandEnvValues(s.config.Env) {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// New process group so Stop can signal the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("service %s: launch %q: %w", s.config.Name, s.config.Command[0], err)
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		close(done)
		// Only report unexpected exits; Stop transitions the state itself.
		if s.GetState() == services.StateRunning || s.GetState() == services.StateStarting {
			if err == nil {
				err = fmt.Errorf("service %s: process exited", s.config.Name)
			}
			s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		}
	}()

	logging.Info("ProcessService", "Started process for %s (pid %d)", s.config.Name, cmd.Process.Pid)
	s.UpdateState(services.StateRunning, services.HealthUnknown, nil)
	return nil
}

// Stop terminates the process group: SIGTERM first, SIGKILL if it does not
// exit within the grace period.
func (s *ProcessService) Stop(ctx context.Context) error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
		return nil
	}

	s.UpdateState(services.StateStopping, s.GetHealth(), nil)

	// Negative pid signals the whole process group.
	pgid := -cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		logging.Warn("ProcessService", "SIGTERM for %s failed: %v", s.config.Name, err)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logging.Warn("ProcessService", "Process %s did not exit, sending SIGKILL", s.config.Name)
		_ = syscall.Kill(pgid, syscall.SIGKILL)
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	s.cmd = nil
	s.done = nil
	s.mu.Unlock()

	logging.Info("ProcessService", "Stopped process for %s", s.config.Name)
	s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
	return nil
}

// Endpoint implements services.EndpointProvider.
func (s *ProcessService) Endpoint() string {
	if s.config.Readiness.URL != "" {
		return s.config.Readiness.URL
	}
	return s.config.Readiness.Address
}

// PID returns the pid of the running process, or 0.
func (s *ProcessService) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		return s.cmd.Process.Pid
	}
	return 0
}
