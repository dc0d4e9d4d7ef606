package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ragstack/internal/config"
	"ragstack/internal/services"
	"ragstack/internal/services/container"
	"ragstack/internal/services/process"
	"ragstack/pkg/logging"
)

// ServiceSpec is one entry of an orchestration run: a named start action
// paired with a readiness probe and its retry budget. Specs are immutable
// once built; their position in the slice is the start order.
type ServiceSpec struct {
	Name        string
	Start       func(ctx context.Context) error
	Probe       Probe
	MaxAttempts int
	RetryDelay  time.Duration
}

// RunResult is the terminal outcome of an orchestration run: either every
// service confirmed ready, or the name of the first service that exhausted
// its attempt budget.
type RunResult struct {
	AllReady      bool
	FailedService string
	AttemptsMade  int
}

// Err returns nil for an AllReady result, or the readiness timeout that
// aborted the run.
func (r RunResult) Err() error {
	if r.AllReady {
		return nil
	}
	return &ReadinessTimeoutError{Service: r.FailedService, Attempts: r.AttemptsMade}
}

// ReadinessTimeoutError is the single failure kind an orchestration run can
// produce: a service never reported ready within its attempt budget.
type ReadinessTimeoutError struct {
	Service  string
	Attempts int
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("service %q not ready after %d attempts", e.Service, e.Attempts)
}

// EventKind classifies orchestration events published to subscribers.
type EventKind string

const (
	EventStarting EventKind = "starting" // start action invoked
	EventProbing  EventKind = "probing"  // one probe attempt made
	EventReady    EventKind = "ready"    // probe succeeded
	EventFailed   EventKind = "failed"   // attempt budget exhausted
	EventStopped  EventKind = "stopped"  // service stopped by Down
	EventHealth   EventKind = "health"   // post-up periodic health observation
)

// Event is a progress notification for one service, consumed by the TUI
// and the plain-mode progress printer.
type Event struct {
	Kind        EventKind
	Service     string
	Attempt     int
	MaxAttempts int
	Healthy     bool
	Err         error
}

// Orchestrator brings up an ordered set of services, gating each start on
// the readiness of everything before it. It is the single thread of
// control: services start strictly sequentially, and the first service
// that exhausts its probe budget aborts the run.
type Orchestrator struct {
	registry services.ServiceRegistry
	specs    []ServiceSpec

	mu          sync.RWMutex
	subscribers []chan<- Event
}

// New builds an orchestrator from the enabled services of a stack
// configuration, preserving list order as start order.
func New(cfg config.StackConfig) (*Orchestrator, error) {
	o := &Orchestrator{registry: services.NewRegistry()}

	for _, def := range cfg.EnabledServices() {
		svc, err := newService(def)
		if err != nil {
			return nil, err
		}
		if err := o.registry.Register(svc); err != nil {
			return nil, err
		}

		probe, err := ProbeForDefinition(def.Readiness)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", def.Name, err)
		}

		readiness := config.ApplyProbeDefaults(def.Readiness)
		o.specs = append(o.specs, ServiceSpec{
			Name:        def.Name,
			Start:       svc.Start,
			Probe:       probe,
			MaxAttempts: readiness.MaxAttempts,
			RetryDelay:  readiness.RetryDelay,
		})
	}

	if len(o.specs) == 0 {
		return nil, fmt.Errorf("no enabled services in configuration")
	}
	return o, nil
}

// newService maps a service definition to its start-action implementation.
func newService(def config.ServiceDefinition) (services.Service, error) {
	switch def.Kind {
	case config.ServiceKindContainer:
		return container.NewContainerService(def), nil
	case config.ServiceKindLocalCommand:
		return process.NewProcessService(def), nil
	default:
		return nil, fmt.Errorf("service %s: unsupported type %q", def.Name, def.Kind)
	}
}

// Run executes the orchestration: for each spec in order, invoke the start
// action, then poll the readiness probe up to MaxAttempts times with
// RetryDelay between attempts. The run aborts on the first service that
// never reports ready; services already started are left running.
func (o *Orchestrator) Run(ctx context.Context) RunResult {
	for _, spec := range o.specs {
		logging.Info("Orchestrator", "Starting service: %s", spec.Name)
		o.publish(Event{Kind: EventStarting, Service: spec.Name, MaxAttempts: spec.MaxAttempts})

		// The start action is fire-and-forget: a failed launch surfaces as
		// a probe that never succeeds, so the error is logged, not returned.
		if err := spec.Start(ctx); err != nil {
			logging.Warn("Orchestrator", "Start action for %s reported: %v", spec.Name, err)
		}

		attempts, ready := o.awaitReady(ctx, spec)
		if !ready {
			logging.Error("Orchestrator", nil, "Service %s not ready after %d attempts", spec.Name, attempts)
			o.publish(Event{Kind: EventFailed, Service: spec.Name, Attempt: attempts, MaxAttempts: spec.MaxAttempts})
			return RunResult{FailedService: spec.Name, AttemptsMade: attempts}
		}

		logging.Info("Orchestrator", "Service %s ready after %d attempt(s)", spec.Name, attempts)
		o.publish(Event{Kind: EventReady, Service: spec.Name, Attempt: attempts, MaxAttempts: spec.MaxAttempts})
	}

	return RunResult{AllReady: true}
}

// awaitReady polls the spec's probe until it succeeds or the attempt budget
// is exhausted. There is no delay after the final attempt. Probe errors and
// not-ready responses both consume one attempt.
func (o *Orchestrator) awaitReady(ctx context.Context, spec ServiceSpec) (attempts int, ready bool) {
	for attempts = 1; attempts <= spec.MaxAttempts; attempts++ {
		err := spec.Probe.Check(ctx)
		o.publish(Event{Kind: EventProbing, Service: spec.Name, Attempt: attempts, MaxAttempts: spec.MaxAttempts, Err: err})
		if err == nil {
			return attempts, true
		}
		logging.Debug("Orchestrator", "Probe %d/%d for %s: %v", attempts, spec.MaxAttempts, spec.Name, err)

		if attempts == spec.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return attempts, false
		case <-time.After(spec.RetryDelay):
		}
	}
	return spec.MaxAttempts, false
}

// StopAll stops every service in reverse start order, so dependents go
// down before the services they rely on. Errors are collected, not fatal:
// one stubborn service should not leave the rest of the stack running.
func (o *Orchestrator) StopAll(ctx context.Context) error {
	all := o.registry.GetAll()

	var firstErr error
	for i := len(all) - 1; i >= 0; i-- {
		svc := all[i]
		logging.Info("Orchestrator", "Stopping service: %s", svc.GetLabel())
		if err := svc.Stop(ctx); err != nil {
			logging.Error("Orchestrator", err, "Failed to stop %s", svc.GetLabel())
			if firstErr == nil {
				firstErr = fmt.Errorf("stop %s: %w", svc.GetLabel(), err)
			}
			continue
		}
		o.publish(Event{Kind: EventStopped, Service: svc.GetLabel()})
	}
	return firstErr
}

// Registry exposes the service registry for status queries.
func (o *Orchestrator) Registry() services.ServiceRegistry {
	return o.registry
}

// Specs returns the ordered service specs of this run.
func (o *Orchestrator) Specs() []ServiceSpec {
	return o.specs
}

// Subscribe returns a channel receiving orchestration events. Slow
// subscribers lose events rather than blocking the run.
func (o *Orchestrator) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	o.mu.Lock()
	o.subscribers = append(o.subscribers, ch)
	o.mu.Unlock()
	return ch
}

func (o *Orchestrator) publish(event Event) {
	o.mu.RLock()
	subs := make([]chan<- Event, len(o.subscribers))
	copy(subs, o.subscribers)
	o.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			logging.Warn("Orchestrator", "Dropped event for %s (subscriber channel full)", event.Service)
		}
	}
}
