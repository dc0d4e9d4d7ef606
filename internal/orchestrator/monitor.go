package orchestrator

import (
	"context"
	"time"

	"ragstack/internal/services"
	"ragstack/pkg/logging"
)

// DefaultMonitorInterval is how often running services are re-probed after
// a successful bring-up.
const DefaultMonitorInterval = 30 * time.Second

// StartHealthMonitoring periodically re-probes every running service and
// records the observation. It blocks until ctx is cancelled; run it in a
// goroutine after a successful Run. Monitoring never restarts anything —
// it only keeps health observations current for the dashboard.
func (o *Orchestrator) StartHealthMonitoring(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.performHealthChecks(ctx)
		}
	}
}

func (o *Orchestrator) performHealthChecks(ctx context.Context) {
	for _, spec := range o.specs {
		svc, ok := o.registry.Get(spec.Name)
		if !ok || svc.GetState() != services.StateRunning {
			continue
		}

		err := spec.Probe.Check(ctx)
		healthy := err == nil

		if base, ok := svc.(interface{ UpdateHealth(services.HealthStatus) }); ok {
			if healthy {
				base.UpdateHealth(services.HealthHealthy)
			} else {
				base.UpdateHealth(services.HealthUnhealthy)
			}
		}
		if !healthy {
			logging.Warn("Orchestrator", "Health check for %s failed: %v", spec.Name, err)
		}

		o.publish(Event{Kind: EventHealth, Service: spec.Name, Healthy: healthy, Err: err})
	}
}
