package container

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/go-connections/nat"

	"ragstack/internal/config"
	"ragstack/internal/dockerutil"
	"ragstack/internal/services"
	"ragstack/pkg/logging"
)

// ContainerName returns the Docker container name for a stack service.
func ContainerName(serviceName string) string {
	return "ragstack-" + serviceName
}

// ContainerService launches a stack service as a Docker container.
// Start only issues the launch; readiness is established by the
// orchestrator's probes afterwards.
type ContainerService struct {
	*services.BaseService

	// Immutable configuration
	config config.ServiceDefinition

	mu          sync.Mutex
	containerID string
}

// NewContainerService creates a container-backed service from its definition.
func NewContainerService(cfg config.ServiceDefinition) *ContainerService {
	return &ContainerService{
		BaseService: services.NewBaseService(cfg.Name, services.TypeContainer),
		config:      cfg,
	}
}

// Start creates and starts the service's container. If a container with the
// expected name already exists it is reused: started if stopped, adopted if
// already running. Reuse keeps `up` idempotent across partial failures,
// since an aborted run leaves earlier services running.
func (s *ContainerService) Start(ctx context.Context) error {
	if s.GetState() == services.StateRunning {
		return nil
	}

	s.UpdateState(services.StateStarting, services.HealthUnknown, nil)

	cli, err := dockerutil.Client()
	if err != nil {
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return fmt.Errorf("docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		err = fmt.Errorf("cannot connect to Docker daemon (is Docker running?): %w", err)
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return err
	}

	name := ContainerName(s.config.Name)

	// Reuse an existing container if one is present.
	if inspect, err := cli.ContainerInspect(ctx, name); err == nil {
		s.mu.Lock()
		s.containerID = inspect.ID
		s.mu.Unlock()

		if inspect.State != nil && inspect.State.Running {
			logging.Debug("ContainerService", "Container %s already running, adopting", name)
			s.UpdateState(services.StateRunning, services.HealthUnknown, nil)
			return nil
		}

		logging.Debug("ContainerService", "Starting existing container %s", name)
		if err := cli.ContainerStart(ctx, inspect.ID, container.StartOptions{}); err != nil {
			err = fmt.Errorf("start container %s: %w", name, err)
			s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
			return err
		}
		s.UpdateState(services.StateRunning, services.HealthUnknown, nil)
		return nil
	}

	containerID, err := s.createContainer(ctx, cli, name)
	if err != nil {
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return err
	}

	s.mu.Lock()
	s.containerID = containerID
	s.mu.Unlock()

	if err := cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		err = fmt.Errorf("start container %s: %w", name, err)
		s.UpdateState(services.StateFailed, services.HealthUnhealthy, err)
		return err
	}

	logging.Info("ContainerService", "Started container %s (%s)", name, shortID(containerID))
	s.UpdateState(services.StateRunning, services.HealthUnknown, nil)
	return nil
}

// createContainer creates the container, pulling the image on demand.
func (s *ContainerService) createContainer(ctx context.Context, cli *client.Client, name string) (string, error) {
	exposedPorts, portBindings, err := nat.ParsePortSpecs(s.config.ContainerPorts)
	if err != nil {
		return "", fmt.Errorf("invalid port mapping for %s: %w", s.config.Name, err)
	}

	cfg := &container.Config{
		Image:        s.config.Image,
		Env:          envMapToSlice(config.ExpandEnvValues(s.config.ContainerEnv)),
		ExposedPorts: exposedPorts,
	}
	if len(s.config.Entrypoint) > 0 {
		cfg.Entrypoint = s.config.Entrypoint
	}

	hostCfg := &container.HostConfig{
		PortBindings: portBindings,
		Binds:        s.config.ContainerVolumes,
	}
	// On Linux, ensure host.docker.internal resolves to the host so
	// containers can reach services published on host ports.
	if runtime.GOOS == "linux" {
		hostCfg.ExtraHosts = []string{"host.docker.internal:host-gateway"}
	}

	resp, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err == nil {
		return resp.ID, nil
	}
	if !errdefs.IsNotFound(err) {
		return "", fmt.Errorf("create container %s: %w", name, err)
	}

	// Image missing locally: pull and retry once.
	logging.Info("ContainerService", "Pulling image %s", s.config.Image)
	reader, err := cli.ImagePull(ctx, s.config.Image, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("pull image %s: %w", s.config.Image, err)
	}
	_, _ = io.Copy(io.Discard, reader)
	reader.Close()

	resp, err = cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", name, err)
	}
	return resp.ID, nil
}

// Stop stops and removes the service's container.
func (s *ContainerService) Stop(ctx context.Context) error {
	s.UpdateState(services.StateStopping, s.GetHealth(), nil)

	cli, err := dockerutil.Client()
	if err != nil {
		s.UpdateState(services.StateFailed, services.HealthUnknown, err)
		return fmt.Errorf("docker client: %w", err)
	}

	name := ContainerName(s.config.Name)
	stopTimeout := 10 // seconds
	if err := cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &stopTimeout}); err != nil {
		if errdefs.IsNotFound(err) {
			s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
			return nil
		}
		s.UpdateState(services.StateFailed, services.HealthUnknown, err)
		return fmt.Errorf("stop container %s: %w", name, err)
	}
	if err := cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		logging.Warn("ContainerService", "Failed to remove container %s: %v", name, err)
	}

	s.mu.Lock()
	s.containerID = ""
	s.mu.Unlock()

	logging.Info("ContainerService", "Stopped container %s", name)
	s.UpdateState(services.StateStopped, services.HealthUnknown, nil)
	return nil
}

// Endpoint implements services.EndpointProvider.
func (s *ContainerService) Endpoint() string {
	if s.config.Readiness.URL != "" {
		return s.config.Readiness.URL
	}
	return s.config.Readiness.Address
}

// ContainerID returns the short ID of the managed container, if any.
func (s *ContainerService) ContainerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return shortID(s.containerID)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func envMapToSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
