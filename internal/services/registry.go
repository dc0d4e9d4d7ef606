package services

import (
	"fmt"
	"sync"
)

// registry is the default ServiceRegistry implementation. It preserves
// registration order, which is the externally supplied start order.
type registry struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string
}

// NewRegistry creates an empty service registry.
func NewRegistry() ServiceRegistry {
	return &registry{
		services: make(map[string]Service),
	}
}

func (r *registry) Register(service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := service.GetLabel()
	if label == "" {
		return fmt.Errorf("service label must not be empty")
	}
	if _, exists := r.services[label]; exists {
		return fmt.Errorf("service %s already registered", label)
	}

	r.services[label] = service
	r.order = append(r.order, label)
	return nil
}

func (r *registry) Unregister(label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[label]; !exists {
		return fmt.Errorf("service %s not found", label)
	}

	delete(r.services, label)
	for i, l := range r.order {
		if l == label {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *registry) Get(label string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[label]
	return svc, ok
}

func (r *registry) GetAll() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Service, 0, len(r.order))
	for _, label := range r.order {
		all = append(all, r.services[label])
	}
	return all
}

func (r *registry) GetByType(serviceType ServiceType) []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Service
	for _, label := range r.order {
		if svc := r.services[label]; svc.GetType() == serviceType {
			matched = append(matched, svc)
		}
	}
	return matched
}
