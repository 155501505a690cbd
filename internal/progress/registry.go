package progress

import "sync"

// Registry hands out one Service per namespace over a shared store, so
// every host serving the same player works on the same record.
type Registry struct {
	mu       sync.Mutex
	kv       KV
	services map[string]*Service
}

// NewRegistry creates a registry backed by kv.
func NewRegistry(kv KV) *Registry {
	return &Registry{
		kv:       kv,
		services: make(map[string]*Service),
	}
}

// Service returns the service for namespace, loading it on first use.
func (r *Registry) Service(namespace string) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[namespace]; ok {
		return svc, nil
	}
	svc, err := NewService(r.kv, namespace)
	if err != nil {
		return nil, err
	}
	r.services[namespace] = svc
	return svc, nil
}

// Count returns the number of loaded namespaces.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.services)
}
