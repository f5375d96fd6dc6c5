package check

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Factory is a function that creates a Rule from a raw configuration map.
// Each rule type registers a Factory with the Registry.
type Factory func(config map[string]any) (Rule, error)

// Registry holds registered rule types and their factories.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a rule type factory under the given name.
// Returns an error if the name is already registered.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("rule type %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates a Rule of the given type using the provided config.
// Returns an error if the type is not registered or the factory fails.
func (r *Registry) Create(name string, config map[string]any) (Rule, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown rule type %q (registered: %v)", name, r.Types())
	}
	return factory(config)
}

// Types returns the names of all registered rule types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}
