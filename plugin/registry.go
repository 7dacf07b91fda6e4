package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Resolver looks a plugin name up in the surrounding ecosystem and
// returns either a ready plugin value or a constructor. It decouples
// normalization from how names are resolved.
type Resolver interface {
	Resolve(name string) (any, error)
}

// Constructor builds a plugin value from an option payload. Registered
// values of this type (or the equivalent bare func) are invoked when a
// spec carries options.
type Constructor func(opts Options) (any, error)

// Registry is the in-process Resolver: a name→value table populated by
// the embedding application.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Register associates a name with a plugin value or Constructor.
// Registering the same name again replaces the previous value.
func (r *Registry) Register(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Resolve implements Resolver.
func (r *Registry) Resolve(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("plugin %q is not registered", name)
	}
	return v, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
