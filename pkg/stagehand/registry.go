package stagehand

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fresh, unbound view instance.
type Factory func() View

// Registration is a resolved registry entry.
type Registration struct {
	Key          string
	TemplatePath string
	Factory      Factory
}

type registryEntry struct {
	path    string
	parent  string
	factory Factory
}

// Registry maps view keys to factories and template paths. A key registered
// with Extend inherits the template path of its nearest ancestor that
// declares one.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a view with its own template path. Registering a key twice
// replaces the earlier entry.
func (r *Registry) Register(key, templatePath string, factory Factory) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = registryEntry{path: templatePath, factory: factory}
	return r
}

// Extend adds a view that shares parentKey's template path unless a later
// Register call gives it one. The parent does not have to exist yet.
func (r *Registry) Extend(key, parentKey string, factory Factory) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = registryEntry{parent: parentKey, factory: factory}
	return r
}

// Resolve returns the factory and template path for key.
func (r *Registry) Resolve(key string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %q", ErrUnknownView, key)
	}
	if entry.factory == nil {
		return Registration{}, fmt.Errorf("stagehand: view %q has no factory", key)
	}

	chain := []string{key}
	visited := map[string]bool{key: true}
	cur := entry
	for cur.path == "" {
		if cur.parent == "" || visited[cur.parent] {
			return Registration{}, &TemplatePathError{Key: key, Chain: chain}
		}
		visited[cur.parent] = true
		chain = append(chain, cur.parent)

		next, ok := r.entries[cur.parent]
		if !ok {
			return Registration{}, &TemplatePathError{Key: key, Chain: chain}
		}
		cur = next
	}

	return Registration{Key: key, TemplatePath: cur.path, Factory: entry.factory}, nil
}

// Keys returns every registered key in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate resolves every key and returns the first failure. Run it at
// startup to fail fast on broken registrations.
func (r *Registry) Validate() error {
	for _, key := range r.Keys() {
		if _, err := r.Resolve(key); err != nil {
			return err
		}
	}
	return nil
}
