package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the named backend factories for one provider concern
// (diarization, embedding, transcription). The service builds exactly one
// provider per concern from configuration, so the registry tracks factories
// only; built instances live with their owner.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
	}
}

// RegisterFactory registers a named backend factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds a provider using the named factory and config. An unknown
// name reports the registered alternatives, since it usually comes from a
// config typo.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown provider backend %q (registered: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return factory(cfg)
}

// Names returns the sorted names of the registered factories.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
