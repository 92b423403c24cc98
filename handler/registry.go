package handler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/radadapter/observability"
)

// Spec describes one pipeline step in configuration. Which fields apply
// depends on Kind.
type Spec struct {
	Name      string          `json:"name" yaml:"name"`
	Kind      string          `json:"kind" yaml:"kind"`
	Result    string          `json:"result,omitempty" yaml:"result,omitempty"`
	Missing   string          `json:"missing,omitempty" yaml:"missing,omitempty"`
	Attribute uint32          `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Reply     []AttributeSpec `json:"reply,omitempty" yaml:"reply,omitempty"`
}

// AttributeSpec describes a configured attribute-value pair.
type AttributeSpec struct {
	Type  uint32 `json:"type" yaml:"type"`
	Op    string `json:"op,omitempty" yaml:"op,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// Deps are the shared collaborators a Factory may hand to the handler it
// builds.
type Deps struct {
	Observer observability.Observer
}

// Factory builds a Handler from its configuration.
type Factory func(spec Spec, deps Deps) (Handler, error)

// Registry maps handler kinds to factories. It is safe for concurrent use.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for kind.
// Returns ErrAlreadyExists if the kind is taken; use Replace to swap it.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, kind)
	}

	r.factories[kind] = f
	return nil
}

// Replace updates the factory for an existing kind.
// Returns ErrUnknownKind if nothing is registered under kind.
func (r *Registry) Replace(kind string, f Factory) error {
	if kind == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	r.factories[kind] = f
	return nil
}

// Lookup returns the factory registered for kind.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[kind]
	return f, ok
}

// Kinds returns all registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build creates a Pipeline from specs, in order. A spec without a Name is
// named after its kind and position.
func (r *Registry) Build(specs []Spec, deps Deps) (*Pipeline, error) {
	if deps.Observer == nil {
		deps.Observer = observability.NoOpObserver{}
	}

	handlers := make([]Handler, 0, len(specs))
	for i, spec := range specs {
		if spec.Kind == "" {
			return nil, fmt.Errorf("pipeline step %d: %w", i, ErrEmptyName)
		}
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("%s-%d", spec.Kind, i)
		}

		f, ok := r.Lookup(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("pipeline step %d (%s): %w: %s", i, spec.Name, ErrUnknownKind, spec.Kind)
		}

		h, err := f(spec, deps)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d (%s): %w", i, spec.Name, err)
		}
		handlers = append(handlers, h)
	}

	return NewPipeline(handlers...), nil
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry, which comes preloaded with
// the built-in kinds.
func Register(kind string, f Factory) error {
	return defaultRegistry.Register(kind, f)
}

// Replace updates a factory in the default registry.
func Replace(kind string, f Factory) error {
	return defaultRegistry.Replace(kind, f)
}

// Lookup finds a factory in the default registry.
func Lookup(kind string) (Factory, bool) {
	return defaultRegistry.Lookup(kind)
}

// Kinds lists the default registry's kinds.
func Kinds() []string {
	return defaultRegistry.Kinds()
}

// Build creates a Pipeline from specs using the default registry.
func Build(specs []Spec, deps Deps) (*Pipeline, error) {
	return defaultRegistry.Build(specs, deps)
}
