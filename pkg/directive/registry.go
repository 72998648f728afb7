package directive

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry maps directive keywords to descriptors.
// It is safe for concurrent use; parse passes take a read-only Snapshot.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// Register validates and adds a descriptor. The registry stores a copy.
func (r *Registry) Register(desc *Descriptor) error {
	if desc == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDirective, desc.Name)
	}
	r.byName[desc.Name] = desc.Clone()
	return nil
}

// MustRegister is Register that panics on error. It is meant for built-in descriptors.
func (r *Registry) MustRegister(desc *Descriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// Get looks up a descriptor by exact name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byName[name]
	return desc, ok
}

// Len returns the number of registered directives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Descriptors returns all descriptors sorted by name.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, 0, len(r.byName))
	for _, desc := range r.byName {
		result = append(result, desc)
	}

	slices.SortFunc(result, func(a, b *Descriptor) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return result
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.byName))
	for name := range r.byName {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}

// Clone returns an independent registry with the same descriptors.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for name, desc := range r.byName {
		clone.byName[name] = desc.Clone()
	}
	return clone
}

// Snapshot is an immutable view of a registry taken at the start of a parse pass.
type Snapshot struct {
	byName map[string]*Descriptor
}

// Snapshot captures the current descriptors.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]*Descriptor, len(r.byName))
	for name, desc := range r.byName {
		byName[name] = desc.Clone()
	}
	return Snapshot{byName: byName}
}

// Lookup finds a descriptor by exact name.
func (s Snapshot) Lookup(name string) (*Descriptor, bool) {
	desc, ok := s.byName[name]
	return desc, ok
}

// Len returns the number of descriptors in the snapshot.
func (s Snapshot) Len() int {
	return len(s.byName)
}

// DefaultRegistry holds the built-in directives.
//
//nolint:gochecknoglobals // Global registry is intentional for directive registration
var DefaultRegistry = NewRegistry()
