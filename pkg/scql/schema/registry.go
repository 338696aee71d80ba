package schema

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is the catalog of named data sources. Names keep their
// insertion order; overwriting a name keeps its original position.
type Registry struct {
	mu      sync.RWMutex
	names   []string
	entries map[string]*Schema
}

// NewEmptyRegistry returns a registry with no sources.
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]*Schema)}
}

// NewRegistry returns a registry populated from the built-in catalog.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, b := range builtinCatalog() {
		if err := r.Add(b.name, b.schema); err != nil {
			panic(fmt.Sprintf("schema: invalid built-in source %s: %v", b.name, err))
		}
	}
	return r
}

// Match returns every registered name starting with prefix, in insertion order.
func (r *Registry) Match(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []string
	for _, n := range r.names {
		if strings.HasPrefix(n, prefix) {
			res = append(res, n)
		}
	}
	return res
}

// Get returns the schema registered under name. Callers must confirm the
// name with Match first; an unknown name is a programming error.
func (r *Registry) Get(name string) *Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.entries[name]
	if !ok {
		panic(fmt.Sprintf("schema: Get(%q) on unregistered source", name))
	}
	return s
}

// Lookup resolves name the way data cells are resolved: the prefix match
// must yield exactly one name and it must equal name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	m := r.Match(name)
	if len(m) != 1 || m[0] != name {
		return nil, false
	}
	return r.Get(name), true
}

// Add registers or overwrites a source.
func (r *Registry) Add(name string, s *Schema) error {
	if name == "" {
		return fmt.Errorf("schema: empty source name")
	}
	if s == nil {
		return fmt.Errorf("schema: nil schema for %s", name)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.names = append(r.names, name)
	}
	r.entries[name] = s
	return nil
}

// Names returns all registered names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
