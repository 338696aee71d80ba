// Package code defines the two-phase contract every SCQL transformation
// implements, the registry of named functions, and the built-ins reshape
// and zip.
package code

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// ShapeFunc validates a call and computes its output schemas without
// touching any data. A non-empty message means the call is rejected.
// It must be pure: analysis calls it on every edit.
type ShapeFunc func(inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) ([]*schema.Schema, string)

// OperateFunc performs the transformation. It is only called after
// the matching ShapeFunc accepted the same inputs and arguments.
type OperateFunc func(inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) []*schema.Schema

// Function is one registered transformation.
type Function struct {
	Name        string
	Usage       string
	Description string
	OutputShape ShapeFunc
	Operate     OperateFunc
}

// Registry maps function names to functions, keeping insertion order.
type Registry struct {
	mu      sync.RWMutex
	names   []string
	entries map[string]*Function
}

// NewEmptyRegistry returns a registry with no functions.
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]*Function)}
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Add(Reshape())
	r.Add(Zip())
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

// Get returns the function registered under name. It panics when name is
// not registered; confirm it with Match first.
func (r *Registry) Get(name string) *Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.entries[name]
	if !ok {
		panic(fmt.Sprintf("code: Get(%q) on unregistered function", name))
	}
	return f
}

// Lookup resolves name by the unique exact prefix rule.
func (r *Registry) Lookup(name string) (*Function, bool) {
	m := r.Match(name)
	if len(m) != 1 || m[0] != name {
		return nil, false
	}
	return r.Get(name), true
}

// Add registers f under f.Name, replacing any previous entry in place.
func (r *Registry) Add(f *Function) {
	if f == nil || f.Name == "" || f.OutputShape == nil || f.Operate == nil {
		panic("code: Add requires a named function with both phases")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[f.Name]; !exists {
		r.names = append(r.names, f.Name)
	}
	r.entries[f.Name] = f
}

// Names returns all registered names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// mustShape runs the shape phase for an Operate implementation. A failure
// here means Operate was called without a successful OutputShape.
func mustShape(name string, fn ShapeFunc, inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) []*schema.Schema {
	out, msg := fn(inputs, t, args)
	if msg != "" {
		panic(fmt.Sprintf("code: %s operate called on rejected input: %s", name, msg))
	}
	return out
}
