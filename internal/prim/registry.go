// Package prim implements spec.md §4.4's primitive-function registry:
// name -> (arity, callback), consulted while building the IR's
// *ast.Prim nodes. Primitives receive already-forced argument values
// and a receiver continuation they must invoke exactly once,
// synchronously or later (spec.md §4.4 "asynchronous primitive
// protocol").
package prim

import (
	"github.com/funvibe/wakecore/internal/ast"
)

// Entry is one registered primitive.
type Entry struct {
	Name  string
	NArgs int
	Fn    ast.PrimFn
	Data  interface{}
}

// Registry maps primitive names to their Entry, mirroring the
// resolver's other name tables (spec.md §6 "Parser-to-resolver
// interface": the registry is consulted while lowering a `prim` form).
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Register(e Entry) {
	r.entries[e.Name] = e
}

func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Node builds the *ast.Prim IR node for a registered primitive at loc.
func (r *Registry) Node(name string, loc ast.Location) (*ast.Prim, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return &ast.Prim{
		Meta:  ast.Meta{Location: loc},
		Name:  e.Name,
		NArgs: e.NArgs,
		Fn:    e.Fn,
		Data:  e.Data,
	}, true
}

// Names returns every registered primitive name, in a stable
// (insertion-independent, sorted) order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
