// Package symbols implements the resolver's name tables (spec.md §3
// "Symbol tables"): name -> (qualified_name, origin_fragment, flags),
// one table per def/type/topic namespace, plus a mixed table and the
// set of wildcard-imported packages. It has no dependency on ast so
// that ast can embed a *Table in Package/File without a cycle.
package symbols

import "sort"

// Kind is the namespace a symbol belongs to.
type Kind int

const (
	DefSymbol Kind = iota
	TypeSymbol
	TopicSymbol
	ConstructorSymbol
	ModuleAliasSymbol
)

// Flags records bookkeeping the resolver needs per symbol.
type Flags struct {
	Used     bool
	Exported bool
}

// Symbol is one entry: a local/unqualified name mapped to its fully
// qualified form and the package fragment it originated from
// (spec.md §4.1.1: "<local> -> <original>@<pkg>").
type Symbol struct {
	Local     string
	Qualified string
	Origin    string
	Kind      Kind
	Flags     Flags
}

// Table holds one scope's def/type/topic namespaces, a "mixed" map
// (spec.md §4.1.1: "A name present in mixed feeds all three kind-
// specific tables") and the set of packages imported with `import _`
// (wildcard), which contribute extra lookup scopes during reference
// resolution rather than direct table entries.
type Table struct {
	Name        string
	Defs        map[string]*Symbol
	Types       map[string]*Symbol
	Topics      map[string]*Symbol
	Mixed       map[string]*Symbol
	ImportAll   map[string]bool // package names imported with `import _`
	ModuleAlias map[string]string
}

func NewTable(name string) *Table {
	return &Table{
		Name:        name,
		Defs:        make(map[string]*Symbol),
		Types:       make(map[string]*Symbol),
		Topics:      make(map[string]*Symbol),
		Mixed:       make(map[string]*Symbol),
		ImportAll:   make(map[string]bool),
		ModuleAlias: make(map[string]string),
	}
}

func tableFor(t *Table, k Kind) map[string]*Symbol {
	switch k {
	case TypeSymbol:
		return t.Types
	case TopicSymbol:
		return t.Topics
	default:
		return t.Defs
	}
}

// Define inserts sym into the table for its Kind, and into Mixed.
func (t *Table) Define(sym *Symbol) {
	tableFor(t, sym.Kind)[sym.Local] = sym
	t.Mixed[sym.Local] = sym
}

// Lookup resolves name within this table's kind-specific namespace,
// falling back to Mixed (spec.md §4.1.1).
func (t *Table) Lookup(name string, k Kind) (*Symbol, bool) {
	if sym, ok := tableFor(t, k)[name]; ok {
		return sym, true
	}
	sym, ok := t.Mixed[name]
	return sym, ok
}

// MarkUsed flips the Used flag, feeding the "unused import/local/
// top-level def" warnings (spec.md §4.1.3).
func (t *Table) MarkUsed(name string, k Kind) {
	if sym, ok := tableFor(t, k)[name]; ok {
		sym.Flags.Used = true
	}
	if sym, ok := t.Mixed[name]; ok {
		sym.Flags.Used = true
	}
}

// Unused returns every symbol (across all namespaces) never marked
// used, in a stable order.
func (t *Table) Unused() []*Symbol {
	seen := make(map[*Symbol]bool)
	var out []*Symbol
	for _, m := range []map[string]*Symbol{t.Defs, t.Types, t.Topics} {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := m[name]
			if !sym.Flags.Used && !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	return out
}
