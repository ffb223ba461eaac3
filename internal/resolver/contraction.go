package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/symbols"
)

// populateExports seeds every package's Exports table with its own
// top-level definitions, qualified as "<name>@<package>" (spec.md §3:
// every package has an export table). A package's own top-level defs
// are always exported in this language's simplified visibility model;
// finer-grained privacy is an Open Question left to the type checker.
func populateExports(top *ast.Top) {
	for _, pkg := range top.Packages {
		if pkg.Exports == nil {
			pkg.Exports = symbols.NewTable(pkg.Name)
		}
		for _, f := range pkg.Files {
			if f.Content == nil {
				continue
			}
			for _, d := range f.Content.Defs {
				pkg.Exports.Define(&symbols.Symbol{
					Local:     d.Name,
					Qualified: d.Name + "@" + pkg.Name,
					Origin:    pkg.Name,
					Kind:      symbols.DefSymbol,
					Flags:     symbols.Flags{Exported: true},
				})
			}
			for _, t := range f.Topics {
				pkg.Exports.Define(&symbols.Symbol{
					Local:     t.Name,
					Qualified: topicDefName(pkg.Name, t.Name),
					Origin:    pkg.Name,
					Kind:      symbols.TopicSymbol,
					Flags:     symbols.Flags{Exported: true},
				})
			}
		}
	}
}

// contractExports resolves "export import _ from p" republish
// directives: an Import with Kind ImportWildcard and an empty Local
// means "also re-export everything p exports." This is a DFS over the
// package re-export graph with cycle detection (spec.md's "export
// contraction"); contraction is idempotent because each package's
// Exports table only ever grows union-wise.
func contractExports(top *ast.Top, rep *diagnostics.Reporter) {
	byName := make(map[string]*ast.Package, len(top.Packages))
	for _, p := range top.Packages {
		byName[p.Name] = p
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(top.Packages))

	var visit func(pkg *ast.Package) bool // returns false on cycle
	visit = func(pkg *ast.Package) bool {
		if state[pkg.Name] == done {
			return true
		}
		if state[pkg.Name] == visiting {
			return false
		}
		state[pkg.Name] = visiting

		for _, f := range pkg.Files {
			for _, imp := range f.Imports {
				if imp.Kind != ast.ImportWildcard || imp.Local != "" {
					continue
				}
				src, ok := byName[imp.Package]
				if !ok {
					continue
				}
				if !visit(src) {
					rep.Errorf(imp.Location, diagnostics.ErrCyclicReexport,
						"cyclic re-export between %q and %q", pkg.Name, imp.Package)
					continue
				}
				for _, sym := range wildcardSymbols(src.Exports) {
					pkg.Exports.Define(sym)
				}
			}
		}

		state[pkg.Name] = done
		return true
	}

	for _, p := range top.Packages {
		visit(p)
	}
}

func wildcardSymbols(t *symbols.Table) []*symbols.Symbol {
	if t == nil {
		return nil
	}
	names := wildcardNames(t)
	out := make([]*symbols.Symbol, 0, len(names))
	for _, n := range names {
		out = append(out, t.Mixed[n])
	}
	return out
}
