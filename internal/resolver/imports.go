package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/symbols"
)

// qualifyImports walks file's Import list and returns the alias table
// resolveRefs' import layer needs: local name -> "<source>@<package>".
// It also validates each import against the source package's Exports
// table, reporting unknown packages, unknown names, and duplicate
// local names brought in from different sources (spec.md §4.1.1).
func qualifyImports(top *ast.Top, file *ast.File, rep *diagnostics.Reporter) map[string]string {
	pkgByName := make(map[string]*ast.Package, len(top.Packages))
	for _, p := range top.Packages {
		pkgByName[p.Name] = p
	}

	aliases := make(map[string]string)
	seenFrom := make(map[string]string) // local -> "source@package" already bound

	for _, imp := range file.Imports {
		src, ok := pkgByName[imp.Package]
		if !ok {
			rep.Warnf(imp.Location, diagnostics.WarnNoSuchPackage, "no such package %q", imp.Package)
			continue
		}

		switch imp.Kind {
		case ast.ImportWildcard:
			names := wildcardNames(src.Exports)
			for _, name := range names {
				qualified := name + "@" + imp.Package
				bindAlias(aliases, seenFrom, file, name, qualified, imp, rep)
			}
		default:
			kind := symbolKindFor(imp.Kind)
			sym, ok := src.Exports.Lookup(imp.Source, kind)
			if !ok {
				rep.Errorf(imp.Location, diagnostics.ErrUnboundVariable,
					"package %q does not export %q", imp.Package, imp.Source)
				continue
			}
			local := imp.Local
			if local == "" {
				local = imp.Source
			}
			qualified := sym.Qualified
			if qualified == "" {
				qualified = imp.Source + "@" + imp.Package
			}
			bindAlias(aliases, seenFrom, file, local, qualified, imp, rep)
		}
	}

	return aliases
}

func symbolKindFor(k ast.ImportKind) symbols.Kind {
	switch k {
	case ast.ImportTypesOnly:
		return symbols.TypeSymbol
	case ast.ImportTopicsOnly:
		return symbols.TopicSymbol
	default:
		return symbols.DefSymbol
	}
}

func bindAlias(aliases map[string]string, seenFrom map[string]string, file *ast.File, local, qualified string, imp ast.Import, rep *diagnostics.Reporter) {
	if prior, ok := seenFrom[local]; ok && prior != qualified {
		rep.Errorf(imp.Location, diagnostics.ErrDuplicateImport,
			"%q already imported from %q", local, prior)
		return
	}
	seenFrom[local] = qualified
	aliases[local] = qualified
	if file.Local != nil {
		file.Local.Define(&symbols.Symbol{Local: local, Qualified: qualified, Origin: imp.Package, Kind: symbolKindFor(imp.Kind)})
	}
}

// wildcardNames returns every def name a package's export table
// publishes, in a deterministic (sorted) order.
func wildcardNames(exports *symbols.Table) []string {
	if exports == nil {
		return nil
	}
	names := make([]string, 0, len(exports.Mixed))
	for name := range exports.Mixed {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// rewriteAliases renames every unshadowed VarRef matching a key of
// aliases to its qualified form, in place. Import aliasing is a
// file-global surface rewrite, not a lexical scope, so it must run
// before stratify/lower ever groups definitions into frames — this
// mirrors collectFreeVars' own shadowing walk so a local Lambda
// parameter or nested DefMap definition correctly shadows an import of
// the same name.
func rewriteAliases(expr ast.Expr, bound map[string]bool, aliases map[string]string, used map[string]bool) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.VarRef:
		if !bound[n.Name] {
			if q, ok := aliases[n.Name]; ok {
				used[n.Name] = true
				n.Name = q
			}
		}
	case *ast.App:
		rewriteAliases(n.Fn, bound, aliases, used)
		rewriteAliases(n.Arg, bound, aliases, used)
	case *ast.Lambda:
		inner := cloneBound(bound)
		inner[n.Param] = true
		rewriteAliases(n.Body, inner, aliases, used)
	case *ast.Literal, *ast.Prim, *ast.Construct, *ast.Get:
		// no sub-expressions
	case *ast.Ascribe:
		rewriteAliases(n.Body, bound, aliases, used)
	case *ast.Destruct:
		rewriteAliases(n.Arg, bound, aliases, used)
		for _, c := range n.Cases {
			rewriteAliases(c, bound, aliases, used)
		}
	case *ast.DefBinding:
		inner := cloneBound(bound)
		for _, name := range n.Order {
			inner[name] = true
		}
		for _, d := range n.Defs {
			rewriteAliases(d, inner, aliases, used)
		}
		rewriteAliases(n.Body, inner, aliases, used)
	case *ast.DefMap:
		inner := cloneBound(bound)
		for _, d := range n.Defs {
			inner[d.Name] = true
		}
		for i := range n.Defs {
			rewriteAliases(n.Defs[i].Value, inner, aliases, used)
		}
		for _, imp := range n.Imports {
			inner[imp.Local] = true
		}
		rewriteAliases(n.Body, inner, aliases, used)
	case *ast.Match:
		for _, a := range n.Args {
			rewriteAliases(a, bound, aliases, used)
		}
		for i := range n.Patterns {
			row := &n.Patterns[i]
			inner := cloneBound(bound)
			for _, p := range row.Patterns {
				bindPatternNames(p, inner)
			}
			if row.Guard != nil {
				rewriteAliases(row.Guard, inner, aliases, used)
			}
			rewriteAliases(row.Body, inner, aliases, used)
		}
		rewriteAliases(n.Otherwise, bound, aliases, used)
	}
}
