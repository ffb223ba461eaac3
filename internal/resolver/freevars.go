package resolver

import "github.com/funvibe/wakecore/internal/ast"

// freeVars collects the set of VarRef names that occur free in expr,
// i.e. not shadowed by an enclosing Lambda parameter, DefMap
// definition, or pattern-bound name. It is used to build the
// reference graph a DefMap's definitions induce (spec.md §4.1.4:
// "every definition records the set of in-scope definition indices
// it references").
func freeVars(expr ast.Expr, bound map[string]bool) map[string]bool {
	out := make(map[string]bool)
	collectFreeVars(expr, bound, out)
	return out
}

func collectFreeVars(expr ast.Expr, bound map[string]bool, out map[string]bool) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.VarRef:
		if !bound[n.Name] {
			out[n.Name] = true
		}
	case *ast.App:
		collectFreeVars(n.Fn, bound, out)
		collectFreeVars(n.Arg, bound, out)
	case *ast.Lambda:
		inner := cloneBound(bound)
		inner[n.Param] = true
		collectFreeVars(n.Body, inner, out)
	case *ast.Literal:
		// no references
	case *ast.Prim:
		// primitive arguments are collected via enclosing lambdas, not here
	case *ast.DefMap:
		inner := cloneBound(bound)
		for _, d := range n.Defs {
			inner[d.Name] = true
		}
		for _, d := range n.Defs {
			collectFreeVars(d.Value, inner, out)
		}
		for _, imp := range n.Imports {
			inner[imp.Local] = true
		}
		collectFreeVars(n.Body, inner, out)
	case *ast.Match:
		for _, a := range n.Args {
			collectFreeVars(a, bound, out)
		}
		for _, row := range n.Patterns {
			inner := cloneBound(bound)
			for _, p := range row.Patterns {
				bindPatternNames(p, inner)
			}
			if row.Guard != nil {
				collectFreeVars(row.Guard, inner, out)
			}
			collectFreeVars(row.Body, inner, out)
		}
		collectFreeVars(n.Otherwise, bound, out)
	case *ast.Ascribe:
		collectFreeVars(n.Body, bound, out)
	case *ast.Construct:
		// constructors take no sub-expressions of their own
	case *ast.Destruct:
		collectFreeVars(n.Arg, bound, out)
		for _, c := range n.Cases {
			collectFreeVars(c, bound, out)
		}
	case *ast.Get:
		// operates on the enclosing frame; no sub-expression
	case *ast.DefBinding:
		inner := cloneBound(bound)
		for _, name := range n.Order {
			inner[name] = true
		}
		for _, d := range n.Defs {
			collectFreeVars(d, inner, out)
		}
		collectFreeVars(n.Body, inner, out)
	}
}

func bindPatternNames(p ast.Pattern, bound map[string]bool) {
	switch pt := p.(type) {
	case ast.PatVar:
		bound[pt.Name] = true
	case ast.PatConstruct:
		for _, a := range pt.Args {
			bindPatternNames(a, bound)
		}
	}
}

func cloneBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k := range bound {
		out[k] = true
	}
	return out
}

// isLambda reports whether expr is (the start of) a lambda chain,
// i.e. a function definition rather than a plain value (spec.md
// §4.1.4 edge weight rule, §3 DefBinding invariant).
func isLambda(expr ast.Expr) bool {
	_, ok := expr.(*ast.Lambda)
	return ok
}
