package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
)

// lower recursively rewrites expr so that every DefMap becomes nested
// DefBinding IR (via stratify) and every Match becomes a Destruct/Get
// decision tree (via lowerMatch), bottom-up: a DefMap's own Def values
// and body are lowered before stratify groups them, since stratify's
// free-variable analysis must see the final Lambda/DefBinding shape of
// nested definitions to find real sibling references.
func lower(expr ast.Expr, rep *diagnostics.Reporter) ast.Expr {
	if expr == nil {
		return nil
	}
	switch n := expr.(type) {
	case *ast.VarRef:
		return n
	case *ast.App:
		n.Fn = lower(n.Fn, rep)
		n.Arg = lower(n.Arg, rep)
		return n
	case *ast.Lambda:
		n.Body = lower(n.Body, rep)
		return n
	case *ast.Literal:
		return n
	case *ast.Prim:
		return n
	case *ast.Ascribe:
		n.Body = lower(n.Body, rep)
		return n
	case *ast.Construct:
		return n
	case *ast.Destruct:
		n.Arg = lower(n.Arg, rep)
		for i, c := range n.Cases {
			n.Cases[i] = lower(c, rep)
		}
		return n
	case *ast.Get:
		return n
	case *ast.DefBinding:
		// Already-lowered IR (e.g. fed back in during incremental
		// resolution); lower each slot's value in place.
		for i, d := range n.Defs {
			n.Defs[i] = lower(d, rep)
		}
		n.Body = lower(n.Body, rep)
		return n
	case *ast.DefMap:
		for i := range n.Defs {
			n.Defs[i].Value = lower(n.Defs[i].Value, rep)
		}
		body := lower(n.Body, rep)
		return stratify(n.Defs, body, rep)
	case *ast.Match:
		for i, a := range n.Args {
			n.Args[i] = lower(a, rep)
		}
		for i := range n.Patterns {
			if n.Patterns[i].Guard != nil {
				n.Patterns[i].Guard = lower(n.Patterns[i].Guard, rep)
			}
			n.Patterns[i].Body = lower(n.Patterns[i].Body, rep)
		}
		n.Otherwise = lower(n.Otherwise, rep)
		return lowerMatch(n, rep)
	default:
		return n
	}
}
