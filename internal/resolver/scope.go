package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
)

// scope is the compile-time mirror of the runtime Frame chain (spec.md
// §3, §4.1.3): a stack of lexical frames, each with an ordered list of
// names. Depth is counted across frames outward from s. Frames are
// pushed in exactly the shapes stratify/lowerMatch produce: one per
// DefBinding level (names = Order) and one per Lambda (a single-name
// frame for its Param). Import aliasing is resolved earlier, as a
// surface rewrite over VarRef.Name (see rewriteAliases in imports.go),
// so by the time resolveRefs runs every name is already either a
// lexical reference or an unbound one.
type scope struct {
	parent *scope
	names  []string
}

func push(parent *scope, names []string) *scope {
	return &scope{parent: parent, names: names}
}

// find looks up name starting from s and reports (depth, offset, true)
// on success.
func (s *scope) find(name string) (depth, offset int, ok bool) {
	d := 0
	for cur := s; cur != nil; cur = cur.parent {
		for i, n := range cur.names {
			if n == name {
				return d, i, true
			}
		}
		d++
	}
	return 0, 0, false
}

// resolveRefs walks the lowered IR (post-stratify/post-pattern-
// lowering, post-alias-rewrite) and assigns Depth/Offset to every
// VarRef, reporting ErrUnboundVariable for names found in no frame
// (spec.md §4.1.3).
func resolveRefs(expr ast.Expr, s *scope, rep *diagnostics.Reporter) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.VarRef:
		depth, offset, ok := s.find(n.Name)
		if !ok {
			rep.Errorf(n.Location, diagnostics.ErrUnboundVariable, "unbound variable %q", n.Name)
			return
		}
		n.Depth = depth
		n.Offset = offset
		n.Resolved = true
	case *ast.App:
		resolveRefs(n.Fn, s, rep)
		resolveRefs(n.Arg, s, rep)
	case *ast.Lambda:
		inner := push(s, []string{n.Param})
		resolveRefs(n.Body, inner, rep)
	case *ast.Literal:
		// no references
	case *ast.Prim:
		// primitive arguments arrive through enclosing lambdas
	case *ast.Ascribe:
		resolveRefs(n.Body, s, rep)
	case *ast.Construct:
		// no sub-expressions
	case *ast.Destruct:
		resolveRefs(n.Arg, s, rep)
		for _, c := range n.Cases {
			resolveRefs(c, s, rep)
		}
	case *ast.Get:
		// Get is a projection function value with no sub-expressions
		// of its own; the App node applying it resolves its argument.
	case *ast.DefBinding:
		inner := push(s, n.Order)
		for _, d := range n.Defs {
			resolveRefs(d, inner, rep)
		}
		resolveRefs(n.Body, inner, rep)
	case *ast.DefMap:
		panic("resolver: resolveRefs encountered an unlowered DefMap")
	case *ast.Match:
		panic("resolver: resolveRefs encountered an unlowered Match")
	}
}
