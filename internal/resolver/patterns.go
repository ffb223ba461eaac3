package resolver

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
)

// lowerMatch lowers a Match with k scrutinees and m pattern rows into
// a decision tree of Destruct/Get/App nodes (spec.md §4.1.5).
//
// Lowering repeatedly picks the leftmost scrutinee position some row
// still commits to a constructor at, expands it into a Destruct with
// one case per constructor, grafts each committed row's field
// sub-patterns into its branch, re-admits still-unrefined rows with
// fresh wildcards, and drops rows committed to a different
// constructor. A row is reported unused if lowering never selects it
// to produce a branch body.
func lowerMatch(m *ast.Match, rep *diagnostics.Reporter) ast.Expr {
	g := &gensym{}
	rows := make([]*row, len(m.Patterns))
	for i := range m.Patterns {
		rows[i] = &row{
			patterns: m.Patterns[i].Patterns,
			guard:    m.Patterns[i].Guard,
			body:     m.Patterns[i].Body,
			loc:      m.Patterns[i].Location,
			orig:     &m.Patterns[i],
		}
	}
	tree := lowerRows(m.Args, rows, m.Otherwise, m.Refutable, m.Loc(), g, rep)
	for i := range m.Patterns {
		if !m.Patterns[i].Used() {
			rep.Warnf(m.Patterns[i].Location, diagnostics.WarnUnusedPatternRow, "pattern row is never reached")
		}
	}
	return tree
}

// row is the lowering pass's own working copy of a pattern-match row:
// unlike ast.PatternRow, it is mutated freely as rows get grafted or
// re-admitted with wildcards while orig keeps a handle back to the
// surface row for the unused-row diagnostic.
type row struct {
	patterns []ast.Pattern
	guard    ast.Expr
	body     ast.Expr
	loc      ast.Location
	orig     *ast.PatternRow
}

type gensym struct{ n int }

func (g *gensym) next() string {
	g.n++
	name := "$scrutinee" + itoa(g.n)
	return name
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// lowerRows builds the decision tree for one position. args are the
// scrutinee expressions available at this point; rows are the still-
// live rows, each aligned one pattern per arg.
func lowerRows(args []ast.Expr, rows []*row, otherwise ast.Expr, refutable bool, loc ast.Location, g *gensym, rep *diagnostics.Reporter) ast.Expr {
	if len(rows) == 0 {
		if otherwise != nil {
			return otherwise
		}
		if refutable {
			// No catch-all was supplied; spec.md §4.1.5 treats a
			// refutable match with no otherwise as returning the
			// scrutinee unchanged when nothing else matched.
			if len(args) > 0 {
				return args[0]
			}
			return &ast.Literal{Kind: ast.LitInteger}
		}
		// A total (non-refutable) match reached a constructor with no
		// covering row and no otherwise — spec.md §4.1.5/§8 requires
		// this be diagnosed, not silently passed through.
		rep.Errorf(loc, diagnostics.ErrNonExhaustiveMatch, "non-exhaustive match: no pattern row covers this case and no otherwise is given")
		if len(args) > 0 {
			return args[0]
		}
		return &ast.Literal{Kind: ast.LitInteger}
	}

	// Find the leftmost position some row still commits to a
	// constructor at (spec.md §4.1.5 "leftmost-outermost").
	pos := -1
	var sum *ast.Sum
	for i := range args {
		for _, r := range rows {
			if pc, ok := r.patterns[i].(ast.PatConstruct); ok {
				pos = i
				sum = pc.Sum
				break
			}
		}
		if pos >= 0 {
			break
		}
	}

	if pos < 0 {
		r := rows[0]
		r.orig.MarkUsed()
		if r.guard != nil {
			// Only a guarded row can fall through to the rows after it;
			// an unguarded row here matches everything that reaches it.
			rest := lowerRows(args, rows[1:], otherwise, refutable, loc, g, rep)
			// The guard may itself read names this row's patterns bind
			// (e.g. "Pair x y if lt x y"), so it needs the same
			// App{Lambda{param}, arg} bindings as the body — wrapped
			// around the guard and the body separately, never around
			// rest, so the next row's bindings can't leak into this one.
			guard := bindRowVars(args, r, r.guard)
			body := bindRowVars(args, r, r.body)
			return guardedChoice(guard, body, rest)
		}
		return bindRowVars(args, r, r.body)
	}

	recVar := g.next()
	cases := make([]ast.Expr, len(sum.Ctors))
	for ci, ctor := range sum.Ctors {
		var branchRows []*row
		for _, r := range rows {
			switch p := r.patterns[pos].(type) {
			case ast.PatConstruct:
				if p.Cons.Index == ci {
					branchRows = append(branchRows, graftFields(r, pos, p.Args))
				}
			default:
				branchRows = append(branchRows, admitWildcards(r, pos, ctor.Arity()))
			}
		}

		branchArgs := make([]ast.Expr, 0, len(args)-1+ctor.Arity())
		for fi := 0; fi < ctor.Arity(); fi++ {
			branchArgs = append(branchArgs, &ast.App{
				Fn:  &ast.Get{Sum: sum, Cons: ctor, Index: fi},
				Arg: &ast.VarRef{Name: recVar},
			})
		}
		for j, a := range args {
			if j != pos {
				branchArgs = append(branchArgs, a)
			}
		}

		inner := lowerRows(branchArgs, branchRows, otherwise, refutable, loc, g, rep)
		cases[ci] = &ast.Lambda{Param: recVar, Body: inner}
	}

	return &ast.Destruct{Sum: sum, Arg: args[pos], Cases: cases}
}

// graftFields replaces the committed pattern at pos with its field
// sub-patterns (prepended, matching branchArgs' field-then-rest
// ordering above) and keeps every other position unchanged.
func graftFields(r *row, pos int, fieldPatterns []ast.Pattern) *row {
	newPatterns := make([]ast.Pattern, 0, len(r.patterns)-1+len(fieldPatterns))
	newPatterns = append(newPatterns, fieldPatterns...)
	for j, p := range r.patterns {
		if j != pos {
			newPatterns = append(newPatterns, p)
		}
	}
	return &row{patterns: newPatterns, guard: r.guard, body: r.body, loc: r.loc, orig: r.orig}
}

// admitWildcards re-admits a row that never committed at pos into a
// branch it didn't ask for, padding with fresh wildcards for the
// branch's field positions.
func admitWildcards(r *row, pos int, arity int) *row {
	newPatterns := make([]ast.Pattern, 0, len(r.patterns)-1+arity)
	for i := 0; i < arity; i++ {
		newPatterns = append(newPatterns, ast.PatWildcard{})
	}
	for j, p := range r.patterns {
		if j != pos {
			newPatterns = append(newPatterns, p)
		}
	}
	return &row{patterns: newPatterns, guard: r.guard, body: r.body, loc: r.loc, orig: r.orig}
}

// bindRowVars wraps target in the row's remaining PatVar bindings, each
// an immediately-applied single-argument Lambda — the same encoding
// App/Lambda already use for ordinary lets. Called once for the row's
// guard and once for its body so both see the same bindings.
func bindRowVars(args []ast.Expr, r *row, target ast.Expr) ast.Expr {
	body := target
	for i := len(args) - 1; i >= 0; i-- {
		if p, ok := r.patterns[i].(ast.PatVar); ok {
			body = &ast.App{Fn: &ast.Lambda{Param: p.Name, Body: body}, Arg: args[i]}
		}
	}
	return body
}

// guardedChoice evaluates guard; on true it forces thenBody, on false
// it falls through to elseBody (spec.md §4.1.5, §9 Open Question:
// "evaluate the guard thunk; on true, force the rhs thunk").
func guardedChoice(guard, thenBody, elseBody ast.Expr) ast.Expr {
	return &ast.Destruct{
		Sum: BoolSum,
		Arg: guard,
		Cases: []ast.Expr{
			&ast.Lambda{Param: "$guarded", Body: elseBody}, // False is constructor index 0
			&ast.Lambda{Param: "$guarded", Body: thenBody}, // True is constructor index 1
		},
	}
}

// BoolSum is the built-in two-constructor sum every guard dispatches
// through; False is declared before True so constructor index 0 means
// false.
var BoolSum = ast.NewSum("Bool",
	&ast.Constructor{Name: "False"},
	&ast.Constructor{Name: "True"},
)
