package resolver

import (
	"testing"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/stretchr/testify/require"
)

func sideEffectPrim(fired *bool) *ast.Prim {
	return &ast.Prim{
		Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
			*fired = true
			recv.Receive(heap.NewInteger(1))
		},
	}
}

func boolGuard(v bool) *ast.Prim {
	return &ast.Prim{
		Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
			recv.Receive(boolValue(v))
		},
	}
}

func boolValue(v bool) heap.Value {
	idx, name := 0, "False"
	if v {
		idx, name = 1, "True"
	}
	return &heap.Record{SumName: "Bool", CtorName: name, CtorIndex: idx}
}

// TestLowerMatchGuardOnlyRunsSelectedRowBody covers spec.md §9's open
// question on guard semantics: evaluate the guard, then force only the
// chosen row's body — the other row's body (and any side effect in
// it) must never run.
func TestLowerMatchGuardOnlyRunsSelectedRowBody(t *testing.T) {
	for _, guardResult := range []bool{true, false} {
		var thenFired, elseFired bool
		m := &ast.Match{
			Args: []ast.Expr{&ast.Literal{Kind: ast.LitInteger, Value: heap.NewInteger(0)}},
			Patterns: []ast.PatternRow{
				{
					Patterns: []ast.Pattern{ast.PatVar{Name: "n"}},
					Guard:    boolGuard(guardResult),
					Body:     sideEffectPrim(&thenFired),
				},
				{
					Patterns: []ast.Pattern{ast.PatWildcard{}},
					Body:     sideEffectPrim(&elseFired),
				},
			},
			Refutable: false,
		}
		rep := diagnostics.NewReporter()
		tree := lowerMatch(m, rep)
		require.False(t, rep.HasErrors())

		ev := evaluator.New()
		result := ev.Eval(tree)
		_, isException := heap.IsException(result)
		require.False(t, isException, "lowered guard tree must not raise")

		require.Equal(t, guardResult, thenFired, "guard=%v: first row's body firing", guardResult)
		require.Equal(t, !guardResult, elseFired, "guard=%v: second row's body firing", guardResult)
	}
}

// pairSum is a minimal two-field product Sum used to drive a guard
// that actually reads pattern-bound variables.
var pairSum = ast.NewSum("Pair",
	&ast.Constructor{Name: "Pair", ArgTypes: []ast.Expr{nil, nil}},
)

func intLit(n int64) ast.Expr {
	return &ast.Literal{Kind: ast.LitInteger, Value: heap.NewInteger(n)}
}

// ltPrim is a 2-arg primitive comparing two forced integers, used as a
// guard body.
func ltPrim() *ast.Prim {
	return &ast.Prim{
		NArgs: 2,
		Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
			a, aok := args[0].(*heap.Integer)
			b, bok := args[1].(*heap.Integer)
			if !aok || !bok {
				recv.Receive(boolValue(false))
				return
			}
			recv.Receive(boolValue(a.Value.Cmp(b.Value) < 0))
		},
	}
}

// addPrim is a 2-arg primitive adding two forced integers, used as a
// row body so its result proves which variables the guard let through.
func addPrim() *ast.Prim {
	return &ast.Prim{
		NArgs: 2,
		Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
			a := args[0].(*heap.Integer)
			b := args[1].(*heap.Integer)
			recv.Receive(heap.NewInteger(a.Value.Int64() + b.Value.Int64()))
		},
	}
}

func apply2(fn ast.Expr, a, b ast.Expr) ast.Expr {
	return &ast.App{Fn: &ast.App{Fn: fn, Arg: a}, Arg: b}
}

// TestLowerMatchGuardReadsPatternVariable covers the maintainer-reported
// bug where a guard referencing match-bound names (spec.md §8 scenario
// 4, "Pair x y if lt x y") resolved to unbound variable because the
// guard was lowered outside bindRowVars' bindings. The guard and body
// here both read x and y bound by the Pair row, and the whole tree
// runs through lowerMatch, resolveRefs and the real evaluator — not a
// hand-built Destruct tree — so a regression here fails the same way
// spec.md §8 scenario 4 would.
func TestLowerMatchGuardReadsPatternVariable(t *testing.T) {
	build := func(x, y int64) *ast.Match {
		return &ast.Match{
			Args: []ast.Expr{&ast.App{Fn: &ast.App{Fn: &ast.Construct{Sum: pairSum, Cons: pairSum.Ctors[0]}, Arg: intLit(x)}, Arg: intLit(y)}},
			Patterns: []ast.PatternRow{
				{
					Patterns: []ast.Pattern{ast.PatConstruct{
						Sum:  pairSum,
						Cons: pairSum.Ctors[0],
						Args: []ast.Pattern{ast.PatVar{Name: "x"}, ast.PatVar{Name: "y"}},
					}},
					Guard: apply2(ltPrim(), &ast.VarRef{Name: "x"}, &ast.VarRef{Name: "y"}),
					Body:  apply2(addPrim(), &ast.VarRef{Name: "x"}, &ast.VarRef{Name: "y"}),
				},
				{
					Patterns: []ast.Pattern{ast.PatWildcard{}},
					Body:     intLit(-1),
				},
			},
			Refutable: true,
		}
	}

	// x < y: guard true, body runs with x,y bound -> x+y.
	m := build(3, 5)
	rep := diagnostics.NewReporter()
	tree := lowerMatch(m, rep)
	require.False(t, rep.HasErrors())
	resolveRefs(tree, nil, rep)
	require.False(t, rep.HasErrors(), "guard referencing a pattern variable must resolve, not report unbound variable")

	result := evaluator.New().Eval(tree)
	i, ok := result.(*heap.Integer)
	require.True(t, ok, "expected an integer result, got %T", result)
	require.Equal(t, int64(8), i.Value.Int64())

	// x >= y: guard false, falls through to the wildcard row's -1.
	m2 := build(5, 3)
	rep2 := diagnostics.NewReporter()
	tree2 := lowerMatch(m2, rep2)
	require.False(t, rep2.HasErrors())
	resolveRefs(tree2, nil, rep2)
	require.False(t, rep2.HasErrors())

	result2 := evaluator.New().Eval(tree2)
	i2, ok := result2.(*heap.Integer)
	require.True(t, ok)
	require.Equal(t, int64(-1), i2.Value.Int64())
}

// TestLowerMatchNonExhaustiveTotalMatchReportsDiagnostic covers
// spec.md §4.1.5/§8: a non-refutable (total) match whose rows don't
// cover every constructor of the scrutinee's Sum, and which supplies
// no otherwise, must be diagnosed with ErrNonExhaustiveMatch rather
// than silently falling through to the scrutinee value.
func TestLowerMatchNonExhaustiveTotalMatchReportsDiagnostic(t *testing.T) {
	falseCtor := BoolSum.Ctors[0]

	m := &ast.Match{
		Args: []ast.Expr{&ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[1]}},
		Patterns: []ast.PatternRow{
			{
				Patterns: []ast.Pattern{ast.PatConstruct{Sum: BoolSum, Cons: falseCtor}},
				Body:     intLit(0),
			},
		},
		Refutable: false,
	}

	rep := diagnostics.NewReporter()
	lowerMatch(m, rep)

	require.True(t, rep.HasErrors(), "a total match missing a constructor row and otherwise must be diagnosed")
	found := false
	for _, d := range rep.Errors() {
		if d.Code == diagnostics.ErrNonExhaustiveMatch {
			found = true
		}
	}
	require.True(t, found, "expected ErrNonExhaustiveMatch among reported errors, got %v", rep.Errors())
}

// TestLowerMatchRefutableMissingOtherwiseFallsThroughWithoutDiagnostic
// checks that the identity/otherwise fallback for a refutable match
// with an uncovered constructor and no otherwise is unaffected by the
// non-exhaustive diagnostic added for total matches. A second
// scrutinee is carried through as the identity value so the uncovered
// branch has something left in args to fall through to.
func TestLowerMatchRefutableMissingOtherwiseFallsThroughWithoutDiagnostic(t *testing.T) {
	falseCtor := BoolSum.Ctors[0]

	m := &ast.Match{
		Args: []ast.Expr{&ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[1]}, intLit(99)},
		Patterns: []ast.PatternRow{
			{
				Patterns: []ast.Pattern{ast.PatConstruct{Sum: BoolSum, Cons: falseCtor}, ast.PatWildcard{}},
				Body:     intLit(0),
			},
		},
		Refutable: true,
	}

	rep := diagnostics.NewReporter()
	tree := lowerMatch(m, rep)
	require.False(t, rep.HasErrors(), "a refutable match missing a row must not be diagnosed as non-exhaustive")

	resolveRefs(tree, nil, rep)
	require.False(t, rep.HasErrors())

	result := evaluator.New().Eval(tree)
	i, ok := result.(*heap.Integer)
	require.True(t, ok, "expected the second scrutinee to fall through unchanged, got %T", result)
	require.Equal(t, int64(99), i.Value.Int64())
}

// TestLowerMatchConstructorDispatchSelectsOneBranch verifies that
// matching against a constructed Sum only evaluates the branch for
// the actual constructor reached, not every branch (spec.md §4.1.5).
func TestLowerMatchConstructorDispatchSelectsOneBranch(t *testing.T) {
	falseCtor := BoolSum.Ctors[0]
	trueCtor := BoolSum.Ctors[1]

	var falseFired, trueFired bool
	m := &ast.Match{
		Args: []ast.Expr{&ast.Construct{Sum: BoolSum, Cons: trueCtor}},
		Patterns: []ast.PatternRow{
			{
				Patterns: []ast.Pattern{ast.PatConstruct{Sum: BoolSum, Cons: falseCtor}},
				Body:     sideEffectPrim(&falseFired),
			},
			{
				Patterns: []ast.Pattern{ast.PatConstruct{Sum: BoolSum, Cons: trueCtor}},
				Body:     sideEffectPrim(&trueFired),
			},
		},
		Refutable: true,
	}
	rep := diagnostics.NewReporter()
	tree := lowerMatch(m, rep)
	require.False(t, rep.HasErrors())

	ev := evaluator.New()
	ev.Eval(tree)

	require.True(t, trueFired)
	require.False(t, falseFired)
}
