package resolver

import (
	"testing"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/stretchr/testify/require"
)

// TestSharedThunkIsEvaluatedExactlyOnce drives a DefBinding val slot
// referenced twice through the real resolveRefs addressing pass, then
// evaluates it, checking spec.md §3's "computation memoization": a
// single zero-arg side-effecting Prim behind one val slot must fire
// exactly once no matter how many VarRefs end up pointing at its
// promise.
func TestSharedThunkIsEvaluatedExactlyOnce(t *testing.T) {
	var evaluations int
	counter := &ast.Prim{Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		evaluations++
		recv.Receive(heap.NewInteger(42))
	}}
	combine := &ast.Prim{NArgs: 2, Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		recv.Receive(args[0])
	}}

	body := &ast.App{
		Fn:  &ast.App{Fn: combine, Arg: &ast.VarRef{Name: "x"}},
		Arg: &ast.VarRef{Name: "x"},
	}
	db := &ast.DefBinding{
		Defs:  []ast.Expr{counter},
		IsFun: []bool{false},
		SCC:   []int{0},
		Order: []string{"x"},
		Body:  body,
	}

	rep := diagnostics.NewReporter()
	resolveRefs(db, nil, rep)
	require.False(t, rep.HasErrors())

	result := evaluator.New().Eval(db)
	i, ok := result.(*heap.Integer)
	require.True(t, ok)
	require.Equal(t, int64(42), i.Value.Int64())
	require.Equal(t, 1, evaluations, "a shared val slot must only be computed once")
}

// natSum is a minimal Peano-numeral Sum (Zero/Succ) used to drive a
// real mutual-recursion evaluation (isEven/isOdd) through stratify's
// SCC grouping and resolveRefs' lexical addressing, matching
// spec.md §8's "mutual recursion of lambdas" testable property.
var natSum = ast.NewSum("Nat",
	&ast.Constructor{Name: "Zero"},
	&ast.Constructor{Name: "Succ", ArgTypes: []ast.Expr{nil}},
)

func natLiteral(n int) ast.Expr {
	var e ast.Expr = &ast.Construct{Sum: natSum, Cons: natSum.Ctors[0]}
	for i := 0; i < n; i++ {
		e = &ast.App{Fn: &ast.Construct{Sum: natSum, Cons: natSum.Ctors[1]}, Arg: e}
	}
	return e
}

// TestMutualRecursionEvaluatesThroughRealPipeline builds isEven/isOdd
// over natSum by hand (in patterns.go's own Destruct/Get/Lambda
// output shape), stratifies and resolves it for real, then evaluates
// isEven(4).
func TestMutualRecursionEvaluatesThroughRealPipeline(t *testing.T) {
	// isEven = \n -> destruct(n) { Zero -> True; Succ -> \m -> isOdd(m) }
	// isOdd  = \n -> destruct(n) { Zero -> False; Succ -> \m -> isEven(m) }
	succGet := &ast.Get{Sum: natSum, Cons: natSum.Ctors[1], Index: 0}

	isEvenBody := &ast.Destruct{
		Sum: natSum,
		Arg: &ast.VarRef{Name: "n"},
		Cases: []ast.Expr{
			&ast.Lambda{Param: "$_z", Body: &ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[1]}},
			&ast.Lambda{Param: "$_s", Body: &ast.App{
				Fn:  &ast.VarRef{Name: "isOdd"},
				Arg: &ast.App{Fn: succGet, Arg: &ast.VarRef{Name: "$_s"}},
			}},
		},
	}
	isOddBody := &ast.Destruct{
		Sum: natSum,
		Arg: &ast.VarRef{Name: "n"},
		Cases: []ast.Expr{
			&ast.Lambda{Param: "$_z", Body: &ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[0]}},
			&ast.Lambda{Param: "$_s", Body: &ast.App{
				Fn:  &ast.VarRef{Name: "isEven"},
				Arg: &ast.App{Fn: succGet, Arg: &ast.VarRef{Name: "$_s"}},
			}},
		},
	}

	defs := []ast.Def{
		{Name: "isEven", Value: &ast.Lambda{Param: "n", Body: isEvenBody}},
		{Name: "isOdd", Value: &ast.Lambda{Param: "n", Body: isOddBody}},
	}

	entry := &ast.App{Fn: &ast.VarRef{Name: "isEven"}, Arg: natLiteral(4)}

	rep := diagnostics.NewReporter()
	ir := stratify(defs, entry, rep)
	require.False(t, rep.HasErrors())

	resolveRefs(ir, nil, rep)
	require.False(t, rep.HasErrors())

	result := evaluator.New().Eval(ir)
	rec, ok := result.(*heap.Record)
	require.True(t, ok)
	require.Equal(t, "Bool", rec.SumName)
	require.Equal(t, "True", rec.CtorName, "isEven(4) must be True")
}

func TestMutualRecursionOddCase(t *testing.T) {
	succGet := &ast.Get{Sum: natSum, Cons: natSum.Ctors[1], Index: 0}

	isEvenBody := &ast.Destruct{
		Sum: natSum,
		Arg: &ast.VarRef{Name: "n"},
		Cases: []ast.Expr{
			&ast.Lambda{Param: "$_z", Body: &ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[1]}},
			&ast.Lambda{Param: "$_s", Body: &ast.App{
				Fn:  &ast.VarRef{Name: "isOdd"},
				Arg: &ast.App{Fn: succGet, Arg: &ast.VarRef{Name: "$_s"}},
			}},
		},
	}
	isOddBody := &ast.Destruct{
		Sum: natSum,
		Arg: &ast.VarRef{Name: "n"},
		Cases: []ast.Expr{
			&ast.Lambda{Param: "$_z", Body: &ast.Construct{Sum: BoolSum, Cons: BoolSum.Ctors[0]}},
			&ast.Lambda{Param: "$_s", Body: &ast.App{
				Fn:  &ast.VarRef{Name: "isEven"},
				Arg: &ast.App{Fn: succGet, Arg: &ast.VarRef{Name: "$_s"}},
			}},
		},
	}
	defs := []ast.Def{
		{Name: "isEven", Value: &ast.Lambda{Param: "n", Body: isEvenBody}},
		{Name: "isOdd", Value: &ast.Lambda{Param: "n", Body: isOddBody}},
	}
	entry := &ast.App{Fn: &ast.VarRef{Name: "isOdd"}, Arg: natLiteral(3)}

	rep := diagnostics.NewReporter()
	ir := stratify(defs, entry, rep)
	require.False(t, rep.HasErrors())
	resolveRefs(ir, nil, rep)
	require.False(t, rep.HasErrors())

	result := evaluator.New().Eval(ir)
	rec := result.(*heap.Record)
	require.Equal(t, "True", rec.CtorName, "isOdd(3) must be True")
}
