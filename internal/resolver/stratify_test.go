package resolver

import (
	"testing"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/stretchr/testify/require"
)

func varRef(name string) *ast.VarRef { return &ast.VarRef{Name: name} }

func lambda(param string, body ast.Expr) *ast.Lambda {
	return &ast.Lambda{Param: param, Body: body}
}

// TestStratifyMutualRecursionSharesOneSCC checks spec.md §8's "mutual
// recursion of lambdas in one SCC": two lambdas that call each other
// should land in a single DefBinding with a shared SCC index, not be
// split into separate levels the way a value dependency would be.
func TestStratifyMutualRecursionSharesOneSCC(t *testing.T) {
	defs := []ast.Def{
		{Name: "isEven", Value: lambda("n", varRef("isOdd"))},
		{Name: "isOdd", Value: lambda("n", varRef("isEven"))},
	}
	rep := diagnostics.NewReporter()
	ir := stratify(defs, varRef("isEven"), rep)
	require.False(t, rep.HasErrors())

	db, ok := ir.(*ast.DefBinding)
	require.True(t, ok, "expected a single DefBinding wrapping the body")
	require.Len(t, db.Defs, 2)
	require.True(t, db.IsFun[0])
	require.True(t, db.IsFun[1])
	require.Equal(t, db.SCC[0], db.SCC[1], "mutually recursive lambdas must share one SCC")
}

// TestStratifyIllegalValueRecursionReportsBothCycleMembers verifies
// spec.md §8's "illegal value recursion produces diagnostics on both
// cycle edges": a<-b, b<-a with neither side a lambda is a positive-
// weight cycle through non-lambda (value) edges, which stratify must
// reject rather than silently accept.
func TestStratifyIllegalValueRecursionReportsBothCycleMembers(t *testing.T) {
	defs := []ast.Def{
		{Name: "a", Value: varRef("b"), Location: ast.Location{Line: 1}},
		{Name: "b", Value: varRef("a"), Location: ast.Location{Line: 2}},
	}
	rep := diagnostics.NewReporter()
	stratify(defs, varRef("a"), rep)

	errs := rep.Errors()
	require.Len(t, errs, 2, "both cycle members must each be reported")
	for _, e := range errs {
		require.Equal(t, diagnostics.ErrIllegalValueRecursion, e.Code)
	}
}

// TestStratifyRetriesAfterRemovingIllegalCycle ensures an illegal
// value cycle doesn't abort stratification of the rest of the
// definition set (SPEC_FULL.md "Bellman-Ford retry-on-cycle").
func TestStratifyRetriesAfterRemovingIllegalCycle(t *testing.T) {
	defs := []ast.Def{
		{Name: "a", Value: varRef("b"), Location: ast.Location{Line: 1}},
		{Name: "b", Value: varRef("a"), Location: ast.Location{Line: 2}},
		{Name: "ok", Value: &ast.Literal{Kind: ast.LitInteger}},
	}
	rep := diagnostics.NewReporter()
	ir := stratify(defs, varRef("ok"), rep)

	require.Len(t, rep.Errors(), 2)
	db, ok := ir.(*ast.DefBinding)
	require.True(t, ok)
	require.Equal(t, []string{"ok"}, db.Order, "the acyclic def must still stratify despite the illegal cycle")
}

// TestStratifyValueDependencyOrdersByLevel checks that a plain value
// dependency (not mutual lambda recursion) nests the dependency in an
// outer DefBinding, one level per non-lambda hop (spec.md §4.1.4).
func TestStratifyValueDependencyOrdersByLevel(t *testing.T) {
	defs := []ast.Def{
		{Name: "x", Value: &ast.Literal{Kind: ast.LitInteger}},
		{Name: "y", Value: varRef("x")},
	}
	rep := diagnostics.NewReporter()
	ir := stratify(defs, varRef("y"), rep)
	require.False(t, rep.HasErrors())

	outer, ok := ir.(*ast.DefBinding)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, outer.Order)

	inner, ok := outer.Body.(*ast.DefBinding)
	require.True(t, ok)
	require.Equal(t, []string{"y"}, inner.Order)
}
