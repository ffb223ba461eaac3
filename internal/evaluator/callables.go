package evaluator

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/heap"
)

// partialConstruct, partialGet and partialPrim are boxed into
// heap.Closure.Body (an interface{} — spec.md's package-layering
// design keeps heap ignorant of both ast and evaluator) alongside the
// ordinary *ast.Lambda case, so App's reduction rule can treat a user
// lambda, a not-yet-saturated data constructor, a field projection and
// a primitive call through one uniform "apply one more argument to a
// Closure" dispatch (spec.md §4.2.2 Construct/Destruct/Get, §4.4
// primitive protocol).
type partialConstruct struct {
	sum       *ast.Sum
	cons      *ast.Constructor
	collected []*heap.Promise
}

type partialGet struct {
	sum   *ast.Sum
	cons  *ast.Constructor
	index int
}

type partialPrim struct {
	prim      *ast.Prim
	collected []heap.Value
}
