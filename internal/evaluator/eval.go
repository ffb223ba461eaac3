package evaluator

import (
	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/heap"
)

// Evaluator owns the work queue and the bookkeeping a single run of
// the reduction rules needs. An Evaluator is not safe for concurrent
// use from more than one goroutine directly; the only sanctioned
// cross-goroutine entry point is Defer, used by asynchronous
// primitives (spec.md §4.4, §5).
type Evaluator struct {
	q *Queue
	// pending holds the "start evaluating me" closure for a lazily
	// spawned val-slot promise that has not yet been forced. Deleting
	// the entry on first force is what gives a shared thunk exactly-
	// once evaluation despite arbitrarily many waiters (spec.md §3
	// "Promise" + §4.2.1 demand-driven evaluation).
	pending map[*heap.Promise]func()
}

func New() *Evaluator {
	return &Evaluator{q: newQueue(), pending: make(map[*heap.Promise]func())}
}

// Defer lets an externally-driven primitive (e.g. a job executor
// callback arriving on its own goroutine) hand a completion back to
// this Evaluator's single worker (spec.md §4.4).
func (e *Evaluator) Defer(fn func()) {
	e.q.External(fn)
}

// Eval forces expr to a final value, running the worker loop until
// done (spec.md §4.2.1). expr is assumed already resolved (see
// internal/resolver) with no enclosing lexical frame.
func (e *Evaluator) Eval(expr ast.Expr) heap.Value {
	out := heap.NewPromise()
	e.reduce(expr, nil, out)
	e.q.runUntil(out.Fulfilled)
	v, _ := out.Value()
	return v
}

// registerLazy records expr/frame as the not-yet-started computation
// for promise p, without scheduling it — p is only ever forced on
// first demand (spec.md §4.2.1).
func (e *Evaluator) registerLazy(p *heap.Promise, expr ast.Expr, frame *heap.Frame) {
	e.pending[p] = func() { e.reduce(expr, frame, p) }
}

// forcePromise ensures p's pending computation (if any) has been
// scheduled, then subscribes k to its eventual value. Calling this
// more than once on the same promise is exactly how shared structure
// gets memoized: the second and later callers just subscribe, the
// first pays for (and schedules) the computation (spec.md §3 "shared
// structure" / "computation memoization").
func (e *Evaluator) forcePromise(p *heap.Promise, k func(heap.Value)) {
	if start, ok := e.pending[p]; ok {
		delete(e.pending, p)
		e.q.push(start)
	}
	p.OnFulfill(heap.ReceiverFunc(k))
}

// Force is forcePromise's exported form, for consumers outside this
// package (internal/hash) that need to force an already-registered
// promise (e.g. a Record field) while still honoring the single-
// worker ownership rule: the caller must drive this Evaluator's queue
// to completion itself (see RunUntilDone) rather than forcing from a
// second goroutine.
func (e *Evaluator) Force(p *heap.Promise, k func(heap.Value)) {
	e.forcePromise(p, k)
}

// RunUntilDone drains the work queue until done reports true. Used by
// internal/hash to finish forcing a value graph it is hashing.
func (e *Evaluator) RunUntilDone(done func() bool) {
	e.q.runUntil(done)
}

// forceExprValue reduces expr in frame to a promise and subscribes k,
// for call sites (Destruct's scrutinee, a primitive's arguments) that
// need a value rather than a raw promise and have no pre-existing
// slot to force.
func (e *Evaluator) forceExprValue(expr ast.Expr, frame *heap.Frame, k func(heap.Value)) {
	out := heap.NewPromise()
	e.reduce(expr, frame, out)
	out.OnFulfill(heap.ReceiverFunc(k))
}

// reduce is the single entry point for every IR reduction rule in
// spec.md §4.2.2. It never blocks: it either fulfills out synchronously
// (Literal, Lambda, a saturated Construct/Get/Prim reached without
// forcing) or arranges — via forcePromise/Defer/the work queue — for
// out to be fulfilled later.
func (e *Evaluator) reduce(expr ast.Expr, frame *heap.Frame, out *heap.Promise) {
	switch n := expr.(type) {
	case *ast.VarRef:
		p := frame.At(n.Depth, n.Offset)
		e.forcePromise(p, func(v heap.Value) { out.Fulfill(v) })

	case *ast.Literal:
		out.Fulfill(n.Value)

	case *ast.Lambda:
		out.Fulfill(&heap.Closure{Name: n.FnName, Body: n, Captured: frame})

	case *ast.Ascribe:
		e.reduce(n.Body, frame, out)

	case *ast.Construct:
		if n.Cons.Arity() == 0 {
			out.Fulfill(&heap.Record{SumName: n.Sum.Name, CtorName: n.Cons.Name, CtorIndex: n.Cons.Index})
			return
		}
		out.Fulfill(&heap.Closure{Body: &partialConstruct{sum: n.Sum, cons: n.Cons}, Captured: frame})

	case *ast.Get:
		out.Fulfill(&heap.Closure{Body: &partialGet{sum: n.Sum, cons: n.Cons, index: n.Index}, Captured: frame})

	case *ast.Prim:
		if n.NArgs == 0 {
			n.Fn(n.Data, nil, heap.ReceiverFunc(func(v heap.Value) { out.Fulfill(v) }))
			return
		}
		out.Fulfill(&heap.Closure{Body: &partialPrim{prim: n}, Captured: frame})

	case *ast.App:
		e.reduceApp(n, frame, out)

	case *ast.Destruct:
		e.reduceDestruct(n, frame, out)

	case *ast.DefBinding:
		e.reduceDefBinding(n, frame, out)

	default:
		out.Fulfill(heap.NewException("evaluator: unresolved or unlowered IR node reached the evaluator", heap.CaptureTrace(frame)))
	}
}

func (e *Evaluator) reduceApp(n *ast.App, frame *heap.Frame, out *heap.Promise) {
	e.forceExprValue(n.Fn, frame, func(fnVal heap.Value) {
		if ex, ok := heap.IsException(fnVal); ok {
			out.Fulfill(ex)
			return
		}
		closure, ok := fnVal.(*heap.Closure)
		if !ok {
			out.Fulfill(heap.NewException("applied a non-function value", heap.CaptureTrace(frame)))
			return
		}
		e.applyClosure(closure, n.Arg, frame, out)
	})
}

// applyClosure applies closure to the single argument expression
// argExpr, lazily evaluated in callerFrame, dispatching on the boxed
// Body to decide whether this is a user lambda call, one more step of
// a curried constructor/projection, or a primitive argument.
func (e *Evaluator) applyClosure(closure *heap.Closure, argExpr ast.Expr, callerFrame *heap.Frame, out *heap.Promise) {
	switch body := closure.Body.(type) {
	case *ast.Lambda:
		argPromise := heap.NewPromise()
		e.registerLazy(argPromise, argExpr, callerFrame)
		loc := body.Loc()
		newFrame := &heap.Frame{
			Promises: []*heap.Promise{argPromise},
			Parent:   closure.Captured,
			Invoker:  callerFrame,
			Site:     heap.CallSite{Name: closure.Name, File: loc.File, Line: loc.Line, Column: loc.Column},
		}
		e.reduce(body.Body, newFrame, out)

	case *partialConstruct:
		argPromise := heap.NewPromise()
		e.registerLazy(argPromise, argExpr, callerFrame)
		collected := append(append([]*heap.Promise{}, body.collected...), argPromise)
		if len(collected) == body.cons.Arity() {
			out.Fulfill(&heap.Record{SumName: body.sum.Name, CtorName: body.cons.Name, CtorIndex: body.cons.Index, Fields: collected})
			return
		}
		out.Fulfill(&heap.Closure{Body: &partialConstruct{sum: body.sum, cons: body.cons, collected: collected}, Captured: closure.Captured})

	case *partialGet:
		e.forceExprValue(argExpr, callerFrame, func(v heap.Value) {
			if ex, ok := heap.IsException(v); ok {
				out.Fulfill(ex)
				return
			}
			rec, ok := v.(*heap.Record)
			if !ok || rec.SumName != body.sum.Name {
				out.Fulfill(heap.NewException("Get applied to a value of the wrong shape", heap.CaptureTrace(callerFrame)))
				return
			}
			if body.index < 0 || body.index >= len(rec.Fields) {
				out.Fulfill(heap.NewException("Get index out of bounds for constructor", heap.CaptureTrace(callerFrame)))
				return
			}
			e.forcePromise(rec.Fields[body.index], func(fv heap.Value) { out.Fulfill(fv) })
		})

	case *partialPrim:
		e.forceExprValue(argExpr, callerFrame, func(v heap.Value) {
			collected := append(append([]heap.Value{}, body.collected...), v)
			if len(collected) == body.prim.NArgs {
				body.prim.Fn(body.prim.Data, collected, heap.ReceiverFunc(func(rv heap.Value) { out.Fulfill(rv) }))
				return
			}
			out.Fulfill(&heap.Closure{Body: &partialPrim{prim: body.prim, collected: collected}, Captured: closure.Captured})
		})

	default:
		out.Fulfill(heap.NewException("applied a non-function value", heap.CaptureTrace(callerFrame)))
	}
}

func (e *Evaluator) reduceDestruct(n *ast.Destruct, frame *heap.Frame, out *heap.Promise) {
	e.forceExprValue(n.Arg, frame, func(v heap.Value) {
		if ex, ok := heap.IsException(v); ok {
			out.Fulfill(ex)
			return
		}
		rec, ok := v.(*heap.Record)
		if !ok || rec.CtorIndex >= len(n.Cases) {
			out.Fulfill(heap.NewException("Destruct on a value of the wrong shape", heap.CaptureTrace(frame)))
			return
		}
		e.forceExprValue(n.Cases[rec.CtorIndex], frame, func(cv heap.Value) {
			closure, ok := cv.(*heap.Closure)
			if !ok {
				out.Fulfill(heap.NewException("Destruct case is not a function", heap.CaptureTrace(frame)))
				return
			}
			lam, ok := closure.Body.(*ast.Lambda)
			if !ok {
				out.Fulfill(heap.NewException("Destruct case is not a lambda", heap.CaptureTrace(frame)))
				return
			}
			argPromise := heap.NewPromise()
			argPromise.Fulfill(v)
			newFrame := &heap.Frame{Promises: []*heap.Promise{argPromise}, Parent: closure.Captured, Invoker: frame}
			e.reduce(lam.Body, newFrame, out)
		})
	})
}

func (e *Evaluator) reduceDefBinding(n *ast.DefBinding, frame *heap.Frame, out *heap.Promise) {
	loc := n.Loc()
	newFrame := heap.NewFrame(frame, frame, len(n.Order), heap.CallSite{Name: "let", File: loc.File, Line: loc.Line, Column: loc.Column})
	for i, d := range n.Defs {
		p := newFrame.Promises[i]
		if n.IsFun[i] {
			lam, ok := d.(*ast.Lambda)
			if !ok {
				p.Fulfill(heap.NewException("def-binding fun slot is not a lambda", heap.CaptureTrace(frame)))
				continue
			}
			p.Fulfill(&heap.Closure{Name: n.Order[i], Body: lam, Captured: newFrame})
			continue
		}
		e.registerLazy(p, d, newFrame)
	}
	e.reduce(n.Body, newFrame, out)
}
