// Package heap implements the evaluator's arena: values, promises,
// binding frames and receivers (spec.md §3 "Heap" and §4.2.1 "Runtime
// entities"). It intentionally has no dependency on the ast package:
// a Closure's body is stored as an opaque interface{} (boxing an
// ast.Expr) so that the ast package can in turn depend on heap for the
// types a Literal or Prim node carries, without an import cycle.
package heap

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/funvibe/wakecore/internal/diagnostics"
)

// Value is the tagged variant of semantic results (spec.md §3).
// Values are immutable once fulfilled.
type Value interface {
	valueTag() string
}

type String struct {
	Value string
}

func (String) valueTag() string { return "String" }

type Integer struct {
	Value *big.Int
}

func (Integer) valueTag() string { return "Integer" }

func NewInteger(i int64) *Integer {
	return &Integer{Value: big.NewInt(i)}
}

type Double struct {
	Value float64
}

func (Double) valueTag() string { return "Double" }

// RegExp holds both the compiled matcher and its source pattern: deep
// hashing hashes the source text, not the compiled form (SPEC_FULL.md
// "Supplemented features").
type RegExp struct {
	Source  string
	Pattern *regexp.Regexp
}

func (RegExp) valueTag() string { return "RegExp" }

// Closure is a (possibly partially applied) lambda value. Body is an
// ast.Expr boxed as interface{}; Captured is the frame the lambda
// closed over. The evaluator applies a Closure one argument at a time
// (a multi-argument function is a chain of nested single-parameter
// lambdas), and leaves Arity and Applied at zero.
type Closure struct {
	Name     string
	Body     interface{}
	Captured *Frame
	Arity    int
	Applied  int
}

func (Closure) valueTag() string { return "Closure" }

// Record is a constructed value of some Sum's constructor. Fields are
// Promises (possibly still unevaluated), matching spec.md's data model
// for lazily-constructed values. SumName/CtorIndex/CtorName identify
// the constructor without heap depending on ast.Sum/ast.Constructor.
type Record struct {
	SumName  string
	CtorName string
	CtorIndex int
	Fields   []*Promise
}

func (Record) valueTag() string { return "Record" }

// StackFrame identifies a single call-site frame in a reconstructed
// stack trace (spec.md §4.2.5). It is distinct from Frame (the
// runtime Binding Frame defined in frame.go): a StackFrame is a
// diagnostic snapshot, not a live promise vector.
type StackFrame struct {
	Name     string
	Location diagnostics.Location
}

// Cause is one link in an Exception's chain of causes (spec.md §3
// "Exception{causes}").
type Cause struct {
	Reason string
	Trace  []StackFrame
}

// Exception is a first-class runtime fault value (spec.md §7:
// "Runtime exceptions... are first-class values of tag Exception, not
// process faults").
type Exception struct {
	Causes []Cause
}

func (Exception) valueTag() string { return "Exception" }

func NewException(reason string, trace []StackFrame) *Exception {
	return &Exception{Causes: []Cause{{Reason: reason, Trace: CoalesceTrace(trace)}}}
}

// CaptureTrace walks a frame's Invoker chain, innermost first, turning
// each pushed CallSite into a StackFrame (spec.md §4.2.5).
func CaptureTrace(frame *Frame) []StackFrame {
	var trace []StackFrame
	for f := frame; f != nil; f = f.Invoker {
		if f.Site.Name == "" && f.Site.File == "" {
			continue
		}
		trace = append(trace, StackFrame{
			Name:     f.Site.Name,
			Location: diagnostics.Location{File: f.Site.File, Line: f.Site.Line, Column: f.Site.Column},
		})
	}
	return trace
}

// CoalesceTrace collapses adjacent identical frames (spec.md §4.2.5:
// "adjacent identical frames collapse in rendered traces"), the
// common case when a recursive call re-enters the same call site many
// times in a row.
func CoalesceTrace(trace []StackFrame) []StackFrame {
	if len(trace) == 0 {
		return trace
	}
	out := make([]StackFrame, 0, len(trace))
	out = append(out, trace[0])
	for _, sf := range trace[1:] {
		if sf == out[len(out)-1] {
			continue
		}
		out = append(out, sf)
	}
	return out
}

// Chain prepends this exception's causes to form a longer chain, used
// when a primitive wraps a lower-level failure.
func (e *Exception) Chain(reason string, trace []StackFrame) *Exception {
	causes := make([]Cause, 0, len(e.Causes)+1)
	causes = append(causes, Cause{Reason: reason, Trace: trace})
	causes = append(causes, e.Causes...)
	return &Exception{Causes: causes}
}

func (e *Exception) Error() string {
	if len(e.Causes) == 0 {
		return "exception"
	}
	return e.Causes[0].Reason
}

// Render renders the full cause chain with each cause's coalesced
// stack trace, innermost frame first (spec.md §4.2.5).
func (e *Exception) Render() string {
	var b strings.Builder
	for i, c := range e.Causes {
		if i > 0 {
			b.WriteString("caused by: ")
		}
		b.WriteString(c.Reason)
		b.WriteByte('\n')
		for _, sf := range c.Trace {
			fmt.Fprintf(&b, "\tat %s (%s)\n", sf.Name, sf.Location)
		}
	}
	return b.String()
}

func IsException(v Value) (*Exception, bool) {
	ex, ok := v.(*Exception)
	return ex, ok
}

// NewStringList builds a List of Strings matching resolver.ListSum's
// encoding (Nil = index 0, Cons = index 1, fields [head, tail]) —
// shared by the prim registry's tokenize primitives and internal/
// jobexec's JobSpec encoding so both agree with pattern matches
// written against the `List` a `publish` topic also produces.
func NewStringList(items []string) Value {
	var tail Value = &Record{SumName: "List", CtorName: "Nil", CtorIndex: 0}
	for i := len(items) - 1; i >= 0; i-- {
		head := NewFulfilledPromise(&String{Value: items[i]})
		rest := NewFulfilledPromise(tail)
		tail = &Record{SumName: "List", CtorName: "Cons", CtorIndex: 1, Fields: []*Promise{head, rest}}
	}
	return tail
}

func (v *String) String() string  { return v.Value }
func (v *Integer) String() string { return v.Value.String() }
func (v *Double) String() string  { return fmt.Sprintf("%g", v.Value) }
