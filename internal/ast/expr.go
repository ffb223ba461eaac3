// Package ast defines the expression tree the parser produces (AST)
// and the flattened form the resolver emits (IR) — spec.md §3. Both
// stages share the same Expr variant set; DefBinding only ever
// appears in IR, and VarRef only carries a resolved (depth, offset)
// once the resolver has run.
package ast

import (
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/heap"
)

type Location = diagnostics.Location

// Expr is the tagged variant every AST/IR node implements. Each
// variant carries an optional TypeVar handle (owned by the type
// checker, spec.md §6) and a Location for diagnostics.
type Expr interface {
	Loc() Location
	TypeVar() *TypeVar
	SetTypeVar(*TypeVar)
	exprTag()
}

// Meta is embedded by every node to carry the two fields common to
// all variants.
type Meta struct {
	Location Location
	TV       *TypeVar
}

func (m Meta) Loc() Location        { return m.Location }
func (m Meta) TypeVar() *TypeVar     { return m.TV }
func (m *Meta) SetTypeVar(tv *TypeVar) { m.TV = tv }

// VarRef is a variable reference. Before resolution it carries only
// Name; after resolution Depth/Offset address a binding frame slot
// (spec.md §3, §4.1.3). Resolved is false until the resolver commits
// a lexical address.
type VarRef struct {
	Meta
	Name     string
	Depth    int
	Offset   int
	Resolved bool
}

func (*VarRef) exprTag() {}

// App is function application.
type App struct {
	Meta
	Fn  Expr
	Arg Expr
}

func (*App) exprTag() {}

// Lambda is a single-argument lambda. Curried multi-argument lambdas
// are represented as nested Lambdas, so "arity" is the count of
// directly nested Lambda nodes (spec.md §4.2.2).
type Lambda struct {
	Meta
	Param  string
	Body   Expr
	FnName string // non-empty when this lambda is one level of a named DefBinding.fun entry
}

func (*Lambda) exprTag() {}

// LiteralKind distinguishes the Go-native payload a Literal carries.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitInteger
	LitDouble
)

// Literal wraps a precomputed heap.Value so that evaluating a Literal
// node is a synchronous, allocation-free Promise fulfillment
// (spec.md §4.2.2 "Literal: fulfill with the literal value").
type Literal struct {
	Meta
	Kind  LiteralKind
	Value heap.Value
}

func (*Literal) exprTag() {}

// PrimFn is the shape of a primitive-function callback (spec.md §4.4):
// invoked with already-forced argument values and a receiver
// continuation; it must call the receiver exactly once, synchronously
// or later.
type PrimFn func(data interface{}, args []heap.Value, receiver heap.Receiver)

// Prim is a reference to a registered primitive, filled in by the
// resolver from the primitive registry (spec.md §6).
type Prim struct {
	Meta
	Name  string
	NArgs int
	Fn    PrimFn
	Data  interface{}
}

func (*Prim) exprTag() {}

// ImportKind classifies how a name was brought into a file's scope,
// used by reference resolution to know which symbol table to prefer
// (spec.md §4.1.1).
type ImportKind int

const (
	ImportMixed ImportKind = iota
	ImportDefsOnly
	ImportTypesOnly
	ImportTopicsOnly
	ImportWildcard
)

// DefMap is a (possibly nested) group of local definitions plus a
// body, with optional attached imports at the top level of a file
// (spec.md §3, §4.1).
type DefMap struct {
	Meta
	Defs    []Def
	Body    Expr
	Imports []Import
}

func (*DefMap) exprTag() {}

// Def is one surface-syntax definition inside a DefMap, before
// stratification into DefBinding groups.
type Def struct {
	Name     string
	Value    Expr
	Location Location
}

// Import qualifies a name (or a wildcard) from another package.
type Import struct {
	Kind        ImportKind
	Package     string
	Local       string // local name (possibly aliased)
	Source      string // name in the source package, "" for wildcard
	Location    Location
}

// Match is a pattern match over one or more scrutinees, before
// lowering (spec.md §4.1.5).
type Match struct {
	Meta
	Args      []Expr
	Patterns  []PatternRow
	Otherwise Expr
	Refutable bool
}

func (*Match) exprTag() {}

// Ascribe attaches a declared type to body; evaluation simply forwards
// to body (spec.md §4.2.2).
type Ascribe struct {
	Meta
	Body Expr
	Type Expr // type expression, opaque to the resolver/evaluator
}

func (*Ascribe) exprTag() {}

// Construct is a curried projection function: applying it (via nested
// App, one per field) to Cons.Arity() arguments yields a Record of
// Sum's Cons constructor holding them (spec.md §4.2.2). A zero-arity
// constructor's Construct node is itself already the finished value.
type Construct struct {
	Meta
	Sum  *Sum
	Cons *Constructor
}

func (*Construct) exprTag() {}

// Destruct evaluates Arg and dispatches to the matching Cases entry by
// constructor index (spec.md §4.2.2).
type Destruct struct {
	Meta
	Sum   *Sum
	Arg   Expr
	Cases []Expr // one single-parameter lambda per constructor, in declaration order, applied to the whole scrutinee record
}

func (*Destruct) exprTag() {}

// Get is a one-argument projection function: applying it (via App) to
// a Record built from Sum/Cons yields that record's field Index
// (spec.md §4.1.5, §4.2.2). Pattern lowering emits App(Get{...}, arg)
// nodes; the JSON decoder also accepts a `get` expression.
type Get struct {
	Meta
	Sum   *Sum
	Cons  *Constructor
	Index int
}

func (*Get) exprTag() {}

// DefBinding combines one stratification level of mutually recursive
// definitions into a single new frame and the body evaluated under
// it. DefBinding only appears in the IR (spec.md §3, §4.1.4, §4.2.2).
//
// Defs, IsFun, SCC and Order are all parallel, one entry per frame
// slot, aligned to the (depth, offset) addressing VarRef.Offset
// assumes — Order is not merely diagnostic, it IS the slot layout.
type DefBinding struct {
	Meta
	// Defs holds each slot's defining expression.
	Defs []Expr
	// IsFun[i] reports whether Defs[i] is a lambda: fun slots are
	// fulfilled immediately as closures over the new frame (this is
	// what enables recursion); val slots are spawned as lazy thunks.
	IsFun []bool
	// SCC[i] identifies the strongly connected component Defs[i]
	// belongs to; lambdas sharing an SCC index share a generalization
	// scope. Non-lambda slots are always singleton SCCs.
	SCC  []int
	Body Expr
	// Order records each slot's surface-syntax name, in slot order.
	Order []string
}

func (*DefBinding) exprTag() {}
