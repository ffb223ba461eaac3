package ast

// Sum is a nominal algebraic type with a fixed, ordered list of
// constructors (spec.md §3 "Sum / Constructor / Pattern Tree").
type Sum struct {
	Name  string
	Ctors []*Constructor
}

// Constructor belongs to exactly one Sum and has a declared arity.
// ArgTypes holds the constructor's argument ASTs/type expressions, as
// spec.md §3 requires ("each constructor has argument ASTs") — the
// resolver only needs their count (arity); the type checker consults
// their content.
type Constructor struct {
	Name     string
	Sum      *Sum
	Index    int
	ArgTypes []Expr
}

func (c *Constructor) Arity() int {
	return len(c.ArgTypes)
}

// NewSum builds a Sum and back-links each constructor's Sum/Index
// fields, the shape every Construct/Destruct/Get node and every
// pattern-lowering step assumes.
func NewSum(name string, ctors ...*Constructor) *Sum {
	s := &Sum{Name: name, Ctors: ctors}
	for i, c := range ctors {
		c.Sum = s
		c.Index = i
	}
	return s
}
