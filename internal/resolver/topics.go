package resolver

import "github.com/funvibe/wakecore/internal/ast"

// ListSum is the built-in two-constructor list every topic's
// accumulated publishes and every list-producing primitive build on;
// Nil is declared before Cons so constructor index 0 is always the
// empty list.
var ListSum = ast.NewSum("List",
	&ast.Constructor{Name: "Nil"},
	&ast.Constructor{Name: "Cons", ArgTypes: make([]ast.Expr, 2)},
)

var nilCtor = ListSum.Ctors[0]
var consCtor = ListSum.Ctors[1]

// foldPublishes builds the list value a topic's accumulated `publish`
// sites reduce to: a Cons chain terminated by Nil, built right-to-left
// so that pubs is consumed in order and the final Def.Value evaluates,
// left to right as written, as a single chain (spec.md §4.1.6 "Topic
// accumulation").
//
// pubs is expected to already be in reverse file order (later files
// first); each element is prepended, so later files' publish sites end
// up toward the tail and the first file's toward the head, per spec.md
// §4.1.6 "publishes are prepended in reverse file order" — the caller
// is responsible for ordering pubs before calling foldPublishes.
func foldPublishes(pubs []ast.Expr) ast.Expr {
	acc := ast.Expr(&ast.Construct{Sum: ListSum, Cons: nilCtor})
	for _, v := range pubs {
		acc = &ast.App{Fn: &ast.App{Fn: &ast.Construct{Sum: ListSum, Cons: consCtor}, Arg: v}, Arg: acc}
	}
	return acc
}

// reverseFileOrder returns the publish values for topic in the order
// foldPublishes expects: later files first.
func reverseFileOrder(pkg *ast.Package, topic string) []ast.Expr {
	var out []ast.Expr
	for i := len(pkg.Files) - 1; i >= 0; i-- {
		f := pkg.Files[i]
		for _, p := range f.Pubs {
			if p.Topic == topic {
				out = append(out, p.Value)
			}
		}
	}
	return out
}

// topicDefName is the synthetic global definition name a topic's
// accumulated value is bound under.
func topicDefName(pkgName, topic string) string {
	return topic + "@" + pkgName
}
