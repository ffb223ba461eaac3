// Package astjson decodes the JSON program format cmd/wakecore reads
// from disk into internal/ast's Top/Package/File/Expr trees. spec.md
// §1 keeps lexing and parsing out of scope ("Non-goals: ... surface
// syntax, parser"); a program is handed to this core already reduced
// to a tree, and JSON is encoding/json's idiomatic host-boundary
// format for that tree (no example repo carries a wake-syntax parser
// to imitate, so this one file is grounded in encoding/json's own
// json.RawMessage-based tagged-union idiom rather than the teacher,
// and is the one DESIGN.md stdlib-justification entry for astjson).
package astjson

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/funvibe/wakecore/internal/prim"
	"github.com/funvibe/wakecore/internal/resolver"
	"github.com/funvibe/wakecore/internal/symbols"
)

type sumDecl struct {
	Name  string    `json:"name"`
	Ctors []ctorDecl `json:"ctors"`
}

type ctorDecl struct {
	Name  string `json:"name"`
	Arity int    `json:"arity"`
}

type program struct {
	Sums         []sumDecl      `json:"sums"`
	Packages     []packageDecl  `json:"packages"`
	EntryPackage string         `json:"entry_package"`
	EntryName    string         `json:"entry_name"`
}

type packageDecl struct {
	Name  string     `json:"name"`
	Files []fileDecl `json:"files"`
}

type fileDecl struct {
	Path    string         `json:"path"`
	Imports []importDecl   `json:"imports"`
	Defs    []defDecl      `json:"defs"`
	Pubs    []pubDecl      `json:"pubs"`
	Topics  []topicDecl    `json:"topics"`
}

type importDecl struct {
	Kind    string `json:"kind"` // mixed | defs_only | types_only | topics_only | wildcard
	Package string `json:"package"`
	Local   string `json:"local"`
	Source  string `json:"source"`
}

type defDecl struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type pubDecl struct {
	Topic string          `json:"topic"`
	Value json.RawMessage `json:"value"`
}

type topicDecl struct {
	Name string `json:"name"`
}

type rawExpr struct {
	Kind string `json:"kind"`

	Name  string `json:"name"`  // var, prim
	Value string `json:"value"` // string/integer literal payload
	Float float64 `json:"float"` // double literal payload

	Param string          `json:"param"` // lambda
	Body  json.RawMessage `json:"body"`

	Fn  json.RawMessage `json:"fn"` // app
	Arg json.RawMessage `json:"arg"`

	Defs []defDecl       `json:"defs"` // let
	Let  json.RawMessage `json:"let_body"`

	Sum   string `json:"sum"`  // construct, get, destruct
	Ctor  string `json:"ctor"` // construct
	Index int    `json:"index"` // get

	Args      []json.RawMessage `json:"args"`      // match args
	Rows      []rawRow          `json:"rows"`       // match rows
	Otherwise json.RawMessage   `json:"otherwise"`
	Refutable bool              `json:"refutable"`
}

type rawRow struct {
	Patterns []rawPattern    `json:"patterns"`
	Guard    json.RawMessage `json:"guard"`
	Body     json.RawMessage `json:"body"`
}

type rawPattern struct {
	Kind string       `json:"kind"` // wildcard, var, construct
	Name string       `json:"name"`
	Sum  string       `json:"sum"`
	Ctor string       `json:"ctor"`
	Args []rawPattern `json:"args"`
}

// Decoder turns program JSON into ast.Top, resolving Sum names against
// both user-declared sums and the built-in Bool/List sums the resolver
// itself produces (resolver.BoolSum, resolver.ListSum), and Prim names
// against a primitive registry.
type Decoder struct {
	sums  map[string]*ast.Sum
	prims *prim.Registry
}

func NewDecoder(prims *prim.Registry) *Decoder {
	d := &Decoder{sums: make(map[string]*ast.Sum), prims: prims}
	d.sums[resolver.BoolSum.Name] = resolver.BoolSum
	d.sums[resolver.ListSum.Name] = resolver.ListSum
	return d
}

// Decode parses data as program JSON and returns the ast.Top, plus the
// resolved entry package/name pair resolver.Resolve expects.
func (d *Decoder) Decode(data []byte) (*ast.Top, string, string, error) {
	var p program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, "", "", fmt.Errorf("astjson: %w", err)
	}
	for _, sd := range p.Sums {
		ctors := make([]*ast.Constructor, len(sd.Ctors))
		for i, cd := range sd.Ctors {
			ctors[i] = &ast.Constructor{Name: cd.Name, ArgTypes: make([]ast.Expr, cd.Arity)}
		}
		d.sums[sd.Name] = ast.NewSum(sd.Name, ctors...)
	}

	top := &ast.Top{Global: symbols.NewTable("global")}
	for _, pd := range p.Packages {
		pkg := &ast.Package{
			Name:     pd.Name,
			Exports:  symbols.NewTable(pd.Name),
			Internal: symbols.NewTable(pd.Name),
		}
		for _, fd := range pd.Files {
			file := &ast.File{Path: fd.Path, Package: pkg, Local: symbols.NewTable(fd.Path)}
			for _, imp := range fd.Imports {
				kind, err := importKind(imp.Kind)
				if err != nil {
					return nil, "", "", err
				}
				file.Imports = append(file.Imports, ast.Import{
					Kind: kind, Package: imp.Package, Local: imp.Local, Source: imp.Source,
					Location: ast.Location{File: fd.Path},
				})
			}
			var defs []ast.Def
			for _, dd := range fd.Defs {
				v, err := d.decodeExpr(dd.Value)
				if err != nil {
					return nil, "", "", fmt.Errorf("astjson: def %q: %w", dd.Name, err)
				}
				defs = append(defs, ast.Def{Name: dd.Name, Value: v, Location: ast.Location{File: fd.Path}})
			}
			file.Content = &ast.DefMap{Meta: ast.Meta{Location: ast.Location{File: fd.Path}}, Defs: defs}
			for _, pub := range fd.Pubs {
				v, err := d.decodeExpr(pub.Value)
				if err != nil {
					return nil, "", "", fmt.Errorf("astjson: publish %q: %w", pub.Topic, err)
				}
				file.Pubs = append(file.Pubs, ast.Publish{Topic: pub.Topic, Value: v, Location: ast.Location{File: fd.Path}})
			}
			for _, td := range fd.Topics {
				file.Topics = append(file.Topics, ast.TopicDecl{Name: td.Name, Location: ast.Location{File: fd.Path}})
			}
			pkg.Files = append(pkg.Files, file)
		}
		top.Packages = append(top.Packages, pkg)
	}
	return top, p.EntryPackage, p.EntryName, nil
}

func importKind(s string) (ast.ImportKind, error) {
	switch s {
	case "", "mixed":
		return ast.ImportMixed, nil
	case "defs_only":
		return ast.ImportDefsOnly, nil
	case "types_only":
		return ast.ImportTypesOnly, nil
	case "topics_only":
		return ast.ImportTopicsOnly, nil
	case "wildcard":
		return ast.ImportWildcard, nil
	default:
		return 0, fmt.Errorf("astjson: unknown import kind %q", s)
	}
}

func (d *Decoder) decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	var re rawExpr
	if err := json.Unmarshal(raw, &re); err != nil {
		return nil, err
	}
	loc := diagnostics.Location{}

	switch re.Kind {
	case "var":
		return &ast.VarRef{Meta: ast.Meta{Location: loc}, Name: re.Name}, nil

	case "string":
		return &ast.Literal{Meta: ast.Meta{Location: loc}, Kind: ast.LitString, Value: &heap.String{Value: re.Value}}, nil

	case "integer":
		i, ok := new(big.Int).SetString(re.Value, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", re.Value)
		}
		return &ast.Literal{Meta: ast.Meta{Location: loc}, Kind: ast.LitInteger, Value: &heap.Integer{Value: i}}, nil

	case "double":
		return &ast.Literal{Meta: ast.Meta{Location: loc}, Kind: ast.LitDouble, Value: &heap.Double{Value: re.Float}}, nil

	case "lambda":
		body, err := d.decodeExpr(re.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Meta: ast.Meta{Location: loc}, Param: re.Param, Body: body}, nil

	case "app":
		fn, err := d.decodeExpr(re.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := d.decodeExpr(re.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.App{Meta: ast.Meta{Location: loc}, Fn: fn, Arg: arg}, nil

	case "let":
		defs := make([]ast.Def, 0, len(re.Defs))
		for _, dd := range re.Defs {
			v, err := d.decodeExpr(dd.Value)
			if err != nil {
				return nil, fmt.Errorf("let def %q: %w", dd.Name, err)
			}
			defs = append(defs, ast.Def{Name: dd.Name, Value: v, Location: loc})
		}
		body, err := d.decodeExpr(re.Let)
		if err != nil {
			return nil, err
		}
		return &ast.DefMap{Meta: ast.Meta{Location: loc}, Defs: defs, Body: body}, nil

	case "construct":
		sum, cons, err := d.lookupCtor(re.Sum, re.Ctor)
		if err != nil {
			return nil, err
		}
		return &ast.Construct{Meta: ast.Meta{Location: loc}, Sum: sum, Cons: cons}, nil

	case "get":
		sum, cons, err := d.lookupCtor(re.Sum, re.Ctor)
		if err != nil {
			return nil, err
		}
		return &ast.Get{Meta: ast.Meta{Location: loc}, Sum: sum, Cons: cons, Index: re.Index}, nil

	case "prim":
		if d.prims == nil {
			return nil, fmt.Errorf("prim %q referenced but no registry was supplied", re.Name)
		}
		node, ok := d.prims.Node(re.Name, loc)
		if !ok {
			return nil, fmt.Errorf("unregistered primitive %q", re.Name)
		}
		return node, nil

	case "match":
		args := make([]ast.Expr, len(re.Args))
		for i, a := range re.Args {
			v, err := d.decodeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		rows := make([]ast.PatternRow, len(re.Rows))
		for i, r := range re.Rows {
			pats := make([]ast.Pattern, len(r.Patterns))
			for j, p := range r.Patterns {
				pp, err := d.decodePattern(p)
				if err != nil {
					return nil, err
				}
				pats[j] = pp
			}
			body, err := d.decodeExpr(r.Body)
			if err != nil {
				return nil, err
			}
			var guard ast.Expr
			if len(r.Guard) > 0 {
				guard, err = d.decodeExpr(r.Guard)
				if err != nil {
					return nil, err
				}
			}
			rows[i] = ast.PatternRow{Patterns: pats, Guard: guard, Body: body, Location: loc}
		}
		var otherwise ast.Expr
		if len(re.Otherwise) > 0 {
			var err error
			otherwise, err = d.decodeExpr(re.Otherwise)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Match{Meta: ast.Meta{Location: loc}, Args: args, Patterns: rows, Otherwise: otherwise, Refutable: re.Refutable}, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", re.Kind)
	}
}

func (d *Decoder) decodePattern(p rawPattern) (ast.Pattern, error) {
	switch p.Kind {
	case "wildcard":
		return ast.PatWildcard{}, nil
	case "var":
		return ast.PatVar{Name: p.Name}, nil
	case "construct":
		sum, cons, err := d.lookupCtor(p.Sum, p.Ctor)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Pattern, len(p.Args))
		for i, a := range p.Args {
			pp, err := d.decodePattern(a)
			if err != nil {
				return nil, err
			}
			args[i] = pp
		}
		return ast.PatConstruct{Sum: sum, Cons: cons, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", p.Kind)
	}
}

func (d *Decoder) lookupCtor(sumName, ctorName string) (*ast.Sum, *ast.Constructor, error) {
	sum, ok := d.sums[sumName]
	if !ok {
		return nil, nil, fmt.Errorf("unknown sum %q", sumName)
	}
	for _, c := range sum.Ctors {
		if c.Name == ctorName {
			return sum, c, nil
		}
	}
	return nil, nil, fmt.Errorf("sum %q has no constructor %q", sumName, ctorName)
}
