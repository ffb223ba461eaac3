// Package resolver implements spec.md §4.1: the pass that turns a
// parsed, module-structured AST into flat IR with every name bound to
// a lexical (depth, offset) address, every pattern match lowered to a
// decision tree, and every mutually-recursive group of definitions
// stratified into nested DefBinding frames.
package resolver

import (
	"strings"

	"github.com/funvibe/wakecore/internal/ast"
	"github.com/funvibe/wakecore/internal/diagnostics"
)

// Resolve runs the full resolver pipeline over top and returns the
// fully-addressed IR rooted at a reference to entryName in
// entryPackage (or, if entryName already contains "@", at entryName
// verbatim), plus the diagnostics collected along the way. Callers
// should check rep.HasErrors() before handing the IR to the evaluator
// (spec.md §7: a single pass collects every error before returning).
func Resolve(top *ast.Top, entryPackage, entryName string) (ast.Expr, *diagnostics.Reporter) {
	rep := diagnostics.NewReporter()

	populateExports(top)
	contractExports(top, rep)

	var globalDefs []ast.Def

	for _, pkg := range top.Packages {
		for _, file := range pkg.Files {
			aliases := qualifyImports(top, file, rep)
			used := make(map[string]bool)

			if file.Content != nil {
				for i := range file.Content.Defs {
					rewriteAliases(file.Content.Defs[i].Value, map[string]bool{}, aliases, used)
					file.Content.Defs[i].Value = lower(file.Content.Defs[i].Value, rep)
					globalDefs = append(globalDefs, ast.Def{
						Name:     file.Content.Defs[i].Name + "@" + pkg.Name,
						Value:    file.Content.Defs[i].Value,
						Location: file.Content.Defs[i].Location,
					})
				}
			}

			for i := range file.Pubs {
				rewriteAliases(file.Pubs[i].Value, map[string]bool{}, aliases, used)
				file.Pubs[i].Value = lower(file.Pubs[i].Value, rep)
			}

			for local := range aliases {
				if !used[local] {
					rep.Warnf(importLocation(file, local), diagnostics.WarnUnusedImport, "imported name %q is never used", local)
				}
			}
		}
	}

	for _, pkg := range top.Packages {
		for _, topic := range packageTopics(pkg) {
			loc := ast.Location{}
			if len(pkg.Files) > 0 {
				loc = ast.Location{File: pkg.Files[0].Path}
			}
			globalDefs = append(globalDefs, ast.Def{
				Name:     topicDefName(pkg.Name, topic),
				Value:    foldPublishes(reverseFileOrder(pkg, topic)),
				Location: loc,
			})
		}
	}

	entryQualified := entryName
	if !strings.Contains(entryName, "@") {
		entryQualified = entryName + "@" + entryPackage
	}
	entryBody := &ast.VarRef{Name: entryQualified}

	ir := stratify(globalDefs, entryBody, rep)
	resolveRefs(ir, nil, rep)

	return ir, rep
}

// packageTopics returns the distinct topic names declared anywhere in
// pkg, in first-declaration order.
func packageTopics(pkg *ast.Package) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range pkg.Files {
		for _, t := range f.Topics {
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		}
	}
	return out
}

func importLocation(file *ast.File, local string) ast.Location {
	for _, imp := range file.Imports {
		if imp.Local == local || (imp.Local == "" && imp.Source == local) {
			return imp.Location
		}
	}
	return ast.Location{}
}
