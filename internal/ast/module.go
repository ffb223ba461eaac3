package ast

import "github.com/funvibe/wakecore/internal/symbols"

// Top is what the parser hands the resolver: packages, each with
// files, plus a global symbol table (spec.md §6 "Parser-to-resolver
// interface").
type Top struct {
	Packages []*Package
	Global   *symbols.Table
}

// Package owns an export table and an internal table (spec.md §3).
type Package struct {
	Name     string
	Files    []*File
	Exports  *symbols.Table
	Internal *symbols.Table
}

// File owns a local symbol table and a package-level table reference,
// its local defs/imports/pubs/topics (spec.md §6).
type File struct {
	Path     string
	Package  *Package
	Content  *DefMap
	Imports  []Import
	Pubs     []Publish
	Topics   []TopicDecl
	Local    *symbols.Table
}

// Publish is one `publish t <- expr` site, in source order within its
// file (spec.md §4.1.6).
type Publish struct {
	Topic    string
	Value    Expr
	Location Location
}

// TopicDecl declares a topic's element type within a package.
type TopicDecl struct {
	Name         string
	ElementType  Expr
	Location     Location
}
