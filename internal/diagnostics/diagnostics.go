// Package diagnostics collects resolver and evaluator errors and warnings
// for a single compilation, as described in spec.md §6 ("Diagnostic
// stream") and §7 ("Error Handling Design").
package diagnostics

import "fmt"

// Severity distinguishes fatal diagnostics (abort IR emission) from
// advisory ones.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Code identifies a diagnostic kind, mirroring the "one error code per
// kind" convention the import-qualification and pattern-lowering
// passes rely on.
type Code string

const (
	ErrUnboundVariable      Code = "R001"
	ErrUnboundTopic         Code = "R002"
	ErrUnboundConstructor   Code = "R003"
	ErrUnboundType          Code = "R004"
	ErrArityMismatch        Code = "R005"
	ErrIllegalValueRecursion Code = "R006"
	ErrDuplicateDefinition  Code = "R007"
	ErrCyclicReexport       Code = "R008"
	ErrMissingReexportTarget Code = "R009"
	ErrNonExhaustiveMatch   Code = "R010"
	ErrDuplicateImport      Code = "R011"

	WarnUnusedImport      Code = "W001"
	WarnUnusedLocal       Code = "W002"
	WarnUnusedTopLevel    Code = "W003"
	WarnAmbiguousImport   Code = "W004"
	WarnNoSuchPackage     Code = "W005"
	WarnUnusedPatternRow  Code = "W006"
	WarnDroppedImportName Code = "W007"
)

// Location is a file-position fragment carried by every AST/IR node
// for diagnostics (spec.md §3, §6).
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%s] %s: %s", d.Location, d.Code, d.Severity, d.Message)
}

// Reporter accumulates diagnostics across a single resolver pass.
// Resolver errors accumulate in this buffer; a single pass collects
// all errors before returning to the caller (spec.md §7).
type Reporter struct {
	diags []Diagnostic
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Errorf(loc Location, code Code, format string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{Severity: Error, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (r *Reporter) Warnf(loc Location, code Code, format string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{Severity: Warning, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

func (r *Reporter) Errors() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.diags))
	for _, d := range r.diags {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

func (r *Reporter) Warnings() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.diags))
	for _, d := range r.diags {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}
