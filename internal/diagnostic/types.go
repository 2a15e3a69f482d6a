package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Codes of the anomalies reported while reading or linting documents.
const (
	CodeLegacyCollection = "legacy-collection" // collection written without item ids
	CodeMemberAlias      = "member-alias"      // member read through a former name
	CodeTypeAlias        = "type-alias"        // type tag read through a former tag
	CodeUnknownMember    = "unknown-member"    // key that matches no member
	CodeLiveTombstone    = "live-tombstone"    // tombstone for an id that is also live
	CodeDuplicateItemID  = "duplicate-item-id" // same id used twice in one collection
	CodeMalformedItemKey = "malformed-item-key"
)

// Diagnostics holds all diagnostic information gathered by one operation.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Path locates the value in the object graph or document (if any).
	Path string
	// Line is the 1-based document line, zero when unknown.
	Line int
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return "unknown"
	}
}

// Add appends d to the list of its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, path string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Path: path})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, path string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Path: path})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, path string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Path: path})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// WithCode returns the diagnostics carrying code.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Code == code {
			out = append(out, diag)
		}
	}

	return out
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	if d.Line > 0 {
		prefix = append(prefix, fmt.Sprintf("(line %d)", d.Line))
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
