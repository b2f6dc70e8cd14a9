// Package report implements the structured warning/error report described
// in §7: severities {debug, info, warning, error} plus a category path,
// accumulated across a pipeline run and logged through logrus the way the
// teacher's pkg/cmd logs diagnostics.
package report

import (
	"fmt"
	"strings"

	"github.com/bluwireless/blade/pkg/srcpos"
)

// Severity is one of the four levels a report Entry can carry (§7).
type Severity uint8

// Severity values, ordered least to most severe.
const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String renders the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category is a dotted path identifying which part of the pipeline raised
// an Entry (e.g. "elaborate.module.connection", "elaborate.register").
type Category []string

// String renders the category using dotted notation.
func (c Category) String() string {
	return strings.Join(c, ".")
}

// Cat constructs a Category from path segments.
func Cat(segments ...string) Category {
	return Category(segments)
}

// Entry is a single reported condition: a severity, a category path, a
// message, and the source position it traces back to (when known).
type Entry struct {
	Severity Severity
	Category Category
	Message  string
	Pos      srcpos.Pos
}

// String renders an entry for plain-text output.
func (e Entry) String() string {
	if e.Pos.File == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Category, e.Message)
	}

	return fmt.Sprintf("[%s] %s: %s (%s)", e.Severity, e.Category, e.Message, e.Pos)
}

// Report accumulates Entry values across a pipeline run (§7 "Warnings ...
// are collected into a structured report").
type Report struct {
	Entries []Entry
}

// Add appends a new entry.
func (r *Report) Add(sev Severity, cat Category, pos srcpos.Pos, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{
		Severity: sev,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

// Debugf adds a debug-severity entry.
func (r *Report) Debugf(cat Category, pos srcpos.Pos, format string, args ...any) {
	r.Add(SeverityDebug, cat, pos, format, args...)
}

// Infof adds an info-severity entry.
func (r *Report) Infof(cat Category, pos srcpos.Pos, format string, args ...any) {
	r.Add(SeverityInfo, cat, pos, format, args...)
}

// Warnf adds a warning-severity entry.
func (r *Report) Warnf(cat Category, pos srcpos.Pos, format string, args ...any) {
	r.Add(SeverityWarning, cat, pos, format, args...)
}

// Errorf adds an error-severity entry.
func (r *Report) Errorf(cat Category, pos srcpos.Pos, format string, args ...any) {
	r.Add(SeverityError, cat, pos, format, args...)
}

// HasErrors reports whether any entry reached error severity.
func (r *Report) HasErrors() bool {
	for _, e := range r.Entries {
		if e.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Filter returns the subset of entries at or above the given minimum
// severity.
func (r *Report) Filter(min Severity) []Entry {
	var out []Entry

	for _, e := range r.Entries {
		if e.Severity >= min {
			out = append(out, e)
		}
	}

	return out
}
