// Package parse turns preprocessed tag text into schema objects (§4.2).
// Every tag supports two surface forms:
//
//	TagName(positional, args, ..., attr = value, ...)
//	TagName(attr = value, attr2 = value2, ...) { child child ... }
//
// Parsing of the textual tag stream into a RawTag tree is kept separate
// from binding a RawTag to a specific schema.Record constructor, so each
// record kind's rules (unknown/duplicate attribute rejection, mapping vs.
// sequence form) live in one place (bind.go) while the raw grammar
// lives here.
package parse

import "github.com/bluwireless/blade/pkg/srcpos"

// RawValue is an attribute value as written in source, before it is bound
// to a specific schema attribute's type.
type RawValue struct {
	Ident string     // bare identifier / enum-like word, e.g. `master`
	Str   string      // quoted string literal
	Int   int64      // integer literal
	IsStr bool
	IsInt bool
	List  []RawValue // [a, b, c] style list literal
	IsList bool
	Tag   *RawTag // an inline nested tag used as a value, e.g. Const(5)
	IsTag bool
}

// RawTag is one parsed tag: its kind name, its positional and named
// attributes, and any nested child tags (§4.2: "Parent/child tag nesting is
// unrestricted at parse time").
type RawTag struct {
	Kind       string
	Pos        srcpos.Pos
	Positional []RawValue
	Named      map[string]RawValue
	// NamedOrder preserves declaration order of named attributes, needed to
	// detect duplicates and to report them in a stable order.
	NamedOrder []string
	Children   []RawTag
}
