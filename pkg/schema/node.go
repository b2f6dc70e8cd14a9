// Package schema defines the input object model: the tagged, declarative
// records produced by parsing (§3 "Schema model (input)" of the
// specification). Records are immutable once parsed; elaboration never
// mutates them.
package schema

import "github.com/bluwireless/blade/pkg/srcpos"

// Options is the unordered set of free-form uppercase flags every record
// carries (e.g. BYTE, EVENT, NO_CLK_RST).
type Options map[string]bool

// NewOptions constructs an option set from a list of flag names.
func NewOptions(flags ...string) Options {
	opts := make(Options, len(flags))
	for _, f := range flags {
		opts[f] = true
	}

	return opts
}

// Has reports whether a given flag is present.
func (o Options) Has(flag string) bool {
	return o[flag]
}

// Node holds the attributes common to every record kind: name, the two
// description fields, the options set, and the originating source position.
type Node struct {
	Name             string
	ShortDescription string
	LongDescription  string
	Opts             Options
	Pos              srcpos.Pos
}

// HasOption reports whether the named option flag is set on this node.
func (n *Node) HasOption(flag string) bool {
	if n.Opts == nil {
		return false
	}

	return n.Opts.Has(flag)
}

// Kind identifies the tag kind of a schema record, used for dispatch in the
// parser, validator and elaborator (the sealed tagged-union referred to in
// §9 "Design notes").
type Kind uint8

// Record kinds. Ordering is not semantically significant.
const (
	KindDef Kind = iota
	KindPort
	KindHis
	KindHisRef
	KindEnum
	KindGroup
	KindReg
	KindField
	KindConfig
	KindRegisterPlacement
	KindMacroPlacement
	KindDefine
	KindMod
	KindModInst
	KindConnect
	KindPoint
	KindConst
	KindInitiator
	KindTarget
	KindInst
	KindLegacy
)

// Record is the common interface implemented by every schema object.
type Record interface {
	// RecordKind identifies which concrete type this record is.
	RecordKind() Kind
	// Base returns the common attributes carried by every record.
	Base() *Node
}
