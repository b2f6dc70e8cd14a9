package schema

import "github.com/bluwireless/blade/pkg/util"

// FixedField records a single enumerated Field value an Inst fixes relative
// to its parent (§3: Inst "fixing exactly one enumerated Field value per
// inheritance level").
type FixedField struct {
	FieldName string
	Value     int64
}

// Inst is an instruction record. It may extend a parent Inst by name,
// fixing exactly one enumerated Field value, or stand alone with its own
// Field list (§3, §4.9).
type Inst struct {
	Node
	Extends util.Option[string]
	Fixed   util.Option[FixedField]
	Fields  []*Field
}

// RecordKind implements Record.
func (i *Inst) RecordKind() Kind { return KindInst }

// Base implements Record.
func (i *Inst) Base() *Node { return &i.Node }
