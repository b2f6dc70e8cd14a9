package schema

// Def is a named integer value whose right-hand side is an expression that
// may reference other Defs (§3, §4.5).
type Def struct {
	Node
	// Expr is the raw, unevaluated arithmetic expression (may reference
	// other Def names).
	Expr string
}

// RecordKind implements Record.
func (d *Def) RecordKind() Kind { return KindDef }

// Base implements Record.
func (d *Def) Base() *Node { return &d.Node }
