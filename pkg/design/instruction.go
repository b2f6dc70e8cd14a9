package design

import "github.com/bluwireless/blade/pkg/schema"

// CommandField is one placed, resolved field of a Command, carrying
// whether it was contributed by an ancestor Inst in the inheritance chain
// (§4.9 step 3: "Inherited fields are marked inherited=true").
type CommandField struct {
	Node
	Name      string
	Lsb       uint
	Msb       uint
	Signed    bool
	Reset     int64
	Enums     []schema.Enum
	Inherited bool
}

// Width returns the field's bit width.
func (f *CommandField) Width() uint {
	return f.Msb - f.Lsb + 1
}

// Command is the elaborated, inheritance-collapsed form of a schema.Inst
// (§4.9).
type Command struct {
	Node
	Name    string
	Extends string
	Fields  []*CommandField
}
