package design

import "github.com/bluwireless/blade/pkg/schema"

// RegisterGroup is the elaborated, placed form of a schema.Group: an
// ordered list of laid-out Registers (§4.6).
type RegisterGroup struct {
	Node
	Name      string
	ByteMode  bool
	Registers []*Register
}

// Register is one placed, resolved register (§4.6 steps 3-7). Addr and
// Align are always stored in bytes regardless of the owning group's address
// unit, so overlap and reachability comparisons never need to re-derive the
// unit (§8: "BYTE mode treats addr: 4 as byte 4; word mode treats it as
// byte 16").
type Register struct {
	Node
	Name        string
	Addr        int64
	Align       int64
	Width       uint
	BlockAccess schema.AccessKind
	BusAccess   schema.AccessKind
	InstAccess  schema.AccessKind
	Location    schema.Location
	Fields      []*RegisterField
	// Widened records whether layout auto-widened this register beyond its
	// nominal width to accommodate a field's high bit (§4.6 step 7).
	Widened bool
}

// EndAddr returns the address one past the last byte this register
// occupies.
func (r *Register) EndAddr() int64 {
	return r.Addr + int64(r.Width)/8
}

// RegisterField is one placed, resolved bitfield within a Register (§4.6
// step 7).
type RegisterField struct {
	Node
	Name   string
	Lsb    uint
	Msb    uint
	Signed bool
	Reset  int64
	Enums  []schema.Enum
}

// Width returns the field's bit width.
func (f *RegisterField) Width() uint {
	return f.Msb - f.Lsb + 1
}
