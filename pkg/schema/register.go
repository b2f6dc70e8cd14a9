package schema

import "github.com/bluwireless/blade/pkg/util"

// AccessKind is one of the access-constraint lattice values from §6's
// validator table.
type AccessKind uint8

// Access kind values.
const (
	AccessWO AccessKind = iota
	AccessRO
	AccessRW
	AccessAW
	AccessAR
	AccessARW
	AccessWS
	AccessWC
)

var accessNames = map[string]AccessKind{
	"W": AccessWO, "WO": AccessWO,
	"R": AccessRO, "RO": AccessRO,
	"RW":  AccessRW,
	"AW":  AccessAW,
	"AR":  AccessAR,
	"ARW": AccessARW,
	"WS":  AccessWS,
	"WC":  AccessWC,
}

// ParseAccessKind resolves the textual spelling of an access attribute
// value to its AccessKind, reporting whether the spelling was recognized.
func ParseAccessKind(s string) (AccessKind, bool) {
	k, ok := accessNames[s]
	return k, ok
}

// Location is a Reg's placement attribute (§3: Reg.location).
type Location uint8

// Location values.
const (
	LocationInternal Location = iota
	LocationWrapper
	LocationCore
)

// GroupType distinguishes an ordinary register group from one that can be
// replicated via Macro placement (§3: Group.type).
type GroupType uint8

// Group type values.
const (
	GroupTypeRegister GroupType = iota
	GroupTypeMacro
)

// Group is an ordered list of Reg records (§3).
type Group struct {
	Node
	Type GroupType
	Regs []*Reg
}

// RecordKind implements Record.
func (g *Group) RecordKind() Kind { return KindGroup }

// Base implements Record.
func (g *Group) Base() *Node { return &g.Node }

// Field is a named, positioned bitfield within a Reg (§3).
type Field struct {
	Node
	Width  uint
	Lsb    util.Option[uint]
	Msb    util.Option[uint]
	Signed bool
	Reset  int64
	Enums  []Enum
}

// RecordKind implements Record.
func (f *Field) RecordKind() Kind { return KindField }

// Base implements Record.
func (f *Field) Base() *Node { return &f.Node }

// Reg describes one (possibly replicated) register within a Group (§3).
type Reg struct {
	Node
	Addr        util.Option[int64]
	Align       util.Option[int64]
	Array       uint
	BlockAccess AccessKind
	BusAccess   AccessKind
	InstAccess  AccessKind
	Location    Location
	Fields      []*Field
}

// RecordKind implements Record.
func (r *Reg) RecordKind() Kind { return KindReg }

// Base implements Record.
func (r *Reg) Base() *Node { return &r.Node }

// ConfigEntry is either a Register or a Macro placement directive (§3).
type ConfigEntry interface {
	Record
	isConfigEntry()
}

// Config is an ordered list of Register/Macro placement directives
// controlling group placement within a register set (§3, §4.6 step 1-2).
type Config struct {
	Node
	Entries []ConfigEntry
}

// RecordKind implements Record.
func (c *Config) RecordKind() Kind { return KindConfig }

// Base implements Record.
func (c *Config) Base() *Node { return &c.Node }

// RegisterPlacement places a single Group once at its natural address
// (§4.6 step 2: "Register[g]").
type RegisterPlacement struct {
	Node
	// GroupName names the Group to place.
	GroupName string
}

// RecordKind implements Record.
func (r *RegisterPlacement) RecordKind() Kind { return KindRegisterPlacement }

// Base implements Record.
func (r *RegisterPlacement) Base() *Node { return &r.Node }
func (r *RegisterPlacement) isConfigEntry() {}

// MacroPlacement places `Array` copies of a macro-typed Group, each named
// `Prefix_<i>` and aligned to `Align` (§4.6 step 2: "Macro[g, prefix, array,
// align]").
type MacroPlacement struct {
	Node
	GroupName string
	Prefix    string
	Array     uint
	Align     int64
}

// RecordKind implements Record.
func (m *MacroPlacement) RecordKind() Kind { return KindMacroPlacement }

// Base implements Record.
func (m *MacroPlacement) Base() *Node { return &m.Node }
func (m *MacroPlacement) isConfigEntry() {}

// Define overrides specific attributes of a named (group, reg[, field]) at
// instantiation time (§3, §4.6 step 6).
type Define struct {
	Node
	Group string
	Reg   string
	Field util.Option[string]
	// Overrides maps attribute name (e.g. "addr", "reset") to its new raw
	// value (parsed the same way the originating attribute would be).
	Overrides map[string]string
}

// RecordKind implements Record.
func (d *Define) RecordKind() Kind { return KindDefine }

// Base implements Record.
func (d *Define) Base() *Node { return &d.Node }
