package design

import "github.com/bluwireless/blade/pkg/schema"

// Port is an elaborated boundary or child port, carrying its resolved
// Interconnect (nil for a primitive signal), its signal multiplicity, and
// the per-signal bookkeeping the module elaborator's connection stages need
// (§4.7 steps 6-11).
type Port struct {
	Node
	Name         string
	Interconnect *Interconnect
	// Width is meaningful only when Interconnect is nil (a primitive
	// signal); otherwise width lives on the Interconnect's components.
	Width       uint
	SignalCount uint
	Role        schema.Role
	// LeafRoles is, for a non-primitive port, the net role of every leaf
	// signal in its Interconnect as seen from this specific boundary
	// declaration: each component's own role composed with this port's Role
	// and any nesting in between, flipping on every slave-roled link (§4.4,
	// invariant 2). Nil for a primitive port.
	LeafRoles []schema.Role
	// Principal marks this port as the block's nominated clock or reset
	// (§4.7 steps 3-4).
	Principal bool
	// Explicit records, per signal index, whether an explicit Connect
	// already touched that signal (§4.7 step 6: "no further implicit
	// inference on it, even if under-populated").
	Explicit []bool
	// Driven records, per signal index, whether a Connection now targets
	// that signal (used for both under-population warnings and invariant
	// 2's "one driver per target signal" check).
	Driven []bool
}

// IsPrimitive reports whether this port carries a direct signal rather than
// a typed interconnect.
func (p *Port) IsPrimitive() bool {
	return p.Interconnect == nil
}

// AllDriven reports whether every signal on this port has been connected.
func (p *Port) AllDriven() bool {
	for _, d := range p.Driven {
		if !d {
			return false
		}
	}

	return true
}

// AnyDriven reports whether at least one signal on this port has been
// connected (used to distinguish "fully unconnected" from "under-populated"
// for §4.7 step 11's warning).
func (p *Port) AnyDriven() bool {
	for _, d := range p.Driven {
		if d {
			return true
		}
	}

	return false
}

// ChildInstance is one elaborated child of a Block, produced from a
// schema.ModInst (§4.7 step 5). BoundaryOnly is set when a max_depth cutoff
// stopped recursion: the child Block then carries boundary ports only.
type ChildInstance struct {
	InstanceName string
	Block        *Block
	BoundaryOnly bool
}

// Connection is one resolved initiator->target signal edge in the design
// graph (§3 "Connection edges"). Const is populated instead of
// DriverPort/DriverSignal when the source is a literal (§4.7 step 6: "Const
// source ... creates a constant-valued Connection edge").
type Connection struct {
	Node
	DriverBlock  *Block
	DriverPort   *Port
	DriverSignal uint
	HasConst     bool
	Const        int64
	TargetBlock  *Block
	TargetPort   *Port
	TargetSignal uint
}

// Block is an elaborated module (§3, §4.7).
type Block struct {
	Node
	Name        string
	Type        string
	Description string
	SourceFile  string
	Options     map[string]bool

	Ports       []*Port
	portsByName map[string]*Port

	Children []*ChildInstance

	Connections []*Connection

	RegisterGroups []*RegisterGroup

	AddressMap *AddressMap

	PrincipalClk *Port
	PrincipalRst *Port

	// ClkRoot/RstRoot are the intra-block distribution roots named by the
	// Mod's clk_root/rst_root, when present (§4.7 step 4).
	ClkRoot *RootPoint
	RstRoot *RootPoint
}

// RootPoint resolves a clk_root/rst_root Point to a concrete child output
// port and signal.
type RootPoint struct {
	Block  *Block
	Port   *Port
	Signal uint
}

// AddPort registers a port on this block and indexes it by name.
func (b *Block) AddPort(p *Port) {
	b.Ports = append(b.Ports, p)

	if b.portsByName == nil {
		b.portsByName = make(map[string]*Port)
	}

	b.portsByName[p.Name] = p
}

// Port looks up a boundary port by name.
func (b *Block) Port(name string) (*Port, bool) {
	p, ok := b.portsByName[name]
	return p, ok
}

// HasOption reports whether the named option flag was set on the
// originating Mod.
func (b *Block) HasOption(flag string) bool {
	return b.Options[flag]
}

// Child looks up a child instance by instance name.
func (b *Block) Child(name string) (*ChildInstance, bool) {
	for _, c := range b.Children {
		if c.InstanceName == name {
			return c, true
		}
	}

	return nil, false
}
