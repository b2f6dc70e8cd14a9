package schema

import "github.com/bluwireless/blade/pkg/util"

// Role is the driver/receiver polarity of an interconnect signal or port
// (§3: Port.role, HisRef.role).
type Role uint8

// Role values. Slave inverts net role when walking a His reference chain
// (§4.4).
const (
	RoleMaster Role = iota
	RoleSlave
)

// Flip returns the opposite role, used when walking a slave-roled His
// reference link (§4.4: "net role of a signal is the XOR of roles along the
// reference chain - slave inverts").
func (r Role) Flip() Role {
	if r == RoleMaster {
		return RoleSlave
	}

	return RoleMaster
}

// Enum attaches a named integer value (and description) to a Port or Field.
type Enum struct {
	Name        string
	Value       int64
	Description string
}

// Port is a primitive interconnect leaf signal (§3).
type Port struct {
	Node
	Width   uint
	Count   uint
	Default util.Option[int64]
	Role    Role
	Enums   []Enum
}

// RecordKind implements Record.
func (p *Port) RecordKind() Kind { return KindPort }

// Base implements Record.
func (p *Port) Base() *Node { return &p.Node }

// HisComponent is either a *Port or a *HisRef, the two legal kinds of
// component a His may list (§3: "His ... ordered list of components, each
// either a Port or a HisRef").
type HisComponent interface {
	Record
	isHisComponent()
}

func (p *Port) isHisComponent() {}

// His is a named interconnect type: an ordered list of components, each
// carrying its own role (§3, §4.4).
type His struct {
	Node
	Components []HisComponent
}

// RecordKind implements Record.
func (h *His) RecordKind() Kind { return KindHis }

// Base implements Record.
func (h *His) Base() *Node { return &h.Node }

// HisRef is an instantiation of a His, either as a His component or as a
// module boundary port (§3).
type HisRef struct {
	Node
	// Type names the referenced His.
	Type  string
	Count uint
	Role  Role
}

// RecordKind implements Record.
func (h *HisRef) RecordKind() Kind { return KindHisRef }

// Base implements Record.
func (h *HisRef) Base() *Node { return &h.Node }

func (h *HisRef) isHisComponent() {}
