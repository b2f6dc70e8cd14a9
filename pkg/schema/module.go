package schema

import "github.com/bluwireless/blade/pkg/util"

// Point is a reference to a port, optionally on a named child module, and
// optionally to one signal within a multi-signal port (§3).
type Point struct {
	PortName    string
	Module      util.Option[string]
	SignalIndex util.Option[uint]
}

// Const is a literal integer source for a Connect (§3).
type Const struct {
	Value int64
}

// ConnectEndpoint is one entry in a Connect's ordered point list: either a
// Point or a Const (only legal as the sole initiator of a Connect, §4.6).
type ConnectEndpoint struct {
	Point util.Option[Point]
	Const util.Option[Const]
}

// IsConst reports whether this endpoint is a constant source.
func (e ConnectEndpoint) IsConst() bool {
	return e.Const.HasValue()
}

// Connect expresses an ordered initiator -> target(s) wiring (§3, §4.6).
type Connect struct {
	Node
	Points []ConnectEndpoint
}

// RecordKind implements Record.
func (c *Connect) RecordKind() Kind { return KindConnect }

// Base implements Record.
func (c *Connect) Base() *Node { return &c.Node }

// ModInst instantiates a named Mod as a child of another Mod (§3).
type ModInst struct {
	Node
	InstanceName string
	ModType      string
	Description  string
	Count        uint
}

// RecordKind implements Record.
func (m *ModInst) RecordKind() Kind { return KindModInst }

// Base implements Record.
func (m *ModInst) Base() *Node { return &m.Node }

// Initiator is a boundary port acting as the ingress of a block's
// address-distribution function (§3, §4.8).
type Initiator struct {
	Node
	Point       Point
	Mask        util.Option[int64]
	Offset      util.Option[int64]
	Constraints []Point
}

// RecordKind implements Record.
func (i *Initiator) RecordKind() Kind { return KindInitiator }

// Base implements Record.
func (i *Initiator) Base() *Node { return &i.Node }

// Target is a boundary port acting as the egress of a block's
// address-distribution function (§3, §4.8).
type Target struct {
	Node
	Point       Point
	Offset      util.Option[int64]
	Aperture    util.Option[int64]
	Constraints []Point
}

// RecordKind implements Record.
func (t *Target) RecordKind() Kind { return KindTarget }

// Base implements Record.
func (t *Target) Base() *Node { return &t.Node }

// Mod is a module declaration: typed boundary ports, child instances,
// explicit connections, default (intentionally unconnected) points, an
// optional clock/reset distribution root, and an address map (§3).
type Mod struct {
	Node
	Ports       []*HisRef
	Modules     []*ModInst
	Connections []*Connect
	Defaults    []Point
	ClkRoot     util.Option[Point]
	RstRoot     util.Option[Point]
	Initiators  []*Initiator
	Targets     []*Target
}

// RecordKind implements Record.
func (m *Mod) RecordKind() Kind { return KindMod }

// Base implements Record.
func (m *Mod) Base() *Node { return &m.Node }
