// Package design implements the elaborated design graph described in §3
// "Design graph (output)": the fully resolved, canonical in-memory
// representation that elaboration produces from a forest of schema
// objects, and that the rule checker (pkg/checker) and downstream
// generators consume. It generalizes the teacher's pkg/schema package,
// which plays the analogous "compiled artifact the rest of the pipeline
// consumes" role for a different domain.
package design

import "github.com/bluwireless/blade/pkg/srcpos"

// ID uniquely identifies a principal node within its owning Project
// (invariant 1: "Every principal id is unique within its Project").
type ID uint64

// Kind identifies which principal node kind a graph node is, used by the
// checker to report violations against (§4.10: "a stable hash over
// (node.id, node.kind, check_name, message)").
type Kind uint8

// Principal node kinds (§3 "Design graph (output)").
const (
	KindBlock Kind = iota
	KindPort
	KindInterconnect
	KindInterconnectComponent
	KindRegisterGroup
	KindRegister
	KindRegisterField
	KindDefine
	KindCommand
	KindCommandField
	KindAddressMap
	KindAddressMapInitiator
	KindAddressMapTarget
	KindConnection
)

// String renders a human-readable kind name, used in report messages and
// waiver diagnostics.
func (k Kind) String() string {
	names := [...]string{
		"Block", "Port", "Interconnect", "InterconnectComponent",
		"RegisterGroup", "Register", "RegisterField", "Define",
		"Command", "CommandField", "AddressMap", "AddressMapInitiator",
		"AddressMapTarget", "Connection",
	}

	if int(k) < len(names) {
		return names[k]
	}

	return "Unknown"
}

// Attributes is the free-form per-node dictionary every principal node
// carries. It is explicitly excluded from the checker's waiver hash (§4.10)
// because it may hold system-local absolute paths or other run-dependent
// data.
type Attributes map[string]any

// Node is the common identity every principal node embeds: its unique id,
// its kind, and its free-form attributes.
type Node struct {
	ID    ID
	Kind  Kind
	Attrs Attributes
	// Pos traces this node back to the schema record it was elaborated
	// from, when one exists (some nodes, like automatically-injected
	// clock/reset ports, have no single originating source position).
	Pos srcpos.Pos
}

// NodeID implements GraphNode.
func (n *Node) NodeID() ID { return n.ID }

// NodeKind implements GraphNode.
func (n *Node) NodeKind() Kind { return n.Kind }

// NodeAttributes implements GraphNode.
func (n *Node) NodeAttributes() Attributes {
	if n.Attrs == nil {
		n.Attrs = Attributes{}
	}

	return n.Attrs
}

// SetAttr records a free-form attribute on this node (§6 "Serialization":
// the attributes dictionary is part of what JSON-serializes the node).
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = Attributes{}
	}

	n.Attrs[key] = value
}

// GraphNode is implemented by every principal node kind, giving the
// checker a uniform way to walk the graph regardless of concrete type.
type GraphNode interface {
	NodeID() ID
	NodeKind() Kind
	NodeAttributes() Attributes
}
