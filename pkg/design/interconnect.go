package design

import "github.com/bluwireless/blade/pkg/schema"

// Interconnect is the elaborated form of a His: a named bus type with its
// components in declaration order (§4.4).
type Interconnect struct {
	Node
	Name       string
	Components []*InterconnectComponent
}

// InterconnectComponent is one leaf or nested component of an Interconnect.
// A simple component descends from a Port; a complex component links to
// another Interconnect (§4.4: "Port components become simple components
// with fixed width; HisRef components become complex components linking to
// the referenced Interconnect").
type InterconnectComponent struct {
	Node
	Name   string
	Simple bool
	// Width is meaningful only when Simple is true.
	Width uint
	// Role is the net role of this leaf signal after walking the reference
	// chain and flipping on every slave-roled link (§4.4).
	Role  schema.Role
	Enums []schema.Enum
	// Complex is the linked Interconnect; set only when Simple is false.
	Complex *Interconnect
	// Count is the instantiation multiplicity carried by the HisRef that
	// produced this component (only meaningful when Simple is false).
	Count uint
}
