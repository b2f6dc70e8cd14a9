package design

// AddressMapInitiator is a boundary port acting as an ingress of a block's
// address-distribution function (§3, §4.8).
type AddressMapInitiator struct {
	Node
	Name        string
	Port        *Port
	SignalIndex uint
	Mask        int64
	Offset      int64
	Constraints []AddressMapConstraint
}

// AddressMapTarget is a boundary port acting as the egress of a block's
// address-distribution function: an absolute address window (§3, §4.8).
type AddressMapTarget struct {
	Node
	Name        string
	Port        *Port
	SignalIndex uint
	Offset      int64
	Aperture    int64
	Constraints []AddressMapConstraint
}

// AddressMapConstraint resolves one Point named in an Initiator/Target's
// constraint list to a concrete port and signal.
type AddressMapConstraint struct {
	Port        *Port
	SignalIndex uint
}

// AddressMapEdge is one translated initiator<->target connectivity edge
// (§4.8 step 4).
type AddressMapEdge struct {
	Initiator *AddressMapInitiator
	Target    *AddressMapTarget
}

// AddressMap is the elaborated address-distribution function attached to a
// Block that declares one (§3, §4.8).
type AddressMap struct {
	Node
	Initiators []*AddressMapInitiator
	Targets    []*AddressMapTarget
	Edges      []AddressMapEdge
}

// InWindow reports whether the target's resolved absolute address range
// lies entirely within the given initiator's masked window, the condition
// tested by invariant 5 and the §8 aperture-reachability property.
func (t *AddressMapTarget) InWindow(init *AddressMapInitiator) bool {
	lo := init.Offset
	hi := init.Offset + init.Mask

	return t.Offset >= lo && t.Offset+t.Aperture-1 <= hi
}
