package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/schema"
)

// elaborateAddressMap builds a Block's address-distribution function from
// its Mod's Initiator/Target declarations (§4.8). Initiators and targets
// must name the block's own boundary ports: a child's port is not a legal
// address-map endpoint, since the map describes how this block itself
// distributes addresses outward.
func elaborateAddressMap(block *design.Block, mod *schema.Mod) (*design.AddressMap, error) {
	am := &design.AddressMap{}

	byName := map[string]*design.AddressMapInitiator{}

	for _, init := range mod.Initiators {
		if init.Point.Module.HasValue() {
			return nil, fmt.Errorf("%s: Initiator %q names a child port; only this block's own boundary ports are legal", init.Pos, init.Point.PortName)
		}

		_, port, err := resolvePoint(block, init.Point)
		if err != nil {
			return nil, fmt.Errorf("%s: Initiator: %w", init.Pos, err)
		}

		idx := uint(0)
		if init.Point.SignalIndex.HasValue() {
			idx = init.Point.SignalIndex.Unwrap()
		}

		if idx >= port.SignalCount {
			return nil, fmt.Errorf("%s: Initiator %q: signal index %d out of range", init.Pos, port.Name, idx)
		}

		constraints, err := resolveConstraints(block, init.Constraints)
		if err != nil {
			return nil, fmt.Errorf("%s: Initiator %q: %w", init.Pos, port.Name, err)
		}

		ami := &design.AddressMapInitiator{
			Name:        port.Name,
			Port:        port,
			SignalIndex: idx,
			Mask:        init.Mask.UnwrapOr(-1),
			Offset:      init.Offset.UnwrapOr(0),
			Constraints: constraints,
		}
		ami.Pos = init.Pos

		am.Initiators = append(am.Initiators, ami)
		byName[port.Name] = ami
	}

	for _, targ := range mod.Targets {
		if targ.Point.Module.HasValue() {
			return nil, fmt.Errorf("%s: Target %q names a child port; only this block's own boundary ports are legal", targ.Pos, targ.Point.PortName)
		}

		_, port, err := resolvePoint(block, targ.Point)
		if err != nil {
			return nil, fmt.Errorf("%s: Target: %w", targ.Pos, err)
		}

		idx := uint(0)
		if targ.Point.SignalIndex.HasValue() {
			idx = targ.Point.SignalIndex.Unwrap()
		}

		if idx >= port.SignalCount {
			return nil, fmt.Errorf("%s: Target %q: signal index %d out of range", targ.Pos, port.Name, idx)
		}

		constraints, err := resolveConstraints(block, targ.Constraints)
		if err != nil {
			return nil, fmt.Errorf("%s: Target %q: %w", targ.Pos, port.Name, err)
		}

		amt := &design.AddressMapTarget{
			Name:        port.Name,
			Port:        port,
			SignalIndex: idx,
			Offset:      targ.Offset.UnwrapOr(0),
			Aperture:    targ.Aperture.UnwrapOr(1),
			Constraints: constraints,
		}
		amt.Pos = targ.Pos

		am.Targets = append(am.Targets, amt)

		// Step 4: translate each constraint naming an Initiator into a
		// connectivity edge; a Target with no constraints is reachable from
		// every Initiator in the map (§4.8 step 4).
		if len(amt.Constraints) == 0 {
			for _, ami := range am.Initiators {
				am.Edges = append(am.Edges, design.AddressMapEdge{Initiator: ami, Target: amt})
			}

			continue
		}

		for _, c := range targ.Constraints {
			ami, ok := byName[c.PortName]
			if !ok {
				return nil, fmt.Errorf("%s: Target %q constraint names %q, which is not a declared Initiator", targ.Pos, port.Name, c.PortName)
			}

			am.Edges = append(am.Edges, design.AddressMapEdge{Initiator: ami, Target: amt})
		}
	}

	return am, nil
}

// resolveConstraints resolves an Initiator/Target's constraint Points to
// concrete ports, stored on the elaborated endpoint. No aperture/mask
// agreement between the named endpoints is checked here.
func resolveConstraints(block *design.Block, pts []schema.Point) ([]design.AddressMapConstraint, error) {
	var out []design.AddressMapConstraint

	for _, pt := range pts {
		_, port, err := resolvePoint(block, pt)
		if err != nil {
			return nil, err
		}

		idx := uint(0)
		if pt.SignalIndex.HasValue() {
			idx = pt.SignalIndex.Unwrap()
		}

		out = append(out, design.AddressMapConstraint{Port: port, SignalIndex: idx})
	}

	return out, nil
}
