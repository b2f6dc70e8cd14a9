package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/srcpos"
)

// sigRef names one signal of one port on one block: a concrete connection
// endpoint after a schema.Point has been resolved and (if unindexed)
// flattened to its individual signals.
type sigRef struct {
	block *design.Block
	port  *design.Port
	index uint
}

// resolvePoint resolves a schema.Point against the block currently being
// elaborated: an empty Module names one of this block's own boundary ports,
// a named Module names a direct child's boundary port (§4.7 step 6 operates
// one level of hierarchy at a time).
func resolvePoint(block *design.Block, pt schema.Point) (*design.Block, *design.Port, error) {
	owner := block

	if pt.Module.HasValue() {
		childName := pt.Module.Unwrap()

		child, ok := block.Child(childName)
		if !ok {
			return nil, nil, fmt.Errorf("undefined reference to child %q", childName)
		}

		owner = child.Block
	}

	port, ok := owner.Port(pt.PortName)
	if !ok {
		return nil, nil, fmt.Errorf("undefined reference to port %q", pt.PortName)
	}

	return owner, port, nil
}

// flattenPoint expands a resolved Point to its concrete signal list: one
// entry if a signal index was named, every signal in declaration order
// otherwise.
func flattenPoint(block *design.Block, pt schema.Point) ([]sigRef, schema.Role, error) {
	owner, port, err := resolvePoint(block, pt)
	if err != nil {
		return nil, 0, err
	}

	if pt.SignalIndex.HasValue() {
		idx := pt.SignalIndex.Unwrap()
		if idx >= port.SignalCount {
			return nil, 0, fmt.Errorf("signal index %d out of range for port %q (width %d)", idx, port.Name, port.SignalCount)
		}

		return []sigRef{{block: owner, port: port, index: idx}}, port.Role, nil
	}

	out := make([]sigRef, port.SignalCount)
	for i := range out {
		out[i] = sigRef{block: owner, port: port, index: uint(i)}
	}

	return out, port.Role, nil
}

// connEndpoint is one ConnectEndpoint after resolution: either a flattened
// signal list or a constant source. The endpoint's initiator/target
// classification is returned alongside it by resolveEndpoint.
type connEndpoint struct {
	sigs    []sigRef
	isConst bool
	value   int64
}

func resolveEndpoint(block *design.Block, ep schema.ConnectEndpoint) (connEndpoint, bool, error) {
	if ep.IsConst() {
		return connEndpoint{isConst: true, value: ep.Const.Unwrap().Value}, true, nil
	}

	sigs, role, err := flattenPoint(block, ep.Point.Unwrap())
	if err != nil {
		return connEndpoint{}, false, err
	}

	// role == master classifies this endpoint as an initiator, regardless
	// of whether the port belongs to this block or to a child - §4.6's
	// "parent output / child input" and "parent input / child output"
	// phrasing both describe the same master/slave split.
	return connEndpoint{sigs: sigs}, role == schema.RoleMaster, nil
}

// wireSignals marks one driven signal, rejecting a second driver (invariant
// 2: "every target signal has exactly one driver, except where the driver
// is a constant").
func wireSignals(block *design.Block, driver, target sigRef, hasConst bool, constVal int64, explicit bool) (*design.Connection, error) {
	if target.port.Driven[target.index] {
		return nil, fmt.Errorf("signal %d of port %q already has a driver", target.index, target.port.Name)
	}

	if !hasConst {
		if err := checkLeafRoleCompatibility(driver.port, target.port); err != nil {
			return nil, err
		}
	}

	target.port.Driven[target.index] = true

	if explicit && !target.port.Principal {
		target.port.Explicit[target.index] = true
	}

	if !hasConst && explicit && !driver.port.Principal {
		driver.port.Explicit[driver.index] = true
	}

	c := &design.Connection{
		TargetBlock:  target.block,
		TargetPort:   target.port,
		TargetSignal: target.index,
		HasConst:     hasConst,
	}

	if hasConst {
		c.Const = constVal
	} else {
		c.DriverBlock = driver.block
		c.DriverPort = driver.port
		c.DriverSignal = driver.index
	}

	block.Connections = append(block.Connections, c)

	return c, nil
}

// checkLeafRoleCompatibility enforces invariant 2's "connection role/driver
// compatibility" at full fidelity for two interconnect-typed ports: every
// leaf signal's net role (driver.port.LeafRoles, resolved per §4.4 through
// His reference nesting) must be the opposite of its counterpart on the
// target side. A primitive port (LeafRoles nil) has nothing to check.
func checkLeafRoleCompatibility(driver, target *design.Port) error {
	if driver.Interconnect == nil || target.Interconnect == nil {
		return nil
	}

	if len(driver.LeafRoles) != len(target.LeafRoles) {
		return fmt.Errorf("port %q and %q carry mismatched interconnect leaf counts (%d vs %d)",
			driver.Name, target.Name, len(driver.LeafRoles), len(target.LeafRoles))
	}

	for i, dr := range driver.LeafRoles {
		if dr == target.LeafRoles[i] {
			return fmt.Errorf("port %q and %q disagree on leaf signal %d direction (both role %d)",
				driver.Name, target.Name, i, dr)
		}
	}

	return nil
}

// wireConnect resolves and wires one explicit Connect (§4.6 step 6).
func wireConnect(block *design.Block, connect *schema.Connect) error {
	var initiators, targets []connEndpoint

	numInitEndpoints, numTargEndpoints := 0, 0

	for _, ep := range connect.Points {
		resolved, isInitiator, err := resolveEndpoint(block, ep)
		if err != nil {
			return fmt.Errorf("%s: %w", connect.Pos, err)
		}

		if resolved.isConst {
			initiators = append(initiators, resolved)
			numInitEndpoints++

			continue
		}

		if isInitiator {
			initiators = append(initiators, resolved)
			numInitEndpoints++
		} else {
			targets = append(targets, resolved)
			numTargEndpoints++
		}
	}

	var initFlat, targFlat []sigRef

	for _, e := range initiators {
		initFlat = append(initFlat, e.sigs...)
	}

	for _, e := range targets {
		targFlat = append(targFlat, e.sigs...)
	}

	if len(initiators) == 0 || len(targets) == 0 {
		return fmt.Errorf("%s: Connect needs at least one initiator and one target", connect.Pos)
	}

	if len(initiators) == 1 && initiators[0].isConst {
		for _, t := range targFlat {
			if !t.port.IsPrimitive() {
				return fmt.Errorf("%s: constant source is only legal against a primitive target, port %q is not", connect.Pos, t.port.Name)
			}

			if _, err := wireSignals(block, sigRef{}, t, true, initiators[0].value, true); err != nil {
				return fmt.Errorf("%s: %w", connect.Pos, err)
			}
		}

		return nil
	}

	if numInitEndpoints > 1 && numTargEndpoints > 1 && len(initFlat) != len(targFlat) {
		return fmt.Errorf("%s: many-to-many Connect with unequal signal counts (%d initiator signals, %d target signals)",
			connect.Pos, len(initFlat), len(targFlat))
	}

	if len(initFlat) == 0 {
		return fmt.Errorf("%s: Connect has no initiator signals", connect.Pos)
	}

	for i, t := range targFlat {
		driver := initFlat[i%len(initFlat)]

		if _, err := wireSignals(block, driver, t, false, 0, true); err != nil {
			return fmt.Errorf("%s: %w", connect.Pos, err)
		}
	}

	return nil
}

// distributeClkRst wires every direct child's unconnected principal
// clock/reset port from this block's own distribution root (§4.7 step 7).
func distributeClkRst(block *design.Block, clk bool) error {
	var root sigRef

	rootPoint := block.ClkRoot
	principal := block.PrincipalClk

	if !clk {
		rootPoint = block.RstRoot
		principal = block.PrincipalRst
	}

	switch {
	case rootPoint != nil:
		root = sigRef{block: rootPoint.Block, port: rootPoint.Port, index: rootPoint.Signal}
	case principal != nil:
		root = sigRef{block: block, port: principal, index: 0}
	default:
		return nil
	}

	for _, child := range block.Children {
		target := child.Block.PrincipalClk
		if !clk {
			target = child.Block.PrincipalRst
		}

		if target == nil || target.Driven[0] {
			continue
		}

		if _, err := wireSignals(block, root, sigRef{block: child.Block, port: target, index: 0}, false, 0, false); err != nil {
			return err
		}
	}

	return nil
}

// implicitCandidate is one port, with its owning block, eligible to
// auto-connect (§4.7 steps 8-9); runImplicitPass buckets candidates by
// matching name and type (strict pass) or just matching type (relaxed pass).
type implicitCandidate struct {
	block *design.Block
	port  *design.Port
}

// runImplicitPass auto-wires every still-untouched port reachable from
// block (its own boundary ports and its direct children's), grouping by
// name+type (strict=true) or by type alone (strict=false), and never
// pairing two ports owned by the same block (§4.7 steps 8-9).
func runImplicitPass(block *design.Block, strict bool, rpt *report.Report) error {
	var candidates []implicitCandidate

	for _, p := range block.Ports {
		candidates = append(candidates, implicitCandidate{block: block, port: p})
	}

	for _, child := range block.Children {
		for _, p := range child.Block.Ports {
			candidates = append(candidates, implicitCandidate{block: child.Block, port: p})
		}
	}

	groups := map[string][]implicitCandidate{}
	var order []string

	for _, c := range candidates {
		if !untouched(c.port) {
			continue
		}

		key := typeKey(c.port)
		if strict {
			key = c.port.Name + "\x00" + key
		}

		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], c)
	}

	for _, key := range order {
		group := groups[key]

		var initiators, targets []implicitCandidate

		for _, c := range group {
			if c.port.Role == schema.RoleMaster {
				initiators = append(initiators, c)
			} else {
				targets = append(targets, c)
			}
		}

		if len(initiators) == 0 || len(targets) == 0 {
			continue
		}

		if err := wireImplicitGroup(block, initiators, targets, rpt); err != nil {
			return err
		}
	}

	return nil
}

func typeKey(p *design.Port) string {
	if p.IsPrimitive() {
		return fmt.Sprintf("primitive:%d", p.Width)
	}

	return "ic:" + p.Interconnect.Name
}

// wireImplicitGroup applies the same fan-out wrap rule explicit Connects
// use, flattening each candidate port to its signals and skipping any pair
// that would wire a block to itself.
func wireImplicitGroup(block *design.Block, initiators, targets []implicitCandidate, rpt *report.Report) error {
	var initFlat, targFlat []sigRef

	for _, c := range initiators {
		for i := uint(0); i < c.port.SignalCount; i++ {
			initFlat = append(initFlat, sigRef{block: c.block, port: c.port, index: i})
		}
	}

	for _, c := range targets {
		for i := uint(0); i < c.port.SignalCount; i++ {
			targFlat = append(targFlat, sigRef{block: c.block, port: c.port, index: i})
		}
	}

	if len(initFlat) == 0 || len(targFlat) == 0 {
		return nil
	}

	for i, t := range targFlat {
		for attempt := 0; attempt < len(initFlat); attempt++ {
			driver := initFlat[(i+attempt)%len(initFlat)]

			if driver.block == t.block {
				continue
			}

			if t.port.Driven[t.index] {
				break
			}

			if _, err := wireSignals(block, driver, t, false, 0, false); err != nil {
				if rpt != nil {
					rpt.Warnf(report.Cat("elaborate", "module", "connection"), srcpos.Pos{},
						"implicit connection of %q.%q[%d] skipped: %v", t.block.Name, t.port.Name, t.index, err)
				}
			}

			break
		}
	}

	return nil
}
