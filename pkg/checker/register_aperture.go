package checker

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
)

func init() {
	Register("check_register_aperture_reachability", checkRegisterApertureReachability)
}

// reachCtx memoizes the parent blocks of every Block instantiated anywhere
// in the project, since a Block (keyed by Mod name) may be the child of
// several distinct parents, or none if it's a top.
type reachCtx struct {
	parentsOf map[*design.Block][]*design.Block
}

func buildReachCtx(proj *design.Project) *reachCtx {
	ctx := &reachCtx{parentsOf: map[*design.Block][]*design.Block{}}

	for _, b := range proj.Blocks {
		for _, child := range b.Children {
			ctx.parentsOf[child.Block] = append(ctx.parentsOf[child.Block], b)
		}
	}

	return ctx
}

// checkRegisterApertureReachability is the one built-in check named by the
// specification (§4.10: "flag registers unreachable"): for every register in
// every block, verify its end-address is covered by some chain of
// AddressMap targets/initiators and Connections all the way up to a block
// with no parent (the top). Each unreachable register is reported
// individually rather than as a block-level aggregate, so a fix can target
// the specific over-aperture instance.
func checkRegisterApertureReachability(proj *design.Project) ([]RuleViolation, error) {
	ctx := buildReachCtx(proj)

	var out []RuleViolation

	for _, b := range proj.Blocks {
		for _, g := range b.RegisterGroups {
			for _, r := range g.Registers {
				high := r.EndAddr()
				if high == 0 {
					continue
				}

				if !reachableFromTop(ctx, b, high) {
					out = append(out, RuleViolation{
						Node:      r,
						CheckName: "check_register_aperture_reachability",
						Message: fmt.Sprintf("register %q in block %q (end-address %#x) is not reachable from the top via any AddressMap chain",
							r.Name, b.Name, high),
					})
				}
			}
		}
	}

	return out, nil
}

// reachableFromTop walks upward from block, requiring at least one parent
// whose AddressMap connects a Target (of aperture >= required) straight
// through to block, and whose corresponding Initiator is itself reachable.
// A block with no parent anywhere in the project is, by definition, a top
// and trivially reachable.
func reachableFromTop(ctx *reachCtx, block *design.Block, required int64) bool {
	parents := ctx.parentsOf[block]
	if len(parents) == 0 {
		return true
	}

	for _, parent := range parents {
		if parent.AddressMap == nil {
			continue
		}

		for _, t := range parent.AddressMap.Targets {
			if t.Aperture < required {
				continue
			}

			if !connectsOnwardTo(parent, t, block) {
				continue
			}

			for _, e := range parent.AddressMap.Edges {
				if e.Target != t {
					continue
				}

				if !t.InWindow(e.Initiator) {
					continue
				}

				if reachableFromTop(ctx, parent, 1) {
					return true
				}
			}
		}
	}

	return false
}

// connectsOnwardTo reports whether parent has a Connection driving target's
// boundary port out to some signal owned by childBlock.
func connectsOnwardTo(parent *design.Block, target *design.AddressMapTarget, childBlock *design.Block) bool {
	for _, c := range parent.Connections {
		if c.HasConst || c.DriverBlock != parent || c.DriverPort != target.Port {
			continue
		}

		if c.TargetBlock == childBlock {
			return true
		}
	}

	return false
}
