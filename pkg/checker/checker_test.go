package checker

import (
	"strings"
	"testing"

	"github.com/bluwireless/blade/pkg/design"
)

// TestWaiverHashStability is §8's "Waiver hash stability" property:
// modifying a node's attributes must not change its hash; modifying its
// id, kind, originating check, or message must.
func TestWaiverHashStability(t *testing.T) {
	node := &design.Block{Name: "leaf"}
	proj := design.NewProject()
	proj.AttachBlock(node)

	before := Hash(node, "check_foo", "something is wrong")

	node.SetAttr("source_path", "/home/alice/project/leaf.bw")

	after := Hash(node, "check_foo", "something is wrong")
	if before != after {
		t.Errorf("hash changed after touching Attrs: %q -> %q", before, after)
	}

	if h := Hash(node, "check_bar", "something is wrong"); h == before {
		t.Errorf("hash did not change when check_name changed")
	}

	if h := Hash(node, "check_foo", "a different message"); h == before {
		t.Errorf("hash did not change when message changed")
	}

	other := &design.Block{Name: "leaf2"}
	proj.AttachBlock(other)

	if h := Hash(other, "check_foo", "something is wrong"); h == before {
		t.Errorf("hash did not change for a different node id")
	}
}

// TestParseWaiversDowngrades verifies waiver-file parsing (§6 "Waiver
// file"): comments, blank lines, and duplicate hashes are all handled, and
// a violation whose hash matches the parsed waiver is marked Waived when
// the waiver is applied the same way Run applies it.
func TestParseWaiversDowngrades(t *testing.T) {
	block := &design.Block{Name: "leaf"}
	proj := design.NewProject()
	proj.AttachBlock(block)

	want := Hash(block, "check_register_aperture_reachability", "unreachable register")

	waivers, err := ParseWaivers(strings.NewReader(want + " # known issue, tracked in TICKET-1\n\n# a standalone comment\n" + want + "\n"))
	if err != nil {
		t.Fatalf("ParseWaivers: %v", err)
	}

	if len(waivers) != 1 {
		t.Fatalf("expected duplicate hashes to collapse to one waiver, got %d", len(waivers))
	}

	violations := []RuleViolation{{Node: block, CheckName: "check_register_aperture_reachability", Message: "unreachable register"}}

	waived := map[string]bool{string(waivers[0]): true}
	for i := range violations {
		violations[i].Waived = waived[Hash(violations[i].Node, violations[i].CheckName, violations[i].Message)]
	}

	if !violations[0].Waived {
		t.Errorf("expected violation to be waived")
	}
}

// TestRegisterApertureReachability exercises §8 scenario 6's shape: a leaf
// block's register set must be reachable from the top through an
// AddressMap chain; a parent with no AddressMap at all leaves it
// unreachable, while a block with no parent (the top itself) is trivially
// reachable.
func TestRegisterApertureReachability(t *testing.T) {
	leaf := &design.Block{
		Name: "leaf",
		RegisterGroups: []*design.RegisterGroup{{
			Name:      "regs",
			Registers: []*design.Register{{Name: "scratch", Addr: 0x1C, Width: 32}},
		}},
	}

	top := &design.Block{
		Name:     "top",
		Children: []*design.ChildInstance{{InstanceName: "leaf0", Block: leaf}},
	}

	proj := design.NewProject()
	proj.AttachBlock(top)
	proj.AttachBlock(leaf)

	violations, err := checkRegisterApertureReachability(proj)
	if err != nil {
		t.Fatalf("checkRegisterApertureReachability: %v", err)
	}

	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation for the unreachable leaf register, got %d", len(violations))
	}

	if violations[0].Node.(*design.Register).Name != "scratch" {
		t.Errorf("violation attached to register %q, want scratch", violations[0].Node.(*design.Register).Name)
	}

	// A block with no parent anywhere (the project's own top) is
	// trivially reachable even though it has its own register set.
	topOnly := &design.Block{
		Name:           "standalone",
		RegisterGroups: leaf.RegisterGroups,
	}

	proj2 := design.NewProject()
	proj2.AttachBlock(topOnly)

	violations2, err := checkRegisterApertureReachability(proj2)
	if err != nil {
		t.Fatalf("checkRegisterApertureReachability: %v", err)
	}

	if len(violations2) != 0 {
		t.Errorf("expected no violations for a parentless block, got %d", len(violations2))
	}
}
