package elaborate

import (
	"strings"
	"testing"

	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

func groupIndex(g *schema.Group) *Index {
	return &Index{
		Groups: map[string]*schema.Group{g.Name: g},
	}
}

// TestRegisterOverlapDetected is §8 scenario 5 verbatim: a BYTE-mode group
// with Reg a at byte 0 (nominal width 32 bits = 4 bytes) and Reg b at byte
// 2 overlaps, and the error must name both registers.
func TestRegisterOverlapDetected(t *testing.T) {
	g := &schema.Group{
		Node: schema.Node{Name: "g", Opts: schema.NewOptions("BYTE")},
		Regs: []*schema.Reg{
			{Node: schema.Node{Name: "a"}, Array: 1},
			{Node: schema.Node{Name: "b"}, Array: 1, Addr: util.Some(int64(2))},
		},
	}

	idx := groupIndex(g)
	cfg := synthesizeConfig([]string{"g"})

	_, err := ElaborateRegisters(idx, cfg, nil, nil, &report.Report{})
	if err == nil {
		t.Fatal("expected an overlap error, got nil")
	}

	if !strings.Contains(err.Error(), "\"a\"") || !strings.Contains(err.Error(), "\"b\"") {
		t.Errorf("error %q does not name both registers", err.Error())
	}
}

// TestRegisterArrayOneMatchesBare checks the §8 boundary behavior: "array =
// 1 register placement is identical to bare placement."
func TestRegisterArrayOneMatchesBare(t *testing.T) {
	bare := &schema.Group{
		Node: schema.Node{Name: "g"},
		Regs: []*schema.Reg{{Node: schema.Node{Name: "r"}}},
	}
	arrayOne := &schema.Group{
		Node: schema.Node{Name: "g"},
		Regs: []*schema.Reg{{Node: schema.Node{Name: "r"}, Array: 1}},
	}

	bareGroups, err := ElaborateRegisters(groupIndex(bare), synthesizeConfig([]string{"g"}), nil, nil, &report.Report{})
	if err != nil {
		t.Fatalf("bare: %v", err)
	}

	arrGroups, err := ElaborateRegisters(groupIndex(arrayOne), synthesizeConfig([]string{"g"}), nil, nil, &report.Report{})
	if err != nil {
		t.Fatalf("array=1: %v", err)
	}

	if len(bareGroups[0].Registers) != 1 || len(arrGroups[0].Registers) != 1 {
		t.Fatalf("expected exactly one placed register each")
	}

	br, ar := bareGroups[0].Registers[0], arrGroups[0].Registers[0]
	if br.Name != ar.Name || br.Addr != ar.Addr || br.Width != ar.Width {
		t.Errorf("array=1 placement %+v differs from bare placement %+v", ar, br)
	}
}

// TestByteModeVsWordModeAddressing is the §8 boundary behavior: "BYTE mode
// treats addr: 4 as byte 4; word mode treats it as byte 16."
func TestByteModeVsWordModeAddressing(t *testing.T) {
	byteGroup := &schema.Group{
		Node: schema.Node{Name: "g", Opts: schema.NewOptions("BYTE")},
		Regs: []*schema.Reg{{Node: schema.Node{Name: "r"}, Addr: util.Some(int64(4))}},
	}
	wordGroup := &schema.Group{
		Node: schema.Node{Name: "g"},
		Regs: []*schema.Reg{{Node: schema.Node{Name: "r"}, Addr: util.Some(int64(4))}},
	}

	bg, err := ElaborateRegisters(groupIndex(byteGroup), synthesizeConfig([]string{"g"}), nil, nil, &report.Report{})
	if err != nil {
		t.Fatalf("byte mode: %v", err)
	}

	wg, err := ElaborateRegisters(groupIndex(wordGroup), synthesizeConfig([]string{"g"}), nil, nil, &report.Report{})
	if err != nil {
		t.Fatalf("word mode: %v", err)
	}

	if bg[0].Registers[0].Addr != 4 {
		t.Errorf("BYTE mode addr = %d, want 4", bg[0].Registers[0].Addr)
	}

	if wg[0].Registers[0].Addr != 16 {
		t.Errorf("word mode addr = %d, want 16", wg[0].Registers[0].Addr)
	}
}
