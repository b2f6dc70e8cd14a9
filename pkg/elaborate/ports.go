package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/schema"
)

// buildPort elaborates one boundary HisRef into a design.Port (§4.7 step
// 2). "clock" and "reset" are treated as built-in primitive 1-bit types
// rather than requiring a user-declared His, since §4.7 step 3 injects
// clk/rst ports of these types without any His declaring them.
func buildPort(href *schema.HisRef, ics map[string]*design.Interconnect) (*design.Port, error) {
	count := href.Count
	if count == 0 {
		count = 1
	}

	p := &design.Port{Name: href.Name, Role: href.Role, SignalCount: count}

	switch href.Type {
	case "clock", "reset":
		p.Width = 1
	default:
		ic, ok := ics[href.Type]
		if !ok {
			return nil, fmt.Errorf("%s: undefined reference to His %q", href.Pos, href.Type)
		}

		p.Interconnect = ic
		p.LeafRoles = leafRoles(ic, href.Role)
	}

	p.Explicit = make([]bool, count)
	p.Driven = make([]bool, count)

	return p, nil
}

// newPrincipalPort builds an automatically-injected principal clk/rst port
// (§4.7 step 3): a slave (input) 1-bit primitive signal marked principal.
func newPrincipalPort(name string) *design.Port {
	return &design.Port{
		Name:        name,
		Role:        schema.RoleSlave,
		SignalCount: 1,
		Width:       1,
		Principal:   true,
		Explicit:    make([]bool, 1),
		Driven:      make([]bool, 1),
	}
}

// untouched reports whether every signal of a port is both undriven and
// unmarked by an explicit connection - the "completely unconnected" test
// implicit inference restricts itself to (§4.7 steps 8-9).
func untouched(p *design.Port) bool {
	for i := range p.Driven {
		if p.Driven[i] || p.Explicit[i] {
			return false
		}
	}

	return true
}
