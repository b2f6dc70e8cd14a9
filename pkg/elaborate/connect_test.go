package elaborate

import (
	"testing"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

func primitivePort(name string, role schema.Role) *design.Port {
	return &design.Port{
		Name:        name,
		Role:        role,
		SignalCount: 1,
		Width:       1,
		Explicit:    make([]bool, 1),
		Driven:      make([]bool, 1),
	}
}

func pointEndpoint(port string) schema.ConnectEndpoint {
	return schema.ConnectEndpoint{Point: util.Some(schema.Point{PortName: port})}
}

// TestConnectFanOut is §8 scenario 3: one initiator wired to several
// targets fans the single driver out to each of them.
func TestConnectFanOut(t *testing.T) {
	block := &design.Block{Name: "b"}
	a := primitivePort("a", schema.RoleMaster)
	b0 := primitivePort("b0", schema.RoleSlave)
	b1 := primitivePort("b1", schema.RoleSlave)
	block.AddPort(a)
	block.AddPort(b0)
	block.AddPort(b1)

	connect := &schema.Connect{Points: []schema.ConnectEndpoint{
		pointEndpoint("a"), pointEndpoint("b0"), pointEndpoint("b1"),
	}}

	if err := wireConnect(block, connect); err != nil {
		t.Fatalf("wireConnect: %v", err)
	}

	if len(block.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(block.Connections))
	}

	for _, c := range block.Connections {
		if c.DriverPort != a {
			t.Errorf("connection to %q driven by %q, want %q", c.TargetPort.Name, c.DriverPort.Name, "a")
		}
	}

	if !b0.Driven[0] || !b1.Driven[0] {
		t.Errorf("both targets should be marked driven")
	}
}

// TestConnectManyToManyRequiresEqualCounts is §4.7 step 6's many-to-many
// rejection: with more than one initiator endpoint and more than one target
// endpoint, the flattened initiator and target signal counts must match.
func TestConnectManyToManyRequiresEqualCounts(t *testing.T) {
	block := &design.Block{Name: "b"}
	a0 := primitivePort("a0", schema.RoleMaster)
	a1 := primitivePort("a1", schema.RoleMaster)
	b0 := primitivePort("b0", schema.RoleSlave)
	b1 := primitivePort("b1", schema.RoleSlave)
	b2 := primitivePort("b2", schema.RoleSlave)
	block.AddPort(a0)
	block.AddPort(a1)
	block.AddPort(b0)
	block.AddPort(b1)
	block.AddPort(b2)

	connect := &schema.Connect{Points: []schema.ConnectEndpoint{
		pointEndpoint("a0"), pointEndpoint("a1"),
		pointEndpoint("b0"), pointEndpoint("b1"), pointEndpoint("b2"),
	}}

	if err := wireConnect(block, connect); err == nil {
		t.Fatal("expected a many-to-many count mismatch error, got nil")
	}
}

// TestConnectConstSource is §4.6's literal-initiator case: a constant
// source must wire against a primitive target only, with no DriverPort.
func TestConnectConstSource(t *testing.T) {
	block := &design.Block{Name: "b"}
	target := primitivePort("t", schema.RoleSlave)
	block.AddPort(target)

	connect := &schema.Connect{Points: []schema.ConnectEndpoint{
		{Const: util.Some(schema.Const{Value: 7})},
		pointEndpoint("t"),
	}}

	if err := wireConnect(block, connect); err != nil {
		t.Fatalf("wireConnect: %v", err)
	}

	if len(block.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(block.Connections))
	}

	c := block.Connections[0]
	if !c.HasConst || c.Const != 7 || c.DriverPort != nil {
		t.Errorf("expected a const connection with value 7 and no driver port, got %+v", c)
	}
}
