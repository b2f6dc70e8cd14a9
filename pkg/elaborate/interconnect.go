package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/schema"
)

type color uint8

const (
	white color = iota
	gray
	black
)

// interconnectBuilder elaborates every His into a design.Interconnect,
// caching results so a His referenced from many places is only elaborated
// once, and using explicit visit-coloring to reject cyclic His references
// (§4.4, §9 "Cyclic His definitions must be detected and rejected; represent
// His graph with explicit visit-coloring during elaboration").
type interconnectBuilder struct {
	idx    *Index
	colors map[string]color
	built  map[string]*design.Interconnect
}

// ElaborateInterconnects elaborates every His record in idx, returning them
// keyed by name. Cycles in His references are a fatal error (§4.4).
func ElaborateInterconnects(idx *Index) (map[string]*design.Interconnect, error) {
	b := &interconnectBuilder{
		idx:    idx,
		colors: make(map[string]color),
		built:  make(map[string]*design.Interconnect),
	}

	for name := range idx.His {
		if _, err := b.build(name); err != nil {
			return nil, err
		}
	}

	return b.built, nil
}

func (b *interconnectBuilder) build(name string) (*design.Interconnect, error) {
	if ic, ok := b.built[name]; ok {
		return ic, nil
	}

	switch b.colors[name] {
	case gray:
		return nil, fmt.Errorf("cyclic His reference involving %q", name)
	case black:
		// Should be unreachable (built would already hold it), but guard
		// against the map being cleared unexpectedly.
		return nil, fmt.Errorf("internal error: His %q marked visited but not built", name)
	}

	his, ok := b.idx.His[name]
	if !ok {
		return nil, fmt.Errorf("undefined reference to His %q", name)
	}

	b.colors[name] = gray

	ic := &design.Interconnect{Name: name}

	for _, comp := range his.Components {
		dc, err := b.buildComponent(comp)
		if err != nil {
			return nil, err
		}

		ic.Components = append(ic.Components, dc)
	}

	b.colors[name] = black
	b.built[name] = ic

	return ic, nil
}

func (b *interconnectBuilder) buildComponent(comp schema.HisComponent) (*design.InterconnectComponent, error) {
	switch v := comp.(type) {
	case *schema.Port:
		return &design.InterconnectComponent{
			Name:   v.Name,
			Simple: true,
			Width:  v.Width,
			Role:   v.Role,
			Enums:  v.Enums,
		}, nil
	case *schema.HisRef:
		child, err := b.build(v.Type)
		if err != nil {
			return nil, err
		}

		// Net role of every leaf signal reached through this reference is
		// the XOR of roles along the chain: a slave-roled link flips every
		// descendant's role (§4.4). We don't mutate the shared child
		// Interconnect in place (it may be referenced from elsewhere with a
		// different role); instead the flip is recorded on this component
		// and resolved lazily by callers that walk net role (ResolveRole
		// below) rather than rewriting the whole subtree per reference.
		return &design.InterconnectComponent{
			Name:    v.Name,
			Simple:  false,
			Role:    v.Role,
			Complex: child,
			Count:   v.Count,
		}, nil
	default:
		return nil, fmt.Errorf("unknown His component type %T", comp)
	}
}

// ResolveRole computes the net role of a leaf signal reached by walking
// down through a chain of complex components, starting at role r and
// flipping at every slave-roled link (§4.4: "slave inverts").
func ResolveRole(r schema.Role, chain ...schema.Role) schema.Role {
	for _, link := range chain {
		if link == schema.RoleSlave {
			r = r.Flip()
		}
	}

	return r
}

// leafRoles walks ic's component tree, flattening every leaf signal's net
// role as seen by a boundary port declared with role base (invariant 2:
// every Connect endpoint's driver/target classification must reflect this
// net role, not a component's own bare declaration). base is itself the
// first link in the chain ResolveRole folds over; a nested complex
// component then contributes its own role as the next link for its
// descendants, so a slave-roled link anywhere in the chain flips every leaf
// beneath it, matching how the component was built in buildComponent above.
func leafRoles(ic *design.Interconnect, base schema.Role) []schema.Role {
	var out []schema.Role

	for _, c := range ic.Components {
		net := ResolveRole(c.Role, base)

		if c.Simple {
			out = append(out, net)
			continue
		}

		out = append(out, leafRoles(c.Complex, net)...)
	}

	return out
}
