package design

// Project is the root of a design graph: it owns every principal node by
// id (invariant 1) and is produced once per build_project run (§5 "Shared
// resources ... the design Project (one per run; principal-node uniqueness
// enforced at attachment)").
type Project struct {
	nextID ID

	// Blocks holds every elaborated Block, keyed by the Mod name it was
	// elaborated from (a Mod with count > 1 or multiple ModInsts sharing a
	// type still elaborates to one Block per distinct Mod name; per-
	// instance state lives on ChildInstance).
	Blocks map[string]*Block

	// Top is the Block elaborated from the top_file's top-level Mod.
	Top *Block

	// Interconnects holds every elaborated His, keyed by name.
	Interconnects map[string]*Interconnect

	// Defines holds every resolved Define, keyed by name.
	Defines map[string]*Define

	// Commands holds every elaborated Inst, keyed by name.
	Commands map[string]*Command

	byID map[ID]GraphNode
}

// NewProject constructs an empty Project.
func NewProject() *Project {
	return &Project{
		Blocks:        make(map[string]*Block),
		Interconnects: make(map[string]*Interconnect),
		Defines:       make(map[string]*Define),
		Commands:      make(map[string]*Command),
		byID:          make(map[ID]GraphNode),
	}
}

// nextIDVal allocates the next unique principal id.
func (p *Project) nextIDVal() ID {
	p.nextID++
	return p.nextID
}

// attach assigns a fresh id to n (if it doesn't already have one) and
// registers it in the project's id table (invariant 1).
func (p *Project) attach(n GraphNode, kind Kind, base *Node) {
	if base.ID == 0 {
		base.ID = p.nextIDVal()
	}

	base.Kind = kind
	p.byID[base.ID] = n
}

// AttachBlock registers a Block and its transitive principal nodes
// (ports, register groups with their registers and fields, address map
// initiators/targets, connections) with fresh ids, and indexes it by name.
// Commands are not owned by a Block; they are attached via AttachCommand.
func (p *Project) AttachBlock(b *Block) *Block {
	p.attach(b, KindBlock, &b.Node)
	p.Blocks[b.Name] = b

	for _, port := range b.Ports {
		p.attach(port, KindPort, &port.Node)
	}

	for _, rg := range b.RegisterGroups {
		p.attach(rg, KindRegisterGroup, &rg.Node)

		for _, reg := range rg.Registers {
			p.attach(reg, KindRegister, &reg.Node)

			for _, f := range reg.Fields {
				p.attach(f, KindRegisterField, &f.Node)
			}
		}
	}

	if b.AddressMap != nil {
		am := b.AddressMap
		p.attach(am, KindAddressMap, &am.Node)

		for _, i := range am.Initiators {
			p.attach(i, KindAddressMapInitiator, &i.Node)
		}

		for _, t := range am.Targets {
			p.attach(t, KindAddressMapTarget, &t.Node)
		}
	}

	for _, c := range b.Connections {
		p.attach(c, KindConnection, &c.Node)
	}

	return b
}

// AttachInterconnect registers an Interconnect and its components.
func (p *Project) AttachInterconnect(ic *Interconnect) *Interconnect {
	p.attach(ic, KindInterconnect, &ic.Node)
	p.Interconnects[ic.Name] = ic

	for _, c := range ic.Components {
		p.attach(c, KindInterconnectComponent, &c.Node)
	}

	return ic
}

// AttachDefine registers a resolved Define.
func (p *Project) AttachDefine(d *Define) *Define {
	p.attach(d, KindDefine, &d.Node)
	p.Defines[d.Name] = d

	return d
}

// AttachCommand registers a top-level elaborated Command (one not owned by
// a Block's RegisterGroup/instruction set — instruction sets in this
// domain are project-global, mirroring how Defines are project-global).
func (p *Project) AttachCommand(c *Command) *Command {
	p.attach(c, KindCommand, &c.Node)
	p.Commands[c.Name] = c

	for _, f := range c.Fields {
		p.attach(f, KindCommandField, &f.Node)
	}

	return c
}

// Lookup resolves a principal id back to its graph node, used by the
// checker to report violations against a concrete node.
func (p *Project) Lookup(id ID) (GraphNode, bool) {
	n, ok := p.byID[id]
	return n, ok
}

// AllNodes returns every principal node attached to this project, in
// unspecified order. Used by checks that need to walk the whole graph.
func (p *Project) AllNodes() []GraphNode {
	out := make([]GraphNode, 0, len(p.byID))
	for _, n := range p.byID {
		out = append(out, n)
	}

	return out
}
