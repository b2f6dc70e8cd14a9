package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

// moduleElaborator expands one Mod hierarchy into design.Block trees (§4.7),
// caching one Block per distinct Mod name so a type instantiated many times
// elaborates once (invariant 1 note on Project.Blocks).
type moduleElaborator struct {
	idx     *Index
	ics     map[string]*design.Interconnect
	defines map[string]*design.Define
	rpt     *report.Report
	proj    *design.Project
	maxDepth util.Option[uint]

	cache map[string]*design.Block
}

// ElaborateModule is the entry point for §4.7: elaborate the Mod named
// topName into a registered design.Block tree, recursively expanding its
// children (subject to maxDepth), wiring connections, distributing
// clock/reset, attaching register maps and address maps.
func ElaborateModule(idx *Index, ics map[string]*design.Interconnect, defines map[string]*design.Define,
	topName string, maxDepth util.Option[uint], proj *design.Project, rpt *report.Report) (*design.Block, error) {
	me := &moduleElaborator{
		idx:      idx,
		ics:      ics,
		defines:  defines,
		rpt:      rpt,
		proj:     proj,
		maxDepth: maxDepth,
		cache:    map[string]*design.Block{},
	}

	return me.elaborate(topName, 0)
}

// elaborate builds (or returns the cached) Block for modName. depth is the
// instantiation depth from the top module, used to enforce max_depth.
func (me *moduleElaborator) elaborate(modName string, depth uint) (*design.Block, error) {
	if b, ok := me.cache[modName]; ok {
		return b, nil
	}

	mod, ok := me.idx.Mods[modName]
	if !ok {
		return nil, fmt.Errorf("undefined reference to Mod %q", modName)
	}

	// Step 1: create the block.
	block := &design.Block{
		Name:        modName,
		Description: mod.ShortDescription,
		SourceFile:  mod.Pos.File,
		Options:     map[string]bool(mod.Opts),
	}

	block.Pos = mod.Pos

	// Cache before recursing so a self-referential instantiation cannot
	// recurse forever. No stage rejects a Mod instantiation cycle: an
	// instance of a Mod still being elaborated gets this partially built
	// Block.
	me.cache[modName] = block

	// Step 2: create boundary ports from the Mod's HisRefs.
	for _, href := range mod.Ports {
		p, err := buildPort(href, me.ics)
		if err != nil {
			return nil, err
		}

		block.AddPort(p)
	}

	// Step 3: inject principal clock/reset ports unless suppressed; step 4
	// only runs (scanning declared ports for AUTO_CLK/AUTO_RST) when step 3
	// did not.
	if !mod.HasOption("NO_CLK_RST") && !mod.HasOption("NO_AUTO_CLK_RST") {
		clk := newPrincipalPort("clk")
		block.AddPort(clk)
		block.PrincipalClk = clk

		rst := newPrincipalPort("rst")
		block.AddPort(rst)
		block.PrincipalRst = rst
	} else {
		for _, href := range mod.Ports {
			p, ok := block.Port(href.Name)
			if !ok {
				continue
			}

			if href.HasOption("AUTO_CLK") {
				p.Principal = true
				block.PrincipalClk = p
			}

			if href.HasOption("AUTO_RST") {
				p.Principal = true
				block.PrincipalRst = p
			}
		}
	}

	// Step 4: resolve clk_root/rst_root, used only for step 7's intra-block
	// distribution; the externally visible principal is still whichever
	// port step 3 injected or the AUTO_CLK/AUTO_RST scan nominated.
	if mod.ClkRoot.HasValue() {
		rp, err := me.resolveRootPoint(block, mod.ClkRoot.Unwrap())
		if err != nil {
			return nil, err
		}

		block.ClkRoot = rp
	}

	if mod.RstRoot.HasValue() {
		rp, err := me.resolveRootPoint(block, mod.RstRoot.Unwrap())
		if err != nil {
			return nil, err
		}

		block.RstRoot = rp
	}

	// Step 5: expand children, honoring max_depth as a boundary-only cutoff.
	nextDepth := depth + 1
	boundaryOnly := me.maxDepth.HasValue() && nextDepth > me.maxDepth.Unwrap()

	for _, mi := range mod.Modules {
		count := mi.Count
		if count == 0 {
			count = 1
		}

		for i := uint(0); i < count; i++ {
			name := mi.InstanceName
			if count > 1 {
				name = fmt.Sprintf("%s_%d", mi.InstanceName, i)
			}

			var childBlock *design.Block
			var err error

			if boundaryOnly {
				childBlock, err = me.elaborateBoundaryOnly(mi.ModType)
			} else {
				childBlock, err = me.elaborate(mi.ModType, nextDepth)
			}

			if err != nil {
				return nil, fmt.Errorf("%s: instance %q: %w", mi.Pos, name, err)
			}

			block.Children = append(block.Children, &design.ChildInstance{
				InstanceName: name,
				Block:        childBlock,
				BoundaryOnly: boundaryOnly,
			})
		}
	}

	// Step 6: explicit connections.
	for _, c := range mod.Connections {
		if err := wireConnect(block, c); err != nil {
			return nil, err
		}
	}

	// Step 7: automatic clock/reset distribution to children.
	if err := distributeClkRst(block, true); err != nil {
		return nil, err
	}

	if err := distributeClkRst(block, false); err != nil {
		return nil, err
	}

	// Steps 8-9: implicit inference, strict pass then relaxed pass.
	if err := runImplicitPass(block, true, me.rpt); err != nil {
		return nil, err
	}

	if err := runImplicitPass(block, false, me.rpt); err != nil {
		return nil, err
	}

	// Step 10: suppress warnings for ports named in Defaults.
	defaulted := map[string]bool{}

	for _, pt := range mod.Defaults {
		_, port, err := resolvePoint(block, pt)
		if err != nil {
			return nil, fmt.Errorf("%s: Default: %w", mod.Pos, err)
		}

		defaulted[pointPath(block, pt, port).String()] = true
	}

	// Step 11: warn on every remaining unconnected or under-populated
	// non-default port.
	warnUnconnected(me.rpt, block, defaulted)

	// Step 12: attach the register map, sourced from whichever file this
	// Mod's register description was declared in.
	groups, err := ElaborateRegisters(me.idx, me.idx.FileConfig[mod.Pos.File], me.idx.FileGroupNames[mod.Pos.File],
		definesForFile(me.idx.AllDefines, mod.Pos.File), me.rpt)
	if err != nil {
		return nil, err
	}

	block.RegisterGroups = groups

	// Step 13: elaborate the address map, when this Mod declares one.
	if len(mod.Initiators) > 0 || len(mod.Targets) > 0 {
		am, err := elaborateAddressMap(block, mod)
		if err != nil {
			return nil, err
		}

		block.AddressMap = am
	}

	me.proj.AttachBlock(block)

	return block, nil
}

// elaborateBoundaryOnly builds a Block carrying only boundary ports (no
// children, connections, or register maps), used past a max_depth cutoff
// (§4.7 step 5, §6 "max_depth").
func (me *moduleElaborator) elaborateBoundaryOnly(modName string) (*design.Block, error) {
	key := "boundary:" + modName
	if b, ok := me.cache[key]; ok {
		return b, nil
	}

	mod, ok := me.idx.Mods[modName]
	if !ok {
		return nil, fmt.Errorf("undefined reference to Mod %q", modName)
	}

	block := &design.Block{Name: modName, SourceFile: mod.Pos.File, Options: map[string]bool(mod.Opts)}

	for _, href := range mod.Ports {
		p, err := buildPort(href, me.ics)
		if err != nil {
			return nil, err
		}

		block.AddPort(p)
	}

	if !mod.HasOption("NO_CLK_RST") && !mod.HasOption("NO_AUTO_CLK_RST") {
		clk := newPrincipalPort("clk")
		block.AddPort(clk)
		block.PrincipalClk = clk

		rst := newPrincipalPort("rst")
		block.AddPort(rst)
		block.PrincipalRst = rst
	} else {
		for _, href := range mod.Ports {
			p, ok := block.Port(href.Name)
			if !ok {
				continue
			}

			if href.HasOption("AUTO_CLK") {
				p.Principal = true
				block.PrincipalClk = p
			}

			if href.HasOption("AUTO_RST") {
				p.Principal = true
				block.PrincipalRst = p
			}
		}
	}

	me.cache[key] = block
	me.proj.AttachBlock(block)

	return block, nil
}

// resolveRootPoint resolves a clk_root/rst_root Point, which must name a
// child's output port.
func (me *moduleElaborator) resolveRootPoint(block *design.Block, pt schema.Point) (*design.RootPoint, error) {
	owner, port, err := resolvePoint(block, pt)
	if err != nil {
		return nil, err
	}

	idx := uint(0)
	if pt.SignalIndex.HasValue() {
		idx = pt.SignalIndex.Unwrap()
	}

	return &design.RootPoint{Block: owner, Port: port, Signal: idx}, nil
}

// pointPath builds the dotted qualified name of a resolved Point, rooted at
// the block currently being elaborated: "block.portName" when the Point
// names one of block's own ports, or "block.childInstance.portName" when it
// names a direct child's (§4.7 step 6 "resolves one hierarchy level at a
// time" - a Point never reaches more than one level deep, so a relative
// Path of at most three segments is always enough to name it).
func pointPath(block *design.Block, pt schema.Point, port *design.Port) util.Path {
	path := util.NewRelativePath(block.Name)

	if pt.Module.HasValue() {
		path = path.Extend(pt.Module.Unwrap())
	}

	return path.Extend(port.Name)
}

// definesForFile filters Defines to those whose register set lives in the
// same source file as the Mod being elaborated (§4.6 step 6; Defines name a
// (group, reg) pair rather than a file, so file co-location is how a
// Define is associated with one Mod's register set).
func definesForFile(all []*schema.Define, file string) []*schema.Define {
	var out []*schema.Define

	for _, d := range all {
		if d.Pos.File == file {
			out = append(out, d)
		}
	}

	return out
}

// warnUnconnected reports every slave-roled (input) port, on this block or
// a direct child, that is neither fully driven nor named in a Default;
// master-roled ports are not checked. It distinguishes a
// completely unconnected port from an under-populated one (§4.7 step 11).
func warnUnconnected(rpt *report.Report, block *design.Block, defaulted map[string]bool) {
	if rpt == nil {
		return
	}

	check := func(path util.Path, p *design.Port) {
		if p.Role != schema.RoleSlave {
			return
		}

		qualified := path.String()

		if defaulted[qualified] {
			return
		}

		if p.AllDriven() {
			return
		}

		if !p.AnyDriven() {
			rpt.Warnf(report.Cat("elaborate", "module", "connection"), block.Pos,
				"port %q is unconnected", qualified)
		} else {
			rpt.Warnf(report.Cat("elaborate", "module", "connection"), block.Pos,
				"port %q is under-populated", qualified)
		}
	}

	blockPath := util.NewRelativePath(block.Name)

	for _, p := range block.Ports {
		if p.Role == schema.RoleMaster {
			continue
		}

		check(blockPath.Extend(p.Name), p)
	}

	for _, child := range block.Children {
		childPath := blockPath.Extend(child.InstanceName)

		for _, p := range child.Block.Ports {
			check(childPath.Extend(p.Name), p)
		}
	}
}
