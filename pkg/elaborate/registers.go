package elaborate

import (
	"fmt"
	"strconv"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/report"
	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/srcpos"
)

const defaultUnitWord = 4 // bytes per addressing unit in word mode (§3 "Reg.array", §4.6 step 4)

// expandedReg is an intermediate, pre-placement register produced either
// directly from a schema.Reg or by the EVENT/SETCLEAR expansion rules
// (§4.6 step 3), carrying enough to drive placement (step 4) independently
// of its schema origin.
type expandedReg struct {
	name        string
	origName    string // name of the originating schema.Reg, for Define override matching
	pos         srcpos.Pos
	addr        *int64
	align       *int64
	array       uint
	blockAccess schema.AccessKind
	busAccess   schema.AccessKind
	instAccess  schema.AccessKind
	location    schema.Location
	fields      []*schema.Field
}

// expandReg applies the EVENT/SETCLEAR expansion rules (§4.6 step 3, §6
// "Event-expansion register access kinds" / "Set-clear expansion"). A
// register with neither option expands to itself unchanged.
func expandReg(r *schema.Reg) []*expandedReg {
	base := func(suffix string, bus schema.AccessKind) *expandedReg {
		return &expandedReg{
			name:        r.Name + suffix,
			origName:    r.Name,
			pos:         r.Pos,
			array:       r.Array,
			blockAccess: schema.AccessRW,
			busAccess:   bus,
			instAccess:  schema.AccessRW,
			location:    r.Location,
		}
	}

	switch {
	case r.HasOption("EVENT"):
		out := []*expandedReg{
			base("_rsta", schema.AccessRO),
			base("_msta", schema.AccessRO),
			base("_clear", schema.AccessWC),
			base("_enable", schema.AccessRW),
			base("_set", schema.AccessWS),
		}

		if r.HasOption("HAS_LEVEL") {
			out = append(out, base("_level", schema.AccessRW))
		}

		if r.HasOption("HAS_MODE") {
			out = append(out, base("_mode", schema.AccessRW))
		}

		return out
	case r.HasOption("SETCLEAR"):
		return []*expandedReg{
			base("", schema.AccessRW),
			base("_set", schema.AccessWS),
			base("_clear", schema.AccessWC),
		}
	default:
		e := &expandedReg{
			name:        r.Name,
			origName:    r.Name,
			pos:         r.Pos,
			array:       r.Array,
			blockAccess: r.BlockAccess,
			busAccess:   r.BusAccess,
			instAccess:  r.InstAccess,
			location:    r.Location,
			fields:      r.Fields,
		}

		if r.Addr.HasValue() {
			v := r.Addr.Unwrap()
			e.addr = &v
		}

		if r.Align.HasValue() {
			v := r.Align.Unwrap()
			e.align = &v
		}

		return []*expandedReg{e}
	}
}

// registerPlacer lays out one register set (the Config/Group/Reg/Field
// forest belonging to one Block) per §4.6.
type registerPlacer struct {
	idx    *Index
	rpt    *report.Report
	cursor int64 // bytes, relative to the register set's own base
}

// ElaborateRegisters runs the full register elaborator (§4.6 steps 1-7)
// over the named groups reachable from config (or, if config is nil, every
// group named in fallbackGroupNames, in declaration order - step 1).
func ElaborateRegisters(idx *Index, config *schema.Config, fallbackGroupNames []string, defines []*schema.Define, rpt *report.Report) ([]*design.RegisterGroup, error) {
	p := &registerPlacer{idx: idx, rpt: rpt}

	entries := config
	if entries == nil {
		entries = synthesizeConfig(fallbackGroupNames)
	}

	var out []*design.RegisterGroup

	for _, entry := range entries.Entries {
		groups, err := p.placeEntry(entry)
		if err != nil {
			return nil, err
		}

		out = append(out, groups...)
	}

	if err := applyDefines(out, defines); err != nil {
		return nil, err
	}

	if err := checkGroupOverlaps(out); err != nil {
		return nil, err
	}

	return out, nil
}

// synthesizeConfig builds the implicit config used when no Config record
// is declared: every named group placed once, in declaration order (§4.6
// step 1).
func synthesizeConfig(groupNames []string) *schema.Config {
	cfg := &schema.Config{}

	for _, name := range groupNames {
		cfg.Entries = append(cfg.Entries, &schema.RegisterPlacement{GroupName: name})
	}

	return cfg
}

func (p *registerPlacer) placeEntry(entry schema.ConfigEntry) ([]*design.RegisterGroup, error) {
	switch e := entry.(type) {
	case *schema.RegisterPlacement:
		g, ok := p.idx.Groups[e.GroupName]
		if !ok {
			return nil, fmt.Errorf("%s: undefined reference to Group %q", e.Pos, e.GroupName)
		}

		if g.Type == schema.GroupTypeMacro {
			return nil, fmt.Errorf("%s: Group %q is macro-typed and must be placed with Macro, not Register", e.Pos, g.Name)
		}

		dg, err := p.placeGroup(g, g.Name)
		if err != nil {
			return nil, err
		}

		return []*design.RegisterGroup{dg}, nil
	case *schema.MacroPlacement:
		g, ok := p.idx.Groups[e.GroupName]
		if !ok {
			return nil, fmt.Errorf("%s: undefined reference to Group %q", e.Pos, e.GroupName)
		}

		if g.Type != schema.GroupTypeMacro {
			return nil, fmt.Errorf("%s: Group %q is not macro-typed and cannot be placed with Macro", e.Pos, g.Name)
		}

		unit := unitSize(g)
		alignBytes := unit
		if e.Align != 0 {
			alignBytes = e.Align * unit
		}

		var out []*design.RegisterGroup

		for i := uint(0); i < e.Array; i++ {
			p.cursor = alignUp(p.cursor, alignBytes)

			name := fmt.Sprintf("%s_%d", e.Prefix, i)

			dg, err := p.placeGroup(g, name)
			if err != nil {
				return nil, err
			}

			out = append(out, dg)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unknown config entry type %T", entry)
	}
}

func unitSize(g *schema.Group) int64 {
	if g.HasOption("BYTE") {
		return 1
	}

	return defaultUnitWord
}

func alignUp(addr, align int64) int64 {
	if align <= 1 {
		return addr
	}

	rem := addr % align
	if rem == 0 {
		return addr
	}

	return addr + (align - rem)
}

// placeGroup lays out one group instance's registers starting at the
// placer's current cursor, advancing the cursor past the group (§4.6 steps
// 2-4).
func (p *registerPlacer) placeGroup(g *schema.Group, instanceName string) (*design.RegisterGroup, error) {
	unit := unitSize(g)
	p.cursor = alignUp(p.cursor, unit)

	dg := &design.RegisterGroup{Name: instanceName, ByteMode: g.HasOption("BYTE")}
	dg.Pos = g.Pos

	groupStart := p.cursor

	for _, r := range g.Regs {
		for _, er := range expandReg(r) {
			dr, err := p.placeReg(er, unit, groupStart)
			if err != nil {
				return nil, err
			}

			dg.Registers = append(dg.Registers, dr...)
		}
	}

	return dg, nil
}

func (p *registerPlacer) placeReg(er *expandedReg, unit, groupStart int64) ([]*design.Register, error) {
	alignBytes := unit
	if er.align != nil {
		alignBytes = *er.align * unit
	}

	var base int64
	if er.addr != nil {
		base = groupStart + *er.addr*unit
	} else {
		base = alignUp(p.cursor, alignBytes)
	}

	array := er.array
	if array == 0 {
		array = 1
	}

	nominalWidth := uint(32)
	byteSize := int64(nominalWidth) / 8

	var out []*design.Register

	for i := uint(0); i < array; i++ {
		name := er.name
		if array > 1 {
			name = fmt.Sprintf("%s_%d", er.name, i)
		}

		addr := base + int64(i)*byteSize

		fields, widened, err := placeFields(er.fields, nominalWidth, p.rpt, er.pos)
		if err != nil {
			return nil, err
		}

		width := nominalWidth
		if widened {
			width = highestFieldBit(fields) + 1
			byteSize = int64(width+7) / 8
		}

		reg := &design.Register{
			Name:        name,
			Addr:        addr,
			Align:       alignBytes,
			Width:       width,
			BlockAccess: er.blockAccess,
			BusAccess:   er.busAccess,
			InstAccess:  er.instAccess,
			Location:    er.location,
			Fields:      fields,
			Widened:     widened,
		}
		reg.Pos = er.pos

		out = append(out, reg)
	}

	lastAddr := base + int64(array)*byteSize
	if lastAddr > p.cursor {
		p.cursor = lastAddr
	}

	return out, nil
}

func highestFieldBit(fields []*design.RegisterField) uint {
	var hi uint

	for _, f := range fields {
		if f.Msb > hi {
			hi = f.Msb
		}
	}

	return hi
}

// placeFields lays out a Reg's fields in declaration order (§4.6 step 7):
// lsb honored when present, otherwise next free bit; overlaps rejected;
// exceeding the nominal width widens the register and emits a warning.
func placeFields(fields []*schema.Field, nominalWidth uint, rpt *report.Report, regPos srcpos.Pos) ([]*design.RegisterField, bool, error) {
	var out []*design.RegisterField

	var cursor uint

	widened := false

	for _, f := range fields {
		var lsb, msb uint

		switch {
		case f.Lsb.HasValue() && f.Msb.HasValue():
			lsb, msb = f.Lsb.Unwrap(), f.Msb.Unwrap()
		case f.Lsb.HasValue():
			lsb = f.Lsb.Unwrap()
			msb = lsb + f.Width - 1
		case f.Msb.HasValue():
			msb = f.Msb.Unwrap()
			lsb = msb - f.Width + 1
		default:
			lsb = cursor
			msb = lsb + f.Width - 1
		}

		for _, existing := range out {
			if lsb <= existing.Msb && msb >= existing.Lsb {
				return nil, false, fmt.Errorf("%s: field %q[%d:%d] overlaps field %q[%d:%d]",
					f.Pos, f.Name, msb, lsb, existing.Name, existing.Msb, existing.Lsb)
			}
		}

		if msb >= nominalWidth {
			widened = true

			if rpt != nil {
				rpt.Warnf(report.Cat("elaborate", "register"), f.Pos,
					"field %q[%d:%d] exceeds nominal register width %d; register auto-widened",
					f.Name, msb, lsb, nominalWidth)
			}
		}

		rf := &design.RegisterField{Name: f.Name, Lsb: lsb, Msb: msb, Signed: f.Signed, Reset: f.Reset, Enums: f.Enums}
		rf.Pos = f.Pos
		out = append(out, rf)

		cursor = msb + 1
	}

	return out, widened, nil
}

// checkGroupOverlaps enforces invariant 3's register half: no two placed
// Register byte ranges may intersect within a RegisterGroup (§4.6 step 5,
// §8 scenario 5).
func checkGroupOverlaps(groups []*design.RegisterGroup) error {
	for _, g := range groups {
		for i, a := range g.Registers {
			for _, b := range g.Registers[i+1:] {
				if a.Addr < b.EndAddr() && b.Addr < a.EndAddr() {
					return fmt.Errorf("register %q [%#x,%#x) overlaps register %q [%#x,%#x) in group %q",
						a.Name, a.Addr, a.EndAddr(), b.Name, b.Addr, b.EndAddr(), g.Name)
				}
			}
		}
	}

	return nil
}

// applyDefines applies Define overrides to the matching (group, reg[,
// field]) placed entity (§4.6 step 6). Overrides target every array
// instance of a register sharing the Reg's original (pre-array-expansion)
// name.
func applyDefines(groups []*design.RegisterGroup, defines []*schema.Define) error {
	byGroup := make(map[string]*design.RegisterGroup, len(groups))
	for _, g := range groups {
		byGroup[g.Name] = g
	}

	for _, d := range defines {
		g, ok := byGroup[d.Group]
		if !ok {
			return fmt.Errorf("%s: Define references undefined group %q", d.Pos, d.Group)
		}

		matched := false

		for _, reg := range g.Registers {
			if reg.Name != d.Reg && !hasArrayBaseName(reg.Name, d.Reg) {
				continue
			}

			matched = true

			if err := applyOverride(reg, d); err != nil {
				return err
			}
		}

		if !matched {
			return fmt.Errorf("%s: Define references undefined register %q in group %q", d.Pos, d.Reg, d.Group)
		}
	}

	return nil
}

// hasArrayBaseName reports whether regName is one of base's array-expanded
// instances (base_0, base_1, ...).
func hasArrayBaseName(regName, base string) bool {
	prefix := base + "_"
	if len(regName) <= len(prefix) || regName[:len(prefix)] != prefix {
		return false
	}

	_, err := strconv.Atoi(regName[len(prefix):])

	return err == nil
}

func applyOverride(reg *design.Register, d *schema.Define) error {
	if d.Field.HasValue() {
		fname := d.Field.Unwrap()

		for _, f := range reg.Fields {
			if f.Name == fname {
				return applyFieldOverride(f, d.Overrides)
			}
		}

		return fmt.Errorf("%s: Define references undefined field %q on register %q", d.Pos, fname, reg.Name)
	}

	return applyRegOverride(reg, d.Overrides)
}

func applyRegOverride(reg *design.Register, overrides map[string]string) error {
	for k, v := range overrides {
		switch k {
		case "addr":
			n, err := strconv.ParseInt(v, 0, 64)
			if err != nil {
				return fmt.Errorf("Define override %q: %w", k, err)
			}

			reg.Addr = n
		case "align":
			n, err := strconv.ParseInt(v, 0, 64)
			if err != nil {
				return fmt.Errorf("Define override %q: %w", k, err)
			}

			reg.Align = n
		case "blockaccess":
			if k2, ok := schema.ParseAccessKind(v); ok {
				reg.BlockAccess = k2
			}
		case "busaccess":
			if k2, ok := schema.ParseAccessKind(v); ok {
				reg.BusAccess = k2
			}
		case "instaccess":
			if k2, ok := schema.ParseAccessKind(v); ok {
				reg.InstAccess = k2
			}
		}
	}

	return nil
}

func applyFieldOverride(f *design.RegisterField, overrides map[string]string) error {
	for k, v := range overrides {
		if k == "reset" {
			n, err := strconv.ParseInt(v, 0, 64)
			if err != nil {
				return fmt.Errorf("Define override %q: %w", k, err)
			}

			f.Reset = n
		}
	}

	return nil
}
