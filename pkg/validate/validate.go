// Package validate implements the schema validator (§4.3): declarative rule
// tables per record kind covering allowed option flags, allowed value
// domains (the access-constraint lattice of §6), and cross-attribute
// agreement (width/msb/lsb). Validation aggregates every violation it finds
// across the whole forest rather than stopping at the first error, the same
// way the teacher's TypeCheckCircuit (pkg/corset/compiler/typing.go)
// accumulates type errors across a whole constraint set.
package validate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
)

// allowedOptions lists the legal option flags for record kinds that
// restrict them; a kind absent from this table places no restriction (its
// options are passed through as free-form attributes, §3).
var allowedOptions = map[schema.Kind]map[string]bool{
	schema.KindGroup: {"BYTE": true},
	schema.KindReg:   {"EVENT": true, "SETCLEAR": true, "HAS_LEVEL": true, "HAS_MODE": true},
	schema.KindMod:   {"NO_CLK_RST": true, "NO_AUTO_CLK_RST": true},
	schema.KindHisRef: {"AUTO_CLK": true, "AUTO_RST": true},
}

// Validate walks every record reachable from the top-level forest (schema
// records nest Ports/Regs/Fields/etc. as Go struct fields rather than as
// Records themselves in most cases, so each record kind's own nested slices
// are walked directly) and returns every violation found, in the order
// discovered. A nil return means the forest is well-formed.
func Validate(records []schema.Record) []error {
	var errs []error

	for _, rec := range records {
		errs = append(errs, validateRecord(rec)...)
	}

	return errs
}

func validateRecord(rec schema.Record) []error {
	var errs []error

	errs = append(errs, checkOptions(rec)...)

	switch v := rec.(type) {
	case *schema.His:
		for _, comp := range v.Components {
			errs = append(errs, validateRecord(comp)...)
		}
	case *schema.Group:
		for _, r := range v.Regs {
			errs = append(errs, validateReg(r)...)
		}
	case *schema.Mod:
		errs = append(errs, validateMod(v)...)
	case *schema.Config:
		errs = append(errs, checkConfig(v)...)
	}

	return errs
}

func checkOptions(rec schema.Record) []error {
	allowed, restricted := allowedOptions[rec.RecordKind()]
	if !restricted {
		return nil
	}

	var errs []error

	base := rec.Base()

	for flag := range base.Opts {
		if !allowed[flag] {
			errs = append(errs, fmt.Errorf("%s: illegal option flag %q on %q", base.Pos, flag, base.Name))
		}
	}

	return errs
}

func validateReg(r *schema.Reg) []error {
	errs := checkOptions(r)

	if err := checkBlockOrInstAccess("blockaccess", r.BlockAccess, r.Pos, r.Name); err != nil {
		errs = append(errs, err)
	}

	if err := checkBlockOrInstAccess("instaccess", r.InstAccess, r.Pos, r.Name); err != nil {
		errs = append(errs, err)
	}

	if r.HasOption("EVENT") && r.HasOption("SETCLEAR") {
		errs = append(errs, fmt.Errorf("%s: Reg %q cannot combine EVENT and SETCLEAR", r.Pos, r.Name))
	}

	if (r.HasOption("HAS_LEVEL") || r.HasOption("HAS_MODE")) && !r.HasOption("EVENT") {
		errs = append(errs, fmt.Errorf("%s: Reg %q: HAS_LEVEL/HAS_MODE only apply to EVENT registers", r.Pos, r.Name))
	}

	for _, f := range r.Fields {
		errs = append(errs, validateField(f)...)
	}

	return errs
}

// checkBlockOrInstAccess enforces the access-constraint lattice's
// blockaccess/instaccess column: only W/R/RW are legal there (§6).
func checkBlockOrInstAccess(attr string, k schema.AccessKind, pos fmt.Stringer, name string) error {
	switch k {
	case schema.AccessWO, schema.AccessRO, schema.AccessRW:
		return nil
	default:
		return fmt.Errorf("%s: Reg %q: %s does not support this access kind", pos, name, attr)
	}
}

func validateField(f *schema.Field) []error {
	var errs []error

	if f.Lsb.HasValue() && f.Msb.HasValue() {
		lsb, msb := f.Lsb.Unwrap(), f.Msb.Unwrap()

		if msb < lsb {
			errs = append(errs, fmt.Errorf("%s: field %q: msb %d is below lsb %d", f.Pos, f.Name, msb, lsb))
		} else if f.Width != 0 && f.Width != msb-lsb+1 {
			errs = append(errs, fmt.Errorf("%s: field %q: width %d disagrees with msb-lsb+1 (%d)", f.Pos, f.Name, f.Width, msb-lsb+1))
		}
	}

	return errs
}

func validateMod(m *schema.Mod) []error {
	var errs []error

	if (m.HasOption("NO_CLK_RST") || m.HasOption("NO_AUTO_CLK_RST")) && (m.ClkRoot.HasValue() || m.RstRoot.HasValue()) {
		errs = append(errs, fmt.Errorf("%s: Mod %q: clk_root/rst_root co-occurring with NO_CLK_RST/NO_AUTO_CLK_RST is almost certainly unintended", m.Pos, m.Name))
	}

	seen := map[string]bool{}

	for _, href := range m.Ports {
		errs = append(errs, checkOptions(href)...)

		if seen[href.Name] {
			errs = append(errs, fmt.Errorf("%s: Mod %q: duplicate port name %q", href.Pos, m.Name, href.Name))
		}

		seen[href.Name] = true
	}

	for _, mi := range m.Modules {
		if seen[mi.InstanceName] {
			errs = append(errs, fmt.Errorf("%s: Mod %q: instance name %q collides with a boundary port", mi.Pos, m.Name, mi.InstanceName))
		}
	}

	return errs
}

func checkConfig(c *schema.Config) []error {
	seen := map[string]bool{}

	var errs []error

	for _, e := range c.Entries {
		var name string

		switch v := e.(type) {
		case *schema.RegisterPlacement:
			name = v.GroupName
		case *schema.MacroPlacement:
			name = v.GroupName
		}

		if name != "" && seen[name] {
			errs = append(errs, fmt.Errorf("%s: Config places Group %q more than once", c.Pos, name))
		}

		seen[name] = true
	}

	return errs
}
