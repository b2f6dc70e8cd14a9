package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

var fieldOrder = []string{"name", "width", "lsb", "msb", "signed", "reset"}

func parseField(tag RawTag) (*schema.Field, error) {
	attrs, err := bind(tag, fieldOrder, nil)
	if err != nil {
		return nil, err
	}

	f := &schema.Field{Node: commonNode(tag)}

	v, ok := attrs["width"]
	if !ok {
		return nil, fmt.Errorf("%s: Field %q missing required attribute %q", tag.Pos, f.Name, "width")
	}

	if f.Width, err = asUint(v, "width"); err != nil {
		return nil, err
	}

	if v, ok := attrs["lsb"]; ok {
		n, err := asUint(v, "lsb")
		if err != nil {
			return nil, err
		}

		f.Lsb = util.Some(n)
	}

	if v, ok := attrs["msb"]; ok {
		n, err := asUint(v, "msb")
		if err != nil {
			return nil, err
		}

		f.Msb = util.Some(n)
	}

	if v, ok := attrs["signed"]; ok {
		f.Signed = v.Ident == "true" || v.Ident == "signed"
	}

	if v, ok := attrs["reset"]; ok {
		if f.Reset, err = asInt64(v, "reset"); err != nil {
			return nil, err
		}
	}

	for _, child := range tag.Children {
		if child.Kind != "Enum" {
			return nil, fmt.Errorf("%s: Field %q cannot contain a %q child", child.Pos, f.Name, child.Kind)
		}

		e, err := parseEnum(child)
		if err != nil {
			return nil, err
		}

		f.Enums = append(f.Enums, *e)
	}

	return f, nil
}

var regOrder = []string{"name", "addr", "align", "array", "blockaccess", "busaccess", "instaccess", "location"}

func parseReg(tag RawTag) (*schema.Reg, error) {
	attrs, err := bind(tag, regOrder, nil)
	if err != nil {
		return nil, err
	}

	r := &schema.Reg{Node: commonNode(tag), Array: 1}

	if v, ok := attrs["addr"]; ok {
		n, err := asInt64(v, "addr")
		if err != nil {
			return nil, err
		}

		r.Addr = util.Some(n)
	}

	if v, ok := attrs["align"]; ok {
		n, err := asInt64(v, "align")
		if err != nil {
			return nil, err
		}

		r.Align = util.Some(n)
	}

	if v, ok := attrs["array"]; ok {
		if r.Array, err = asUint(v, "array"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["blockaccess"]; ok {
		if r.BlockAccess, err = asAccess(v, "blockaccess"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["busaccess"]; ok {
		if r.BusAccess, err = asAccess(v, "busaccess"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["instaccess"]; ok {
		if r.InstAccess, err = asAccess(v, "instaccess"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["location"]; ok {
		s, err := asString(v, "location")
		if err != nil {
			return nil, err
		}

		switch s {
		case "internal":
			r.Location = schema.LocationInternal
		case "wrapper":
			r.Location = schema.LocationWrapper
		case "core":
			r.Location = schema.LocationCore
		default:
			return nil, fmt.Errorf("%s: Reg %q: unrecognized location %q", tag.Pos, r.Name, s)
		}
	}

	for _, child := range tag.Children {
		if child.Kind != "Field" {
			return nil, fmt.Errorf("%s: Reg %q cannot contain a %q child", child.Pos, r.Name, child.Kind)
		}

		f, err := parseField(child)
		if err != nil {
			return nil, err
		}

		r.Fields = append(r.Fields, f)
	}

	return r, nil
}

var groupOrder = []string{"name", "type"}

func parseGroup(tag RawTag) (*schema.Group, error) {
	attrs, err := bind(tag, groupOrder, nil)
	if err != nil {
		return nil, err
	}

	g := &schema.Group{Node: commonNode(tag)}

	if v, ok := attrs["type"]; ok {
		s, err := asString(v, "type")
		if err != nil {
			return nil, err
		}

		switch s {
		case "register":
			g.Type = schema.GroupTypeRegister
		case "macro":
			g.Type = schema.GroupTypeMacro
		default:
			return nil, fmt.Errorf("%s: Group %q: unrecognized type %q", tag.Pos, g.Name, s)
		}
	}

	for _, child := range tag.Children {
		if child.Kind != "Reg" {
			return nil, fmt.Errorf("%s: Group %q cannot contain a %q child", child.Pos, g.Name, child.Kind)
		}

		r, err := parseReg(child)
		if err != nil {
			return nil, err
		}

		g.Regs = append(g.Regs, r)
	}

	return g, nil
}

var registerPlacementOrder = []string{"group"}

func parseRegisterPlacement(tag RawTag) (*schema.RegisterPlacement, error) {
	attrs, err := bind(tag, registerPlacementOrder, nil)
	if err != nil {
		return nil, err
	}

	r := &schema.RegisterPlacement{Node: commonNode(tag)}

	v, ok := attrs["group"]
	if !ok {
		return nil, fmt.Errorf("%s: Register placement missing required attribute %q", tag.Pos, "group")
	}

	if r.GroupName, err = asString(v, "group"); err != nil {
		return nil, err
	}

	return r, nil
}

var macroPlacementOrder = []string{"group", "prefix", "array", "align"}

func parseMacroPlacement(tag RawTag) (*schema.MacroPlacement, error) {
	attrs, err := bind(tag, macroPlacementOrder, nil)
	if err != nil {
		return nil, err
	}

	m := &schema.MacroPlacement{Node: commonNode(tag), Array: 1}

	v, ok := attrs["group"]
	if !ok {
		return nil, fmt.Errorf("%s: Macro placement missing required attribute %q", tag.Pos, "group")
	}

	if m.GroupName, err = asString(v, "group"); err != nil {
		return nil, err
	}

	if v, ok := attrs["prefix"]; ok {
		if m.Prefix, err = asString(v, "prefix"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["array"]; ok {
		if m.Array, err = asUint(v, "array"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["align"]; ok {
		if m.Align, err = asInt64(v, "align"); err != nil {
			return nil, err
		}
	}

	return m, nil
}

var configOrder = []string{"name"}

func parseConfig(tag RawTag) (*schema.Config, error) {
	if _, err := bind(tag, configOrder, nil); err != nil {
		return nil, err
	}

	c := &schema.Config{Node: commonNode(tag)}

	for _, child := range tag.Children {
		switch child.Kind {
		case "Register":
			r, err := parseRegisterPlacement(child)
			if err != nil {
				return nil, err
			}

			c.Entries = append(c.Entries, r)
		case "Macro":
			m, err := parseMacroPlacement(child)
			if err != nil {
				return nil, err
			}

			c.Entries = append(c.Entries, m)
		default:
			return nil, fmt.Errorf("%s: Config cannot contain a %q child", child.Pos, child.Kind)
		}
	}

	return c, nil
}

var defineOrder = []string{"group", "reg", "field"}

func parseDefine(tag RawTag) (*schema.Define, error) {
	attrs, err := bind(tag, defineOrder, func(name string) bool { return true })
	if err != nil {
		return nil, err
	}

	d := &schema.Define{Node: commonNode(tag), Overrides: make(map[string]string)}

	v, ok := attrs["group"]
	if !ok {
		return nil, fmt.Errorf("%s: Define missing required attribute %q", tag.Pos, "group")
	}

	if d.Group, err = asString(v, "group"); err != nil {
		return nil, err
	}

	v, ok = attrs["reg"]
	if !ok {
		return nil, fmt.Errorf("%s: Define missing required attribute %q", tag.Pos, "reg")
	}

	if d.Reg, err = asString(v, "reg"); err != nil {
		return nil, err
	}

	if v, ok := attrs["field"]; ok {
		s, err := asString(v, "field")
		if err != nil {
			return nil, err
		}

		d.Field = util.Some(s)
	}

	for name, v := range attrs {
		switch name {
		case "group", "reg", "field":
			continue
		}

		d.Overrides[name] = rawValueText(v)
	}

	return d, nil
}

// rawValueText renders a RawValue back to source-like text so it can be
// re-parsed the same way the attribute it overrides originally was.
func rawValueText(v RawValue) string {
	switch {
	case v.IsStr:
		return v.Str
	case v.IsInt:
		return fmt.Sprintf("%d", v.Int)
	case v.Ident != "":
		return v.Ident
	default:
		return ""
	}
}
