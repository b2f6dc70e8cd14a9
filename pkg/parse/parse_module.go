package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

var pointOrder = []string{"port", "module", "index"}

func parsePoint(tag RawTag) (schema.Point, error) {
	attrs, err := bind(tag, pointOrder, nil)
	if err != nil {
		return schema.Point{}, err
	}

	pt := schema.Point{}

	v, ok := attrs["port"]
	if !ok {
		return schema.Point{}, fmt.Errorf("%s: Point missing required attribute %q", tag.Pos, "port")
	}

	if pt.PortName, err = asString(v, "port"); err != nil {
		return schema.Point{}, err
	}

	if v, ok := attrs["module"]; ok {
		s, err := asString(v, "module")
		if err != nil {
			return schema.Point{}, err
		}

		pt.Module = util.Some(s)
	}

	if v, ok := attrs["index"]; ok {
		n, err := asUint(v, "index")
		if err != nil {
			return schema.Point{}, err
		}

		pt.SignalIndex = util.Some(n)
	}

	return pt, nil
}

func parseConnectEndpoint(tag RawTag) (schema.ConnectEndpoint, error) {
	switch tag.Kind {
	case "Point":
		pt, err := parsePoint(tag)
		if err != nil {
			return schema.ConnectEndpoint{}, err
		}

		return schema.ConnectEndpoint{Point: util.Some(pt)}, nil
	case "Const":
		c, err := parseConst(tag)
		if err != nil {
			return schema.ConnectEndpoint{}, err
		}

		return schema.ConnectEndpoint{Const: util.Some(c)}, nil
	default:
		return schema.ConnectEndpoint{}, fmt.Errorf("%s: Connect cannot contain a %q child", tag.Pos, tag.Kind)
	}
}

var constOrder = []string{"value"}

func parseConst(tag RawTag) (schema.Const, error) {
	attrs, err := bind(tag, constOrder, nil)
	if err != nil {
		return schema.Const{}, err
	}

	v, ok := attrs["value"]
	if !ok {
		return schema.Const{}, fmt.Errorf("%s: Const missing required attribute %q", tag.Pos, "value")
	}

	n, err := asInt64(v, "value")
	if err != nil {
		return schema.Const{}, err
	}

	return schema.Const{Value: n}, nil
}

var connectOrder = []string{"name"}

func parseConnect(tag RawTag) (*schema.Connect, error) {
	if _, err := bind(tag, connectOrder, nil); err != nil {
		return nil, err
	}

	c := &schema.Connect{Node: commonNode(tag)}

	for _, child := range tag.Children {
		ep, err := parseConnectEndpoint(child)
		if err != nil {
			return nil, err
		}

		c.Points = append(c.Points, ep)
	}

	// A bare Const positional argument on the Connect tag itself is also
	// accepted, e.g. Connect(Const(0), Point(port=rst)).
	for _, v := range tag.Positional {
		if v.IsTag && v.Tag.Kind == "Const" {
			cst, err := parseConst(*v.Tag)
			if err != nil {
				return nil, err
			}

			c.Points = append(c.Points, schema.ConnectEndpoint{Const: util.Some(cst)})
		}
	}

	return c, nil
}

var modInstOrder = []string{"instance_name", "mod_type", "description", "count"}

func parseModInst(tag RawTag) (*schema.ModInst, error) {
	attrs, err := bind(tag, modInstOrder, nil)
	if err != nil {
		return nil, err
	}

	m := &schema.ModInst{Node: commonNode(tag), Count: 1}

	v, ok := attrs["instance_name"]
	if !ok {
		return nil, fmt.Errorf("%s: ModInst missing required attribute %q", tag.Pos, "instance_name")
	}

	if m.InstanceName, err = asString(v, "instance_name"); err != nil {
		return nil, err
	}

	v, ok = attrs["mod_type"]
	if !ok {
		return nil, fmt.Errorf("%s: ModInst missing required attribute %q", tag.Pos, "mod_type")
	}

	if m.ModType, err = asString(v, "mod_type"); err != nil {
		return nil, err
	}

	if v, ok := attrs["description"]; ok {
		if m.Description, err = asString(v, "description"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["count"]; ok {
		if m.Count, err = asUint(v, "count"); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func parsePointList(tags []RawTag, owner, field string) ([]schema.Point, error) {
	var points []schema.Point

	for _, child := range tags {
		if child.Kind != "Point" {
			return nil, fmt.Errorf("%s: %s's %s cannot contain a %q child", child.Pos, owner, field, child.Kind)
		}

		pt, err := parsePoint(child)
		if err != nil {
			return nil, err
		}

		points = append(points, pt)
	}

	return points, nil
}

var initiatorOrder = []string{"name", "port", "mask", "offset"}

func parseInitiator(tag RawTag) (*schema.Initiator, error) {
	attrs, err := bind(tag, initiatorOrder, nil)
	if err != nil {
		return nil, err
	}

	i := &schema.Initiator{Node: commonNode(tag)}

	v, ok := attrs["port"]
	if !ok {
		return nil, fmt.Errorf("%s: Initiator %q missing required attribute %q", tag.Pos, i.Name, "port")
	}

	portName, err := asString(v, "port")
	if err != nil {
		return nil, err
	}

	i.Point = schema.Point{PortName: portName}

	if v, ok := attrs["mask"]; ok {
		n, err := asInt64(v, "mask")
		if err != nil {
			return nil, err
		}

		i.Mask = util.Some(n)
	}

	if v, ok := attrs["offset"]; ok {
		n, err := asInt64(v, "offset")
		if err != nil {
			return nil, err
		}

		i.Offset = util.Some(n)
	}

	i.Constraints, err = parsePointList(tag.Children, "Initiator", "constraints")
	if err != nil {
		return nil, err
	}

	return i, nil
}

var targetOrder = []string{"name", "port", "offset", "aperture"}

func parseTarget(tag RawTag) (*schema.Target, error) {
	attrs, err := bind(tag, targetOrder, nil)
	if err != nil {
		return nil, err
	}

	t := &schema.Target{Node: commonNode(tag)}

	v, ok := attrs["port"]
	if !ok {
		return nil, fmt.Errorf("%s: Target %q missing required attribute %q", tag.Pos, t.Name, "port")
	}

	portName, err := asString(v, "port")
	if err != nil {
		return nil, err
	}

	t.Point = schema.Point{PortName: portName}

	if v, ok := attrs["offset"]; ok {
		n, err := asInt64(v, "offset")
		if err != nil {
			return nil, err
		}

		t.Offset = util.Some(n)
	}

	if v, ok := attrs["aperture"]; ok {
		n, err := asInt64(v, "aperture")
		if err != nil {
			return nil, err
		}

		t.Aperture = util.Some(n)
	}

	t.Constraints, err = parsePointList(tag.Children, "Target", "constraints")
	if err != nil {
		return nil, err
	}

	return t, nil
}

var modOrder = []string{"name"}

func parseMod(tag RawTag) (*schema.Mod, error) {
	if _, err := bind(tag, modOrder, nil); err != nil {
		return nil, err
	}

	m := &schema.Mod{Node: commonNode(tag)}

	for _, child := range tag.Children {
		switch child.Kind {
		case "HisRef":
			h, err := parseHisRef(child)
			if err != nil {
				return nil, err
			}

			m.Ports = append(m.Ports, h)
		case "ModInst":
			mi, err := parseModInst(child)
			if err != nil {
				return nil, err
			}

			m.Modules = append(m.Modules, mi)
		case "Connect":
			c, err := parseConnect(child)
			if err != nil {
				return nil, err
			}

			m.Connections = append(m.Connections, c)
		case "Default":
			pts, err := parsePointList(child.Children, "Mod", "defaults")
			if err != nil {
				return nil, err
			}

			m.Defaults = append(m.Defaults, pts...)
		case "ClkRoot":
			pt, err := parseSinglePoint(child)
			if err != nil {
				return nil, err
			}

			m.ClkRoot = util.Some(pt)
		case "RstRoot":
			pt, err := parseSinglePoint(child)
			if err != nil {
				return nil, err
			}

			m.RstRoot = util.Some(pt)
		case "AddressMap":
			if err := parseAddressMap(child, m); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%s: Mod %q cannot contain a %q child", child.Pos, m.Name, child.Kind)
		}
	}

	return m, nil
}

func parseSinglePoint(tag RawTag) (schema.Point, error) {
	if len(tag.Children) == 1 && tag.Children[0].Kind == "Point" {
		return parsePoint(tag.Children[0])
	}

	return parsePoint(tag)
}

func parseAddressMap(tag RawTag, m *schema.Mod) error {
	for _, child := range tag.Children {
		switch child.Kind {
		case "Initiator":
			i, err := parseInitiator(child)
			if err != nil {
				return err
			}

			m.Initiators = append(m.Initiators, i)
		case "Target":
			t, err := parseTarget(child)
			if err != nil {
				return err
			}

			m.Targets = append(m.Targets, t)
		default:
			return fmt.Errorf("%s: AddressMap cannot contain a %q child", child.Pos, child.Kind)
		}
	}

	return nil
}
