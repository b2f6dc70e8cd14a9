package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

var portOrder = []string{"name", "width", "count", "default", "role"}

func parsePort(tag RawTag) (*schema.Port, error) {
	attrs, err := bind(tag, portOrder, nil)
	if err != nil {
		return nil, err
	}

	p := &schema.Port{Node: commonNode(tag), Count: 1}

	if v, ok := attrs["width"]; ok {
		if p.Width, err = asUint(v, "width"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["count"]; ok {
		if p.Count, err = asUint(v, "count"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["default"]; ok {
		n, err := asInt64(v, "default")
		if err != nil {
			return nil, err
		}

		p.Default = util.Some(n)
	}

	if v, ok := attrs["role"]; ok {
		if p.Role, err = asRole(v, "role"); err != nil {
			return nil, err
		}
	}

	for _, child := range tag.Children {
		if child.Kind != "Enum" {
			return nil, fmt.Errorf("%s: Port %q cannot contain a %q child", child.Pos, p.Name, child.Kind)
		}

		e, err := parseEnum(child)
		if err != nil {
			return nil, err
		}

		p.Enums = append(p.Enums, *e)
	}

	return p, nil
}

var enumOrder = []string{"name", "value", "description"}

func parseEnum(tag RawTag) (*schema.Enum, error) {
	attrs, err := bind(tag, enumOrder, nil)
	if err != nil {
		return nil, err
	}

	e := &schema.Enum{}

	if v, ok := tag.Named["name"]; ok {
		e.Name, _ = asString(v, "name")
	} else if v, ok := attrs["name"]; ok {
		e.Name, _ = asString(v, "name")
	}

	v, ok := attrs["value"]
	if !ok {
		return nil, fmt.Errorf("%s: Enum %q missing required attribute %q", tag.Pos, e.Name, "value")
	}

	if e.Value, err = asInt64(v, "value"); err != nil {
		return nil, err
	}

	if v, ok := attrs["description"]; ok {
		e.Description, _ = asString(v, "description")
	}

	return e, nil
}

var hisRefOrder = []string{"name", "type", "count", "role"}

func parseHisRef(tag RawTag) (*schema.HisRef, error) {
	attrs, err := bind(tag, hisRefOrder, nil)
	if err != nil {
		return nil, err
	}

	h := &schema.HisRef{Node: commonNode(tag), Count: 1}

	v, ok := attrs["type"]
	if !ok {
		return nil, fmt.Errorf("%s: HisRef %q missing required attribute %q", tag.Pos, h.Name, "type")
	}

	if h.Type, err = asString(v, "type"); err != nil {
		return nil, err
	}

	if v, ok := attrs["count"]; ok {
		if h.Count, err = asUint(v, "count"); err != nil {
			return nil, err
		}
	}

	if v, ok := attrs["role"]; ok {
		if h.Role, err = asRole(v, "role"); err != nil {
			return nil, err
		}
	}

	return h, nil
}

var hisOrder = []string{"name"}

func parseHis(tag RawTag) (*schema.His, error) {
	if _, err := bind(tag, hisOrder, nil); err != nil {
		return nil, err
	}

	h := &schema.His{Node: commonNode(tag)}

	for _, child := range tag.Children {
		switch child.Kind {
		case "Port":
			p, err := parsePort(child)
			if err != nil {
				return nil, err
			}

			h.Components = append(h.Components, p)
		case "HisRef":
			r, err := parseHisRef(child)
			if err != nil {
				return nil, err
			}

			h.Components = append(h.Components, r)
		default:
			return nil, fmt.Errorf("%s: His %q cannot contain a %q child", child.Pos, h.Name, child.Kind)
		}
	}

	return h, nil
}
