package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
	"github.com/bluwireless/blade/pkg/util"
)

var instOrder = []string{"name", "extends", "fixed_field", "fixed_value"}

func parseInst(tag RawTag) (*schema.Inst, error) {
	attrs, err := bind(tag, instOrder, nil)
	if err != nil {
		return nil, err
	}

	i := &schema.Inst{Node: commonNode(tag)}

	if v, ok := attrs["extends"]; ok {
		s, err := asString(v, "extends")
		if err != nil {
			return nil, err
		}

		i.Extends = util.Some(s)
	}

	_, hasFieldName := attrs["fixed_field"]
	_, hasFieldValue := attrs["fixed_value"]

	if hasFieldName != hasFieldValue {
		return nil, fmt.Errorf("%s: Inst %q: fixed_field and fixed_value must be given together", tag.Pos, i.Name)
	}

	if hasFieldName {
		name, err := asString(attrs["fixed_field"], "fixed_field")
		if err != nil {
			return nil, err
		}

		value, err := asInt64(attrs["fixed_value"], "fixed_value")
		if err != nil {
			return nil, err
		}

		i.Fixed = util.Some(schema.FixedField{FieldName: name, Value: value})
	}

	for _, child := range tag.Children {
		if child.Kind != "Field" {
			return nil, fmt.Errorf("%s: Inst %q cannot contain a %q child", child.Pos, i.Name, child.Kind)
		}

		f, err := parseField(child)
		if err != nil {
			return nil, err
		}

		i.Fields = append(i.Fields, f)
	}

	return i, nil
}
