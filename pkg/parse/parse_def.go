package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
)

var defOrder = []string{"name", "expr"}

func parseDef(tag RawTag) (*schema.Def, error) {
	attrs, err := bind(tag, defOrder, nil)
	if err != nil {
		return nil, err
	}

	d := &schema.Def{Node: commonNode(tag)}

	v, ok := attrs["expr"]
	if !ok {
		return nil, fmt.Errorf("%s: Def %q missing required attribute %q", tag.Pos, d.Name, "expr")
	}

	expr, err := asString(v, "expr")
	if err != nil {
		return nil, err
	}

	d.Expr = expr

	return d, nil
}
