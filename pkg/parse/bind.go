package parse

import (
	"fmt"
	"sort"

	"github.com/bluwireless/blade/pkg/schema"
)

// commonAttrs are accepted on every tag kind in addition to its own
// constructor attributes (§3 "Every schema record carries common
// attributes").
var commonAttrs = map[string]bool{
	"name": true, "short_description": true, "long_description": true, "options": true,
}

// bind maps a tag's positional and named attributes onto the named
// attribute slots in `order` (declaration order of the record's
// constructor - §4.2), rejecting unknown attribute names and (by
// construction, since parseArg already refuses to record a second named
// occurrence) duplicate mapping-form attributes. `extra`, when non-nil,
// names additional attributes the tag kind accepts beyond `order` and the
// common attributes (used by Define's free-form overrides).
func bind(tag RawTag, order []string, extra func(string) bool) (map[string]RawValue, error) {
	result := make(map[string]RawValue, len(order))

	if len(tag.Positional) > len(order) {
		return nil, fmt.Errorf("%s: too many positional attributes on %s (expected at most %d)",
			tag.Pos, tag.Kind, len(order))
	}

	for i, v := range tag.Positional {
		result[order[i]] = v
	}

	isKnown := make(map[string]bool, len(order))
	for _, n := range order {
		isKnown[n] = true
	}

	for _, name := range tag.NamedOrder {
		if commonAttrs[name] {
			continue
		}

		if !isKnown[name] && (extra == nil || !extra(name)) {
			return nil, fmt.Errorf("%s: unknown attribute %q on %s", tag.Pos, name, tag.Kind)
		}

		if _, already := result[name]; already {
			return nil, fmt.Errorf("%s: duplicate attribute %q on %s", tag.Pos, name, tag.Kind)
		}

		result[name] = tag.Named[name]
	}

	return result, nil
}

// commonNode extracts the attributes every record kind shares.
func commonNode(tag RawTag) schema.Node {
	n := schema.Node{Pos: tag.Pos}

	if v, ok := tag.Named["name"]; ok {
		n.Name = v.Str
		if n.Name == "" {
			n.Name = v.Ident
		}
	}

	if v, ok := tag.Named["short_description"]; ok {
		n.ShortDescription = v.Str
	}

	if v, ok := tag.Named["long_description"]; ok {
		n.LongDescription = v.Str
	}

	if v, ok := tag.Named["options"]; ok && v.IsList {
		flags := make([]string, 0, len(v.List))
		for _, e := range v.List {
			flags = append(flags, e.Ident)
		}

		n.Opts = schema.NewOptions(flags...)
	} else {
		n.Opts = schema.Options{}
	}

	return n
}

func asString(v RawValue, field string) (string, error) {
	if v.IsStr {
		return v.Str, nil
	}

	if v.Ident != "" {
		return v.Ident, nil
	}

	return "", fmt.Errorf("attribute %q: expected a string", field)
}

func asInt64(v RawValue, field string) (int64, error) {
	if !v.IsInt {
		return 0, fmt.Errorf("attribute %q: expected an integer", field)
	}

	return v.Int, nil
}

func asUint(v RawValue, field string) (uint, error) {
	n, err := asInt64(v, field)
	if err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, fmt.Errorf("attribute %q: must be non-negative", field)
	}

	return uint(n), nil
}

func asRole(v RawValue, field string) (schema.Role, error) {
	s, err := asString(v, field)
	if err != nil {
		return 0, err
	}

	switch s {
	case "master":
		return schema.RoleMaster, nil
	case "slave":
		return schema.RoleSlave, nil
	default:
		return 0, fmt.Errorf("attribute %q: expected master or slave, found %q", field, s)
	}
}

func asAccess(v RawValue, field string) (schema.AccessKind, error) {
	s, err := asString(v, field)
	if err != nil {
		return 0, err
	}

	k, ok := schema.ParseAccessKind(s)
	if !ok {
		return 0, fmt.Errorf("attribute %q: unrecognized access kind %q", field, s)
	}

	return k, nil
}

func sortedKeys(m map[string]RawValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
