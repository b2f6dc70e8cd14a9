package parse

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
)

// ParseTag binds one top-level RawTag to its schema.Record, dispatching on
// tag kind (§9 "Dynamic tag construction and runtime dispatch ... translate
// to a sealed tagged-union of record kinds with one elaborator variant per
// kind; unknown tags become parse-time errors"). Legacy tags (§9 "Legacy
// tags") are accepted here and returned as *schema.Legacy so the caller can
// warn once per occurrence; they carry no further meaning.
func ParseTag(tag RawTag) (schema.Record, error) {
	if schema.LegacyTagNames.Has(tag.Kind) {
		return &schema.Legacy{Node: commonNode(tag), Tag: tag.Kind}, nil
	}

	switch tag.Kind {
	case "Def":
		return parseDef(tag)
	case "Port":
		return parsePort(tag)
	case "His":
		return parseHis(tag)
	case "HisRef":
		return parseHisRef(tag)
	case "Group":
		return parseGroup(tag)
	case "Config":
		return parseConfig(tag)
	case "Define":
		return parseDefine(tag)
	case "Mod":
		return parseMod(tag)
	case "Inst":
		return parseInst(tag)
	default:
		return nil, fmt.Errorf("%s: unknown tag kind %q", tag.Pos, tag.Kind)
	}
}

// ParseTags binds a forest of top-level tags, accumulating every record it
// can and returning the aggregate error list rather than stopping at the
// first failure (§4.2, mirrored by the ambient "Errors" section of
// SPEC_FULL.md: parser errors accumulate across top-level tags, the way the
// teacher's ParseSourceFiles returns []SyntaxError instead of erroring out
// on the first bad declaration).
func ParseTags(tags []RawTag) ([]schema.Record, []error) {
	var (
		records []schema.Record
		errs    []error
	)

	for _, t := range tags {
		rec, err := ParseTag(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		records = append(records, rec)
	}

	return records, errs
}
