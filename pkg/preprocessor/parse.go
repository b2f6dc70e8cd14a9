package preprocessor

import (
	"fmt"
	"strings"

	"github.com/bluwireless/blade/pkg/srcpos"
)

// File is a named, ordered sequence of lines within a Scope. Its body is
// parsed into an item tree lazily, on first reference (§4.1 "Lazy
// evaluation").
type File struct {
	name string
	raw  string
	body []item // nil until parsed
}

func splitLines(raw string) []string {
	// Normalize so a trailing newline doesn't produce a spurious empty
	// final line, matching how line-oriented source is conventionally
	// counted.
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSuffix(raw, "\n")

	if raw == "" {
		return nil
	}

	return strings.Split(raw, "\n")
}

type lineParser struct {
	file  string
	lines []string
	pos   int // 0-based index into lines; line number is pos+1
}

func (lp *lineParser) atEnd() bool {
	return lp.pos >= len(lp.lines)
}

func (lp *lineParser) posHere() srcpos.Pos {
	return srcpos.Pos{File: lp.file, Line: uint(lp.pos + 1)}
}

// parseBody parses items until EOF or until a line matches one of the given
// terminators (used for #elif/#else/#endif and #endfor matching). It
// returns the parsed items and, if a terminator matched, the raw terminator
// line (trimmed).
func (lp *lineParser) parseBody(terminators map[string]bool) ([]item, string, error) {
	var items []item

	for !lp.atEnd() {
		raw := lp.lines[lp.pos]
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, "#") {
			word := directiveWord(trimmed)

			if terminators[word] {
				return items, trimmed, nil
			}

			it, err := lp.parseDirective(trimmed)
			if err != nil {
				return nil, "", err
			}

			if it != nil {
				items = append(items, it)
			}

			continue
		}

		items = append(items, textItem{pos: lp.posHere(), text: raw})
		lp.pos++
	}

	if len(terminators) > 0 {
		return nil, "", fmt.Errorf("%s: unbalanced directive nesting: expected one of %v before end of file",
			lp.file, keys(terminators))
	}

	return items, "", nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

func directiveWord(trimmed string) string {
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// parseDirective parses a single directive line, recursing into
// parseBody/parseIfChain/parseFor for block-opening directives. It advances
// lp.pos past everything it consumes.
func (lp *lineParser) parseDirective(trimmed string) (item, error) {
	pos := lp.posHere()
	word := directiveWord(trimmed)
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, word))

	switch word {
	case "#define":
		lp.pos++

		parts := strings.SplitN(rest, " ", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("%s: malformed #define: %q", pos, trimmed)
		}

		return defineItem{pos: pos, name: parts[0], expr: strings.TrimSpace(parts[1])}, nil
	case "#include":
		lp.pos++

		path := strings.Trim(rest, `"`)
		if path == "" {
			return nil, fmt.Errorf("%s: malformed #include: %q", pos, trimmed)
		}

		return includeItem{pos: pos, path: path}, nil
	case "#if":
		return lp.parseIfChain(pos, branchIf, rest)
	case "#ifdef":
		return lp.parseIfChain(pos, branchIfdef, rest)
	case "#ifndef":
		return lp.parseIfChain(pos, branchIfndef, rest)
	case "#for":
		return lp.parseFor(pos, rest)
	case "#elif", "#else", "#endif", "#endfor":
		return nil, fmt.Errorf("%s: unexpected directive %q with no matching opener", pos, word)
	default:
		return nil, fmt.Errorf("%s: unknown directive %q", pos, word)
	}
}

func (lp *lineParser) parseIfChain(pos srcpos.Pos, kind branchKind, predicate string) (item, error) {
	lp.pos++

	it := ifItem{pos: pos}

	terms := map[string]bool{"#elif": true, "#else": true, "#endif": true}

	body, term, err := lp.parseBody(terms)
	if err != nil {
		return nil, err
	}

	it.branches = append(it.branches, ifBranch{pos: pos, kind: kind, predicate: predicate, body: body})

	for directiveWord(term) == "#elif" {
		epos := lp.posHere()

		erest := strings.TrimSpace(strings.TrimPrefix(term, "#elif"))
		lp.pos++

		body, nextTerm, err := lp.parseBody(terms)
		if err != nil {
			return nil, err
		}

		it.branches = append(it.branches, ifBranch{pos: epos, kind: branchElif, predicate: erest, body: body})
		term = nextTerm
	}

	if directiveWord(term) == "#else" {
		epos := lp.posHere()
		lp.pos++

		terms2 := map[string]bool{"#endif": true}

		body, _, err := lp.parseBody(terms2)
		if err != nil {
			return nil, err
		}

		it.branches = append(it.branches, ifBranch{pos: epos, kind: branchElse, body: body})
	}

	// Consume the closing #endif.
	lp.pos++

	return it, nil
}

func (lp *lineParser) parseFor(pos srcpos.Pos, rest string) (item, error) {
	lp.pos++

	parts := strings.SplitN(rest, " in ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return nil, fmt.Errorf("%s: malformed #for: %q", pos, rest)
	}

	variable := strings.TrimSpace(parts[0])
	iterable := strings.TrimSpace(parts[1])

	body, _, err := lp.parseBody(map[string]bool{"#endfor": true})
	if err != nil {
		return nil, err
	}

	lp.pos++ // consume #endfor

	return forItem{pos: pos, variable: variable, iterable: iterable, body: body}, nil
}

// parseFile parses a File's raw text into its item tree.
func parseFile(name, raw string) ([]item, error) {
	lp := &lineParser{file: name, lines: splitLines(raw)}

	items, _, err := lp.parseBody(nil)
	if err != nil {
		return nil, err
	}

	return items, nil
}
