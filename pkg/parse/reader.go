package parse

import (
	"fmt"
	"strconv"
)

// ReadTags parses preprocessed source text into a forest of top-level
// RawTags.
func ReadTags(file, text string) ([]RawTag, error) {
	lx := newLexer(file, text)

	toks, err := lx.tokenize()
	if err != nil {
		return nil, err
	}

	p := &tagParser{toks: toks}

	var tags []RawTag

	for !p.at(tEOF) {
		t, err := p.parseTag()
		if err != nil {
			return nil, err
		}

		tags = append(tags, t)
	}

	return tags, nil
}

type tagParser struct {
	toks []token
	pos  int
}

func (p *tagParser) peek() token { return p.toks[p.pos] }
func (p *tagParser) at(k tokKind) bool { return p.peek().kind == k }

func (p *tagParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *tagParser) expect(k tokKind, what string) (token, error) {
	if !p.at(k) {
		return token{}, fmt.Errorf("%s: expected %s, found %q", p.peek().pos, what, p.peek().text)
	}

	return p.advance(), nil
}

func (p *tagParser) parseTag() (RawTag, error) {
	kindTok, err := p.expect(tIdent, "tag name")
	if err != nil {
		return RawTag{}, err
	}

	tag := RawTag{Kind: kindTok.text, Pos: kindTok.pos, Named: make(map[string]RawValue)}

	if p.at(tLParen) {
		p.advance()

		if err := p.parseArgList(&tag); err != nil {
			return RawTag{}, err
		}

		if _, err := p.expect(tRParen, ")"); err != nil {
			return RawTag{}, err
		}
	}

	if p.at(tLBrace) {
		p.advance()

		for !p.at(tRBrace) {
			if p.at(tEOF) {
				return RawTag{}, fmt.Errorf("%s: unterminated tag body for %q", tag.Pos, tag.Kind)
			}

			child, err := p.parseTag()
			if err != nil {
				return RawTag{}, err
			}

			tag.Children = append(tag.Children, child)
		}

		p.advance() // consume '}'
	}

	return tag, nil
}

func (p *tagParser) parseArgList(tag *RawTag) error {
	if p.at(tRParen) {
		return nil
	}

	for {
		if err := p.parseArg(tag); err != nil {
			return err
		}

		if p.at(tComma) {
			p.advance()
			continue
		}

		break
	}

	return nil
}

func (p *tagParser) parseArg(tag *RawTag) error {
	// Named form: IDENT '=' value. Distinguish from a positional bare
	// identifier value by looking ahead for '='.
	if p.at(tIdent) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tEquals {
		nameTok := p.advance()
		p.advance() // consume '='

		val, err := p.parseValue()
		if err != nil {
			return err
		}

		if _, exists := tag.Named[nameTok.text]; exists {
			return fmt.Errorf("%s: duplicate attribute %q on %s", nameTok.pos, nameTok.text, tag.Kind)
		}

		tag.Named[nameTok.text] = val
		tag.NamedOrder = append(tag.NamedOrder, nameTok.text)

		return nil
	}

	val, err := p.parseValue()
	if err != nil {
		return err
	}

	tag.Positional = append(tag.Positional, val)

	return nil
}

func (p *tagParser) parseValue() (RawValue, error) { //nolint:gocyclo
	t := p.peek()

	switch t.kind {
	case tStr:
		p.advance()
		return RawValue{Str: t.text, IsStr: true}, nil
	case tInt:
		p.advance()

		n, err := strconv.ParseInt(t.text, 0, 64)
		if err != nil {
			return RawValue{}, fmt.Errorf("%s: malformed integer %q: %w", t.pos, t.text, err)
		}

		return RawValue{Int: n, IsInt: true}, nil
	case tLBracket:
		p.advance()

		var elems []RawValue

		for !p.at(tRBracket) {
			v, err := p.parseValue()
			if err != nil {
				return RawValue{}, err
			}

			elems = append(elems, v)

			if p.at(tComma) {
				p.advance()
				continue
			}

			break
		}

		if _, err := p.expect(tRBracket, "]"); err != nil {
			return RawValue{}, err
		}

		return RawValue{List: elems, IsList: true}, nil
	case tIdent:
		// Could be a bare identifier/enum word, or a nested tag value
		// (IDENT '(' ... ')').
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tLParen {
			nested, err := p.parseTag()
			if err != nil {
				return RawValue{}, err
			}

			return RawValue{Tag: &nested, IsTag: true}, nil
		}

		p.advance()

		return RawValue{Ident: t.text}, nil
	default:
		return RawValue{}, fmt.Errorf("%s: unexpected token %q in value position", t.pos, t.text)
	}
}
