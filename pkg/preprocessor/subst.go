package preprocessor

import (
	"fmt"
	"unicode"

	"github.com/bluwireless/blade/pkg/preprocessor/expr"
)

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// substituteLine applies the three substitution rules in a single
// left-to-right pass (§4.1 "Substitution rules"):
//
//	(a) <NAME> is replaced by the evaluated value of NAME
//	(b) $(expr) is replaced by the evaluated value of expr, with the loop
//	    variable in scope, but only inside a #for body
//	(c) a bare identifier that names a recognized define (or the active
//	    loop variable) is replaced by its evaluated value
func substituteLine(line string, ctx *evalCtx, inForBody bool) (string, error) {
	var out []rune

	r := []rune(line)
	i := 0

	for i < len(r) {
		c := r[i]

		switch {
		case c == '$' && inForBody && i+1 < len(r) && r[i+1] == '(':
			j, err := matchParen(r, i+1)
			if err != nil {
				return "", fmt.Errorf("%w", err)
			}

			inner := string(r[i+2 : j])

			v, err := expr.Eval(inner, ctx)
			if err != nil {
				return "", fmt.Errorf("in $(%s): %w", inner, err)
			}

			out = append(out, []rune(v.String())...)
			i = j + 1
		case c == '<':
			j := i + 1
			for j < len(r) && r[j] != '>' {
				j++
			}

			name := ""
			if j < len(r) {
				name = string(r[i+1 : j])
			}

			if j >= len(r) || !isValidName(name) {
				out = append(out, c)
				i++

				continue
			}

			v, err := expr.Eval(name, ctx)
			if err != nil {
				return "", fmt.Errorf("in <%s>: %w", name, err)
			}

			out = append(out, []rune(v.String())...)
			i = j + 1
		case isIdentStart(c):
			j := i
			for j < len(r) && isIdentPart(r[j]) {
				j++
			}

			name := string(r[i:j])

			if _, ok := ctx.Lookup(name); ok {
				v, err := expr.Eval(name, ctx)
				if err != nil {
					return "", fmt.Errorf("in %s: %w", name, err)
				}

				out = append(out, []rune(v.String())...)
			} else {
				out = append(out, r[i:j]...)
			}

			i = j
		default:
			out = append(out, c)
			i++
		}
	}

	return string(out), nil
}

func isValidName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}

		if i > 0 && !isIdentPart(r) {
			return false
		}
	}

	return true
}

// matchParen finds the index of the ')' matching the '(' at r[start],
// accounting for nested parentheses, and returns its index.
func matchParen(r []rune, start int) (int, error) {
	depth := 1
	j := start + 1

	for j < len(r) {
		switch r[j] {
		case '(':
			depth++
		case ')':
			depth--

			if depth == 0 {
				return j, nil
			}
		}

		j++
	}

	return 0, fmt.Errorf("unterminated $(...) substitution")
}
