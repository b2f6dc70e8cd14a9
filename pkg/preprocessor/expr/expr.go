// Package expr implements the preprocessor's integer/boolean expression
// language (§4.1): "+ - * ** // / << >> and or not == != < <= > >=", with
// "/" accepted as a legacy synonym for "//". Evaluation is strict (all
// operands resolved before an operator applies) and uses arbitrary-precision
// integers throughout, mirroring the teacher's own use of math/big for
// constant folding in pkg/corset/compiler.
package expr

import (
	"fmt"
	"math/big"
)

// ValueKind distinguishes the two shapes a Value can take.
type ValueKind uint8

// Value kinds.
const (
	KindInt ValueKind = iota
	KindStr
)

// Value is the result of evaluating an expression: either an
// arbitrary-precision integer (booleans are represented as 0/1) or a string
// (only meaningful as an element of a #for iterable).
type Value struct {
	Kind ValueKind
	Int  *big.Int
	Str  string
}

// IntValue constructs an integer-kind Value.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: big.NewInt(i)}
}

// BigValue constructs an integer-kind Value from a *big.Int.
func BigValue(i *big.Int) Value {
	return Value{Kind: KindInt, Int: i}
}

// StrValue constructs a string-kind Value.
func StrValue(s string) Value {
	return Value{Kind: KindStr, Str: s}
}

// Truthy reports whether this value is considered true: a non-zero integer.
// Strings are never valid as boolean operands.
func (v Value) Truthy() (bool, error) {
	if v.Kind != KindInt {
		return false, fmt.Errorf("expected integer, found string %q", v.Str)
	}

	return v.Int.Sign() != 0, nil
}

// String renders a value for substitution into preprocessed text.
func (v Value) String() string {
	if v.Kind == KindStr {
		return v.Str
	}

	return v.Int.String()
}

// Env resolves names used within an expression (Defines and, inside a
// #for body, the loop variable - §4.1).
type Env interface {
	// Lookup returns the raw (unevaluated) expression bound to name, if any.
	Lookup(name string) (string, bool)
}

// Eval parses and evaluates an expression string against env, resolving any
// names recursively (a Define's right-hand side may itself reference other
// Defines - §4.1 "expression evaluation of a define's right-hand side is
// fully recursive").
func Eval(source string, env Env) (Value, error) {
	return evalWithTrail(source, env, nil)
}

func evalWithTrail(source string, env Env, trail []string) (Value, error) {
	toks, err := lex(source)
	if err != nil {
		return Value{}, err
	}

	p := &parser{toks: toks, env: env, trail: trail}

	node, err := p.parseExpr(precLowest)
	if err != nil {
		return Value{}, err
	}

	if p.pos != len(p.toks) {
		return Value{}, fmt.Errorf("unexpected trailing token %q", p.toks[p.pos].text)
	}

	return node.eval()
}

// EvalInt evaluates an expression and requires the result to be an integer
// (§4.1: "non-integer result where integer required" is a reportable
// error).
func EvalInt(source string, env Env) (*big.Int, error) {
	v, err := Eval(source, env)
	if err != nil {
		return nil, err
	}

	if v.Kind != KindInt {
		return nil, fmt.Errorf("expected integer result, found string %q", v.Str)
	}

	return v.Int, nil
}

// EvalBool evaluates an expression as a predicate.
func EvalBool(source string, env Env) (bool, error) {
	v, err := Eval(source, env)
	if err != nil {
		return false, err
	}

	return v.Truthy()
}

// EvalIterable evaluates a #for iterable expression. Only finite
// enumerables are admitted: integer ranges (range(n)) and list literals of
// integers or strings (§4.1, §9 "Preprocessor #for iterables admit only
// finite enumerables").
func EvalIterable(source string, env Env) ([]Value, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, env: env}

	n, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}

	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected trailing token %q", p.toks[p.pos].text)
	}

	switch it := n.(type) {
	case callNode:
		return it.Elements()
	case listNode:
		return it.Elements()
	default:
		return nil, fmt.Errorf("expression %q is not a finite enumerable", source)
	}
}
