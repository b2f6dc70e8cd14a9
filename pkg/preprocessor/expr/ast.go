package expr

import (
	"fmt"
	"math/big"
)

// node is an evaluable expression AST node.
type node interface {
	eval() (Value, error)
}

type litIntNode struct{ v *big.Int }

func (n litIntNode) eval() (Value, error) { return BigValue(n.v), nil }

type litStrNode struct{ v string }

func (n litStrNode) eval() (Value, error) { return StrValue(n.v), nil }

type nameNode struct {
	name  string
	env   Env
	trail []string
}

func (n nameNode) eval() (Value, error) {
	for _, seen := range n.trail {
		if seen == n.name {
			return Value{}, fmt.Errorf("cyclic definition involving %q", n.name)
		}
	}

	rhs, ok := n.env.Lookup(n.name)
	if !ok {
		return Value{}, fmt.Errorf("undefined name %q", n.name)
	}

	return evalWithTrail(rhs, n.env, append(n.trail, n.name))
}

type unaryNode struct {
	op  string
	arg node
}

func (n unaryNode) eval() (Value, error) {
	v, err := n.arg.eval()
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "-":
		if v.Kind != KindInt {
			return Value{}, fmt.Errorf("cannot negate string value %q", v.Str)
		}

		return BigValue(new(big.Int).Neg(v.Int)), nil
	case "not":
		b, err := v.Truthy()
		if err != nil {
			return Value{}, err
		}

		return IntValue(boolToInt(!b)), nil
	}

	return Value{}, fmt.Errorf("unknown unary operator %q", n.op)
}

type binaryNode struct {
	op          string
	left, right node
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

func (n binaryNode) eval() (Value, error) { //nolint:gocyclo
	lv, err := n.left.eval()
	if err != nil {
		return Value{}, err
	}

	// Short-circuit-free but still strict: both operands are always
	// evaluated before the operator applies (§4.1: "Evaluation is strict").
	rv, err := n.right.eval()
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "and":
		lb, err := lv.Truthy()
		if err != nil {
			return Value{}, err
		}

		rb, err := rv.Truthy()
		if err != nil {
			return Value{}, err
		}

		return IntValue(boolToInt(lb && rb)), nil
	case "or":
		lb, err := lv.Truthy()
		if err != nil {
			return Value{}, err
		}

		rb, err := rv.Truthy()
		if err != nil {
			return Value{}, err
		}

		return IntValue(boolToInt(lb || rb)), nil
	}

	if lv.Kind != KindInt || rv.Kind != KindInt {
		return Value{}, fmt.Errorf("operator %q requires integer operands", n.op)
	}

	l, r := lv.Int, rv.Int

	switch n.op {
	case "+":
		return BigValue(new(big.Int).Add(l, r)), nil
	case "-":
		return BigValue(new(big.Int).Sub(l, r)), nil
	case "*":
		return BigValue(new(big.Int).Mul(l, r)), nil
	case "**":
		if r.Sign() < 0 {
			return Value{}, fmt.Errorf("negative exponent not supported")
		}

		return BigValue(new(big.Int).Exp(l, r, nil)), nil
	case "//", "/":
		// "/" is accepted only as a legacy synonym for "//" (§4.1, §9 open
		// question (a)): this loses information when float division was
		// actually intended, which is an intentional, documented quirk.
		if r.Sign() == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}

		q := new(big.Int)
		q.Div(l, r)

		return BigValue(q), nil
	case "<<":
		return BigValue(new(big.Int).Lsh(l, uint(r.Int64()))), nil
	case ">>":
		return BigValue(new(big.Int).Rsh(l, uint(r.Int64()))), nil
	case "==":
		return IntValue(boolToInt(l.Cmp(r) == 0)), nil
	case "!=":
		return IntValue(boolToInt(l.Cmp(r) != 0)), nil
	case "<":
		return IntValue(boolToInt(l.Cmp(r) < 0)), nil
	case "<=":
		return IntValue(boolToInt(l.Cmp(r) <= 0)), nil
	case ">":
		return IntValue(boolToInt(l.Cmp(r) > 0)), nil
	case ">=":
		return IntValue(boolToInt(l.Cmp(r) >= 0)), nil
	}

	return Value{}, fmt.Errorf("unknown binary operator %q", n.op)
}

// callNode handles the single builtin function the #for iterable grammar
// needs: range(n) (§4.1, §8 scenario 2).
type callNode struct {
	name string
	args []node
}

func (n callNode) eval() (Value, error) {
	return Value{}, fmt.Errorf("function %q cannot be evaluated as a scalar expression", n.name)
}

// Elements evaluates a call node as a finite enumerable (only range(n) is
// supported), used by the #for loop driver rather than scalar evaluation.
func (n callNode) Elements() ([]Value, error) {
	if n.name != "range" {
		return nil, fmt.Errorf("unknown iterable function %q", n.name)
	}

	if len(n.args) != 1 {
		return nil, fmt.Errorf("range() takes exactly one argument")
	}

	v, err := n.args[0].eval()
	if err != nil {
		return nil, err
	}

	if v.Kind != KindInt {
		return nil, fmt.Errorf("range() argument must be an integer")
	}

	if !v.Int.IsInt64() || v.Int.Sign() < 0 {
		return nil, fmt.Errorf("range() argument out of bounds")
	}

	n64 := v.Int.Int64()
	out := make([]Value, 0, n64)

	for i := int64(0); i < n64; i++ {
		out = append(out, IntValue(i))
	}

	return out, nil
}

type listNode struct {
	elems []node
}

func (n listNode) eval() (Value, error) {
	return Value{}, fmt.Errorf("list literal cannot be evaluated as a scalar expression")
}

// Elements evaluates each element of a list literal in turn.
func (n listNode) Elements() ([]Value, error) {
	out := make([]Value, 0, len(n.elems))

	for _, e := range n.elems {
		v, err := e.eval()
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}
