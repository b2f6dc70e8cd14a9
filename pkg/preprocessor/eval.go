package preprocessor

import (
	"fmt"
	"strings"

	"github.com/bluwireless/blade/pkg/preprocessor/expr"
)

// evalCtx carries the state needed while walking one file's item tree:
// the owning scope (and its shared Defines map), the currently-bound loop
// variables (lexically scoped to their enclosing #for body), the chain of
// files currently being evaluated (for cyclic-include detection), and the
// current #for nesting depth (only inside which $(expr) substitution
// applies).
type evalCtx struct {
	scope    *Scope
	locals   map[string]string
	active   []string
	forDepth int
}

// Lookup implements expr.Env: loop variables shadow scope-level defines.
func (c *evalCtx) Lookup(name string) (string, bool) {
	if v, ok := c.locals[name]; ok {
		return v, true
	}

	if v, ok := c.scope.Defines[name]; ok {
		return v, true
	}

	return "", false
}

func (c *evalCtx) isBound(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

func executeItems(items []item, ctx *evalCtx) (string, error) {
	var out strings.Builder

	for _, it := range items {
		text, err := executeItem(it, ctx)
		if err != nil {
			return "", err
		}

		out.WriteString(text)
	}

	return out.String(), nil
}

func executeItem(it item, ctx *evalCtx) (string, error) { //nolint:gocyclo
	switch v := it.(type) {
	case textItem:
		line, err := substituteLine(v.text, ctx, ctx.forDepth > 0)
		if err != nil {
			return "", fmt.Errorf("%s: %w", v.pos, err)
		}

		return line + "\n", nil
	case defineItem:
		// No redefinition guard - latest wins (§4.1 "#define NAME expr
		// sets the binding").
		ctx.scope.Defines[v.name] = v.expr

		return "", nil
	case includeItem:
		text, err := ctx.scope.evaluateFile(v.path, ctx.active)
		if err != nil {
			return "", fmt.Errorf("%s: %w", v.pos, err)
		}

		return text, nil
	case ifItem:
		return executeIf(v, ctx)
	case forItem:
		return executeFor(v, ctx)
	default:
		return "", fmt.Errorf("unknown preprocessor item %T", it)
	}
}

func executeIf(it ifItem, ctx *evalCtx) (string, error) {
	for _, b := range it.branches {
		ok, err := branchPredicate(b, ctx)
		if err != nil {
			return "", fmt.Errorf("%s: %w", b.pos, err)
		}

		if ok {
			return executeItems(b.body, ctx)
		}
	}

	return "", nil
}

func branchPredicate(b ifBranch, ctx *evalCtx) (bool, error) {
	switch b.kind {
	case branchIf, branchElif:
		return expr.EvalBool(b.predicate, ctx)
	case branchIfdef:
		return ctx.isBound(b.predicate), nil
	case branchIfndef:
		return !ctx.isBound(b.predicate), nil
	case branchElse:
		return true, nil
	default:
		return false, fmt.Errorf("unknown branch kind")
	}
}

func executeFor(it forItem, ctx *evalCtx) (string, error) {
	elems, err := expr.EvalIterable(it.iterable, ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", it.pos, err)
	}

	prev, hadPrev := ctx.locals[it.variable]
	ctx.forDepth++

	defer func() {
		ctx.forDepth--

		if hadPrev {
			ctx.locals[it.variable] = prev
		} else {
			delete(ctx.locals, it.variable)
		}
	}()

	var out strings.Builder

	for _, v := range elems {
		ctx.locals[it.variable] = literalText(v)

		text, err := executeItems(it.body, ctx)
		if err != nil {
			return "", err
		}

		out.WriteString(text)
	}

	return out.String(), nil
}

// literalText renders a loop-iterable element as expression source text so
// it can be looked up like any other bound name.
func literalText(v expr.Value) string {
	if v.Kind == expr.KindStr {
		return fmt.Sprintf("%q", v.Str)
	}

	return v.Int.String()
}
