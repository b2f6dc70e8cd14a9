package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/preprocessor/expr"
	"github.com/bluwireless/blade/pkg/schema"
)

// defEnv adapts the Index's Def table to expr.Env so the same recursive,
// cycle-detecting expression evaluator the preprocessor uses for #define
// resolves Def right-hand sides too (§4.5: "evaluates each right-hand side
// under the completed environment"; the evaluator's own trail-based
// recursion already performs the topological-order evaluation this
// requires, cycles surface as "cyclic definition involving %q" - §4.5
// "Cycles -> fatal error naming the cycle").
type defEnv struct {
	defs map[string]*schema.Def
}

func (e defEnv) Lookup(name string) (string, bool) {
	d, ok := e.defs[name]
	if !ok {
		return "", false
	}

	return d.Expr, true
}

// ResolveDefines evaluates every Def in idx to an integer design.Define,
// invariant 7: "Every Define's resolved value is an integer; the
// dependency graph over Defines is acyclic."
func ResolveDefines(idx *Index) (map[string]*design.Define, error) {
	env := defEnv{defs: idx.Defs}
	out := make(map[string]*design.Define, len(idx.Defs))

	for name, d := range idx.Defs {
		v, err := expr.EvalInt(d.Expr, env)
		if err != nil {
			return nil, fmt.Errorf("%s: Def %q: %w", d.Pos, name, err)
		}

		out[name] = &design.Define{Name: name, Value: v}
	}

	return out, nil
}
