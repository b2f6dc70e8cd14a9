package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/design"
	"github.com/bluwireless/blade/pkg/schema"
)

// instChain walks extends back to its root, returning the chain in
// root-first order. A cycle in the extends chain is a fatal error (the same
// visit-coloring discipline used for His references, §9).
func instChain(idx *Index, name string) ([]*schema.Inst, error) {
	var chain []*schema.Inst

	seen := map[string]bool{}
	cur := name

	for {
		inst, ok := idx.Insts[cur]
		if !ok {
			return nil, fmt.Errorf("undefined reference to Inst %q", cur)
		}

		if seen[cur] {
			return nil, fmt.Errorf("cyclic Inst inheritance involving %q", cur)
		}

		seen[cur] = true
		chain = append(chain, inst)

		if inst.Extends.IsEmpty() {
			break
		}

		cur = inst.Extends.Unwrap()
	}

	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}

// ElaborateInst collapses one Inst's inheritance chain and lays out its
// fields (§4.9).
func ElaborateInst(idx *Index, name string) (*design.Command, error) {
	chain, err := instChain(idx, name)
	if err != nil {
		return nil, err
	}

	cmd := &design.Command{Name: name}
	cmd.Pos = chain[len(chain)-1].Pos

	if len(chain) > 1 {
		cmd.Extends = chain[len(chain)-2].Name
	}

	fieldsByName := map[string]*design.CommandField{}

	for level, inst := range chain {
		inherited := level < len(chain)-1

		// A fixed field sets an already-inherited field's Reset to the value
		// named, rather than introducing a new field (§4.9 step 1: "Exactly
		// one Field may be fixed ... per inheritance level"). The field's
		// Enums list is left as inherited, and the value is not checked
		// against it.
		if inst.Fixed.HasValue() {
			ff := inst.Fixed.Unwrap()

			target, ok := fieldsByName[ff.FieldName]
			if !ok {
				return nil, fmt.Errorf("%s: Inst %q fixes undefined field %q", inst.Pos, inst.Name, ff.FieldName)
			}

			target.Reset = ff.Value
		}

		for _, f := range inst.Fields {
			cf := &design.CommandField{
				Name:      f.Name,
				Signed:    f.Signed,
				Reset:     f.Reset,
				Enums:     f.Enums,
				Inherited: inherited,
			}
			cf.Pos = f.Pos

			if f.Lsb.HasValue() {
				cf.Lsb = f.Lsb.Unwrap()
			}

			if f.Msb.HasValue() {
				cf.Msb = f.Msb.Unwrap()
			} else {
				cf.Msb = cf.Lsb + f.Width - 1
			}

			for _, existing := range cmd.Fields {
				if cf.Lsb <= existing.Msb && cf.Msb >= existing.Lsb {
					return nil, fmt.Errorf("%s: field %q[%d:%d] overlaps field %q[%d:%d] in Inst %q",
						f.Pos, cf.Name, cf.Msb, cf.Lsb, existing.Name, existing.Msb, existing.Lsb, name)
				}
			}

			cmd.Fields = append(cmd.Fields, cf)
			fieldsByName[cf.Name] = cf
		}
	}

	return cmd, nil
}

// ElaborateInstructions collapses every Inst in idx (§4.9).
func ElaborateInstructions(idx *Index) (map[string]*design.Command, error) {
	out := make(map[string]*design.Command, len(idx.Insts))

	for name := range idx.Insts {
		cmd, err := ElaborateInst(idx, name)
		if err != nil {
			return nil, err
		}

		out[name] = cmd
	}

	return out, nil
}
