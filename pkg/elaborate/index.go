// Package elaborate implements the elaborator (§4.4-§4.9): the stage that
// resolves references, expands hierarchy, infers interconnections, lays
// out register and address spaces, and flattens instruction inheritance,
// turning a validated forest of schema objects into one design.Project.
// It generalizes the teacher's pkg/corset/compiler resolver/translator
// pipeline (resolver.go, translator.go, environment.go), which performs
// the analogous "resolve names, expand structure, translate to the
// compiled form" job for the Corset constraint language.
package elaborate

import (
	"fmt"

	"github.com/bluwireless/blade/pkg/schema"
)

// Index is the name-resolution table built once from the full forest of
// parsed records, giving every elaborator stage O(1) lookup by name
// without cyclic ownership: children hold weak references (names) up to
// their parents, resolved through this index rather than direct pointers
// (§9 "Reference-by-name across files ... resolves to an arena-index into
// the project's name table; no cyclic ownership").
type Index struct {
	His    map[string]*schema.His
	Mods   map[string]*schema.Mod
	Defs   map[string]*schema.Def
	Insts  map[string]*schema.Inst
	Groups map[string]*schema.Group

	// AllDefines holds every top-level Define (register-attribute override)
	// record, in declaration order. Defines reference their (group, reg)
	// by name rather than by file, so the register elaborator filters this
	// list itself per register set (§4.6 step 6).
	AllDefines []*schema.Define

	// FileConfig holds the one Config declared in a given source file, when
	// present (§4.6 step 1: "If one Config is declared, use its order").
	FileConfig map[string]*schema.Config

	// FileGroupNames holds, per source file, the names of every non-macro
	// Group declared there, in declaration order - the fallback register
	// set used when a file declares no explicit Config (§4.6 step 1).
	FileGroupNames map[string][]string
}

// NewIndex builds an Index from a flat forest of top-level records,
// rejecting a second declaration of the same name within one kind.
func NewIndex(records []schema.Record) (*Index, error) {
	idx := &Index{
		His:            make(map[string]*schema.His),
		Mods:           make(map[string]*schema.Mod),
		Defs:           make(map[string]*schema.Def),
		Insts:          make(map[string]*schema.Inst),
		Groups:         make(map[string]*schema.Group),
		FileConfig:     make(map[string]*schema.Config),
		FileGroupNames: make(map[string][]string),
	}

	for _, rec := range records {
		switch v := rec.(type) {
		case *schema.His:
			if _, dup := idx.His[v.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate His %q", v.Pos, v.Name)
			}

			idx.His[v.Name] = v
		case *schema.Mod:
			if _, dup := idx.Mods[v.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate Mod %q", v.Pos, v.Name)
			}

			idx.Mods[v.Name] = v
		case *schema.Def:
			if _, dup := idx.Defs[v.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate Def %q", v.Pos, v.Name)
			}

			idx.Defs[v.Name] = v
		case *schema.Inst:
			if _, dup := idx.Insts[v.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate Inst %q", v.Pos, v.Name)
			}

			idx.Insts[v.Name] = v
		case *schema.Group:
			if _, dup := idx.Groups[v.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate Group %q", v.Pos, v.Name)
			}

			idx.Groups[v.Name] = v

			if v.Type != schema.GroupTypeMacro {
				idx.FileGroupNames[v.Pos.File] = append(idx.FileGroupNames[v.Pos.File], v.Name)
			}
		case *schema.Config:
			if _, dup := idx.FileConfig[v.Pos.File]; dup {
				return nil, fmt.Errorf("%s: duplicate Config in file %q", v.Pos, v.Pos.File)
			}

			idx.FileConfig[v.Pos.File] = v
		case *schema.Define:
			idx.AllDefines = append(idx.AllDefines, v)
		}
	}

	return idx, nil
}
