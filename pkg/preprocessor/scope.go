// Package preprocessor implements the lazy, file-scoped, C-style text
// preprocessor described in §4.1: includes, conditionals, for-loops, define
// substitution, and arithmetic expression evaluation over arbitrary text.
package preprocessor

import "fmt"

// Scope owns a set of named Files and the mutable mapping of define names
// to (unevaluated) expression strings that directives write into as
// evaluation proceeds (§4.1).
type Scope struct {
	files   map[string]*File
	Defines map[string]string
}

// NewScope constructs an empty scope, optionally seeded with an initial
// define environment (§6: build_project's "defines" option).
func NewScope(initialDefines map[string]string) *Scope {
	defines := make(map[string]string, len(initialDefines))
	for k, v := range initialDefines {
		defines[k] = v
	}

	return &Scope{files: make(map[string]*File), Defines: defines}
}

// AddFile registers a named source under this scope. File names within a
// scope must be unique (§4.1).
func (s *Scope) AddFile(name, raw string) error {
	if _, exists := s.files[name]; exists {
		return fmt.Errorf("duplicate file name %q in scope", name)
	}

	s.files[name] = &File{name: name, raw: raw}

	return nil
}

// Evaluate triggers evaluation of the named file, producing its fully
// substituted text. Files are tokenized into an item tree on first
// reference, not at AddFile time (§4.1 "Lazy evaluation").
func (s *Scope) Evaluate(name string) (string, error) {
	return s.evaluateFile(name, nil)
}

func (s *Scope) evaluateFile(name string, active []string) (string, error) {
	f, ok := s.files[name]
	if !ok {
		return "", fmt.Errorf("include-not-found: no such file %q in scope", name)
	}

	for _, a := range active {
		if a == name {
			return "", fmt.Errorf("cyclic include involving %q", name)
		}
	}

	if f.body == nil {
		body, err := parseFile(name, f.raw)
		if err != nil {
			return "", err
		}

		f.body = body
	}

	ctx := &evalCtx{
		scope:  s,
		locals: make(map[string]string),
		active: append(append([]string{}, active...), name),
	}

	return executeItems(f.body, ctx)
}

// Touched returns the names of every file this scope has evaluated (parsed
// into an item tree) so far, in unspecified order - the file set a
// dependency-file emitter needs (§6 "Dependency file ... every file opened
// by the preprocessor or parser").
func (s *Scope) Touched() []string {
	var out []string

	for name, f := range s.files {
		if f.body != nil {
			out = append(out, name)
		}
	}

	return out
}
