// Package checker implements the pluggable rule-checking framework (§4.10):
// a registry of check functions run over an elaborated design.Project,
// hash-based waivers that downgrade known violations to warnings, and the
// one built-in check named by the specification (register aperture
// reachability). It plays the role the teacher's pkg/schema/constraint
// packages play for the Corset constraint language: a family of independent
// checks run over one compiled artifact, each free to inspect the whole
// graph.
package checker

import (
	"bufio"
	"crypto/md5" //nolint:gosec // not a security hash, just a stable fixed-size digest (§4.10 "hexadecimal MD5-size hash")
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bluwireless/blade/pkg/design"
)

// CheckFunc is the signature every registered check must satisfy: given a
// Project, return the recoverable violations it finds, or an error when it
// hits a critical condition that should abort checking entirely (§4.10
// "Critical - thrown as a hard error; aborts checking").
type CheckFunc func(*design.Project) ([]RuleViolation, error)

// RuleViolation is one recoverable finding: the node it concerns, the name
// of the check that raised it, and a human-readable message (§4.10).
type RuleViolation struct {
	Node      design.GraphNode
	CheckName string
	Message   string
	// Waived is set when the violation's hash matched a supplied waiver; a
	// waived violation is downgraded to a warning rather than an error.
	Waived bool
}

// CriticalRuleViolation is a check's hard-error return, distinct from the
// recoverable RuleViolation list so callers can tell "found problems" from
// "could not finish checking" apart (§4.10).
type CriticalRuleViolation struct {
	CheckName string
	Message   string
}

func (e *CriticalRuleViolation) Error() string {
	return fmt.Sprintf("critical rule violation in %s: %s", e.CheckName, e.Message)
}

// registry holds every check registered via Register, keyed by name so
// re-registration under the same name is rejected (mirrors the "scanning a
// conventional location" language in §4.10: in Go, registration is the
// init()-time substitute for a runtime package scan).
var registry = map[string]CheckFunc{}

// Register adds a check function to the global registry. name must begin
// with "check_" (§4.10: "every discoverable function whose name begins with
// check_"). Intended to be called from each check's own init().
func Register(name string, fn CheckFunc) {
	if !strings.HasPrefix(name, "check_") {
		panic(fmt.Sprintf("checker: registered check name %q must begin with check_", name))
	}

	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("checker: duplicate check registration %q", name))
	}

	registry[name] = fn
}

// Hash computes the stable hash used to match a violation against a waiver
// list: an MD5 digest over (node.id, node.kind, check_name, message),
// explicitly excluding the node's attributes map and any other derived
// field (§4.10).
func Hash(node design.GraphNode, checkName, message string) string {
	h := md5.New() //nolint:gosec

	fmt.Fprintf(h, "%d\x00%d\x00%s\x00%s", node.NodeID(), node.NodeKind(), checkName, message)

	return fmt.Sprintf("%x", h.Sum(nil))
}

// Waiver is one parsed line from a waiver file: the hash it downgrades.
type Waiver string

// ParseWaivers reads a waiver file: one hex hash per line, "#" starts a
// trailing comment, blank lines ignored, duplicates collapse (§6 "Waiver
// file").
func ParseWaivers(r io.Reader) ([]Waiver, error) {
	var out []Waiver

	seen := map[string]bool{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if seen[line] {
			continue
		}

		seen[line] = true

		out = append(out, Waiver(line))
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading waiver file: %w", err)
	}

	return out, nil
}

// Run executes every registered check against proj, in a deterministic
// (name-sorted) order, applying waivers to recoverable violations and
// aborting immediately on the first critical violation (§4.10).
func Run(proj *design.Project, waivers []Waiver) ([]RuleViolation, error) {
	waived := make(map[string]bool, len(waivers))
	for _, w := range waivers {
		waived[string(w)] = true
	}

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	var out []RuleViolation

	for _, name := range names {
		violations, err := registry[name](proj)
		if err != nil {
			return out, err
		}

		for _, v := range violations {
			v.Waived = waived[Hash(v.Node, v.CheckName, v.Message)]
			out = append(out, v)
		}
	}

	return out, nil
}
