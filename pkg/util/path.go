package util

import "strings"

// Path describes a dotted hierarchical name, such as a module instance path
// (e.g. "soc.cpu0.core") or a register-group placement path. A path can be
// either *absolute* (rooted at the project) or *relative* (rooted at some
// enclosing block).
type Path struct {
	absolute bool
	segments []string
}

// NewAbsolutePath constructs a new absolute path from the given segments.
func NewAbsolutePath(segments ...string) Path {
	return Path{true, segments}
}

// NewRelativePath constructs a new relative path from the given segments.
func NewRelativePath(segments ...string) Path {
	return Path{false, segments}
}

// ParsePath splits a dotted name (e.g. "soc.cpu0.core") into a relative path.
func ParsePath(name string) Path {
	if name == "" {
		return Path{false, nil}
	}

	return Path{false, strings.Split(name, ".")}
}

// Depth returns the number of segments in this path.
func (p Path) Depth() uint {
	return uint(len(p.segments))
}

// IsAbsolute determines whether or not this is an absolute path.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// Head returns the first (i.e. outermost) segment in this path.
func (p Path) Head() string {
	return p.segments[0]
}

// Tail returns the last (i.e. innermost) segment in this path.
func (p Path) Tail() string {
	return p.segments[len(p.segments)-1]
}

// Dehead returns a path with the first segment removed.
func (p Path) Dehead() Path {
	return Path{false, p.segments[1:]}
}

// Get returns the nth segment of this path.
func (p Path) Get(nth uint) string {
	return p.segments[nth]
}

// Extend returns a new path with an additional segment appended.
func (p Path) Extend(segment string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	segments = append(segments, segment)

	return Path{p.absolute, segments}
}

// String renders the path using dotted notation.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// Equals determines whether two paths describe the same location.
func (p Path) Equals(other Path) bool {
	if p.absolute != other.absolute || len(p.segments) != len(other.segments) {
		return false
	}

	for i, s := range p.segments {
		if other.segments[i] != s {
			return false
		}
	}

	return true
}
