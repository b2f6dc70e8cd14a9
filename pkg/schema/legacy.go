package schema

// Legacy is a compatibility tag kind accepted by the parser and silently
// ignored by validation and elaboration: File, Req, Spec, Unroll, Map (§9
// "Legacy tags"). A new implementation warns once per occurrence rather
// than staying fully silent.
type Legacy struct {
	Node
	// Tag is the original legacy tag name (e.g. "File", "Req").
	Tag string
}

// RecordKind implements Record.
func (l *Legacy) RecordKind() Kind { return KindLegacy }

// Base implements Record.
func (l *Legacy) Base() *Node { return &l.Node }

// LegacyTagNames lists the tag names the parser accepts but the rest of the
// pipeline ignores.
var LegacyTagNames = NewOptions("File", "Req", "Spec", "Unroll", "Map")
