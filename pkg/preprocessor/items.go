package preprocessor

import "github.com/bluwireless/blade/pkg/srcpos"

// item is one element of a File's parsed body: a plain text line, a
// #define, a #include, an #if/#ifdef/#ifndef chain, or a #for loop (§4.1).
type item interface {
	isItem()
}

type textItem struct {
	pos  srcpos.Pos
	text string
}

func (textItem) isItem() {}

type defineItem struct {
	pos  srcpos.Pos
	name string
	expr string
}

func (defineItem) isItem() {}

type includeItem struct {
	pos  srcpos.Pos
	path string
}

func (includeItem) isItem() {}

// branchKind distinguishes the different predicates an #if chain's branches
// can carry.
type branchKind uint8

const (
	branchIf branchKind = iota
	branchIfdef
	branchIfndef
	branchElif
	branchElse
)

type ifBranch struct {
	pos  srcpos.Pos
	kind branchKind
	// predicate is the raw expression (branchIf/branchElif) or the name
	// being tested (branchIfdef/branchIfndef). Unused for branchElse.
	predicate string
	body      []item
}

type ifItem struct {
	pos      srcpos.Pos
	branches []ifBranch
}

func (ifItem) isItem() {}

type forItem struct {
	pos      srcpos.Pos
	variable string
	iterable string
	body     []item
}

func (forItem) isItem() {}
