package design

import "math/big"

// Define is a resolved, integer-valued Def (§4.5). Values use
// arbitrary-precision integers throughout, matching the source
// expression language's guarantee (§4.1).
type Define struct {
	Node
	Name  string
	Value *big.Int
}
