package opt

import (
	"fmt"
	"strings"

	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// CSE implements a trivial common-subexpression reducer: only nodes
// whose transitive value-input cone is entirely global (pool) values,
// and which carry no control or effect input of their own, are
// eligible -- any node touched by control flow is excluded by
// construction, so CSE never has to reason about dominance.
//
// seen caches one representative node per structural key so repeated
// Reduce calls across the fixed point stay cheap, avoiding a
// value-numbering rehash of the whole graph on every visit.
type CSE struct {
	seen map[string]*ir.Node
}

func NewCSE() *CSE { return &CSE{seen: make(map[string]*ir.Node)} }

func (*CSE) Name() string { return "CSE" }

func (c *CSE) Reduce(n *ir.Node) reduce.Reduction {
	if n.NumControlInput() != 0 || n.NumEffectInput() != 0 {
		return reduce.NoChange()
	}
	if n.Op.IsGlobalValue() {
		return reduce.NoChange() // pool values are already unique
	}
	if !eligibleCone(n, make(map[*ir.Node]bool)) {
		return reduce.NoChange()
	}
	key := cseKey(n)
	if existing, ok := c.seen[key]; ok && existing != n {
		return reduce.Replace(existing)
	}
	c.seen[key] = n
	return reduce.NoChange()
}

// eligibleCone reports whether n's entire transitive value-input cone
// consists of global (pool) values: constants, other CSE-eligible
// global-only BinOps, or nodes with IsGlobalValue true.
func eligibleCone(n *ir.Node, visiting map[*ir.Node]bool) bool {
	if n.Op.IsGlobalValue() {
		return true
	}
	if !n.Op.IsBinOp() || n.NumControlInput() != 0 || n.NumEffectInput() != 0 {
		return false
	}
	if visiting[n] {
		return false
	}
	visiting[n] = true
	for _, in := range n.ValueInputs() {
		if !eligibleCone(in, visiting) {
			return false
		}
	}
	return true
}

// cseKey builds a structural key over opcode + value-input identities.
// Node.ID is stable for a node's lifetime, so two structurally
// identical subtrees over already-deduplicated global inputs hash
// identically.
func cseKey(n *ir.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", n.Op)
	for i, in := range n.ValueInputs() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", in.ID)
	}
	b.WriteByte(')')
	return b.String()
}
