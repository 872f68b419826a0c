package sched

import "github.com/gross-lang/gross/ir"

// placeFloating assigns every non-fix node in nodes to a block: the
// lowest common dominator of its users, falling back to the block of
// its nearest control point if it has no users at all, since a
// dominator tree always has a defined LCA for any non-empty set of
// users. Constants and other global/pool values are hoisted to entry
// regardless of use site.
//
// Placement proceeds in reverse-topological order over the "user"
// relation (a Kahn's-algorithm peel from the nodes with no unresolved
// users inward), since a node's placement needs every one of its
// users already placed.
func placeFloating(nodes []*ir.Node, blockOf map[*ir.Node]*Block, idom map[*Block]*Block, entry *Block) {
	rpoIndex := make(map[*Block]int)
	for b := range idom {
		rpoIndex[b] = b.RPO
	}

	resolved := make(map[*ir.Node]bool, len(blockOf))
	for n := range blockOf {
		resolved[n] = true
	}

	var floating []*ir.Node
	remaining := make(map[*ir.Node]int)
	for _, n := range nodes {
		if resolved[n] {
			continue
		}
		floating = append(floating, n)
	}
	for _, n := range floating {
		remaining[n] = unresolvedUserCount(n, resolved)
	}

	var queue []*ir.Node
	for _, n := range floating {
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if resolved[n] {
			continue
		}
		blockOf[n] = resolvePlacement(n, blockOf, rpoIndex, idom, entry)
		resolved[n] = true
		for _, in := range allInputs(n) {
			if resolved[in] {
				continue
			}
			remaining[in]--
			if remaining[in] == 0 {
				queue = append(queue, in)
			}
		}
	}

	for _, n := range floating {
		b := blockOf[n]
		b.Nodes = append(b.Nodes, n)
	}
}

func unresolvedUserCount(n *ir.Node, resolved map[*ir.Node]bool) int {
	count := 0
	for _, u := range n.Users() {
		if u.IsDead() {
			continue
		}
		if !resolved[u] {
			count++
		}
	}
	return count
}

func resolvePlacement(n *ir.Node, blockOf map[*ir.Node]*Block, rpoIndex map[*Block]int, idom map[*Block]*Block, entry *Block) *Block {
	if n.Op.IsGlobalValue() {
		return entry
	}

	var lca *Block
	for _, u := range n.Users() {
		if u.IsDead() {
			continue
		}
		ub := blockOf[u]
		if ub == nil {
			continue
		}
		if lca == nil {
			lca = ub
			continue
		}
		lca = intersect(lca, ub, rpoIndex, idom)
	}
	if lca != nil {
		return lca
	}

	for _, c := range n.ControlInputs() {
		if cb, ok := blockOf[c]; ok {
			return cb
		}
	}
	return entry
}

// allInputs concatenates value, control, and effect inputs -- the
// placement worklist treats all three kinds uniformly, mirroring
// reduce.allInputs.
func allInputs(n *ir.Node) []*ir.Node {
	out := make([]*ir.Node, 0, n.NumValueInput()+n.NumControlInput()+n.NumEffectInput())
	out = append(out, n.ValueInputs()...)
	out = append(out, n.ControlInputs()...)
	out = append(out, n.EffectInputs()...)
	return out
}
