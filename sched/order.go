package sched

import (
	"sort"

	"github.com/gross-lang/gross/ir"
)

// orderBlock arranges b.Nodes: a header fix
// node (Start/Merge/Loop) comes first since nothing in the block can
// run before it; a terminator fix node (If/Return/End) comes last
// since it is the block's exit; everything else is topologically
// sorted by input-before-user (the effect chain is just another input
// kind, so memory nodes fall out of the same sort), ties broken by
// node-creation order. A Phi's own inputs are not followed, since they
// arrive along its Merge's incoming edges: a loop header's Phi comes
// before the same-block node that computes its back-edge value.
func orderBlock(b *Block, blockOf map[*ir.Node]*Block) {
	var header, terminator *ir.Node
	floating := make([]*ir.Node, 0, len(b.Nodes))

	for _, n := range b.Nodes {
		switch {
		case isHeaderFix(n.Op):
			header = n
		case isTerminatorFix(n.Op):
			terminator = n
		default:
			floating = append(floating, n)
		}
	}

	sort.Slice(floating, func(i, j int) bool { return floating[i].ID < floating[j].ID })

	visited := make(map[*ir.Node]bool, len(floating))
	ordered := make([]*ir.Node, 0, len(floating))
	var visit func(n *ir.Node)
	visit = func(n *ir.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, in := range allInputs(n) {
			if n.Op != ir.OpPhi && blockOf[in] == b && in != header && in != terminator {
				visit(in)
			}
		}
		ordered = append(ordered, n)
	}
	for _, n := range floating {
		visit(n)
	}

	out := make([]*ir.Node, 0, len(b.Nodes))
	if header != nil {
		out = append(out, header)
	}
	out = append(out, ordered...)
	if terminator != nil {
		out = append(out, terminator)
	}
	b.Nodes = out
}
