package sched

import "github.com/gross-lang/gross/ir"

// The methods in this file are the schedule-mutation primitives
// post-machine lowering (package postlower) needs to rewrite a
// finished schedule in place: remove/replace a scheduled node, or
// splice a new one before/after/at-the-end of an existing one.

func indexOf(b *Block, n *ir.Node) int {
	for i, x := range b.Nodes {
		if x == n {
			return i
		}
	}
	return -1
}

// RemoveNode drops n from b's node list and its schedule membership.
func (s *Schedule) RemoveNode(b *Block, n *ir.Node) {
	i := indexOf(b, n)
	if i < 0 {
		return
	}
	b.Nodes = append(b.Nodes[:i], b.Nodes[i+1:]...)
	delete(s.blockOf, n)
}

// ReplaceNode substitutes newNode for old at old's position in b.
func (s *Schedule) ReplaceNode(b *Block, old, newNode *ir.Node) {
	i := indexOf(b, old)
	if i < 0 {
		ir.Fatalf("ReplaceNode: %s is not scheduled in this block", old)
	}
	b.Nodes[i] = newNode
	delete(s.blockOf, old)
	s.blockOf[newNode] = b
}

// AddNodeBefore inserts n immediately before anchor in b.
func (s *Schedule) AddNodeBefore(b *Block, anchor, n *ir.Node) {
	i := indexOf(b, anchor)
	if i < 0 {
		ir.Fatalf("AddNodeBefore: %s is not scheduled in this block", anchor)
	}
	b.Nodes = append(b.Nodes[:i:i], append([]*ir.Node{n}, b.Nodes[i:]...)...)
	s.blockOf[n] = b
}

// AddNodeAfter inserts n immediately after anchor in b.
func (s *Schedule) AddNodeAfter(b *Block, anchor, n *ir.Node) {
	i := indexOf(b, anchor)
	if i < 0 {
		ir.Fatalf("AddNodeAfter: %s is not scheduled in this block", anchor)
	}
	b.Nodes = append(b.Nodes[:i+1:i+1], append([]*ir.Node{n}, b.Nodes[i+1:]...)...)
	s.blockOf[n] = b
}

// AppendNode adds n to the end of b's node list -- used when a block
// gains a new terminator (an inserted unconditional jump) rather than
// replacing an existing one.
func (s *Schedule) AppendNode(b *Block, n *ir.Node) {
	b.Nodes = append(b.Nodes, n)
	s.blockOf[n] = b
}
