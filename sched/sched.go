// Package sched implements the graph scheduler: it converts a
// function's sea-of-nodes subgraph into a GraphSchedule, an
// ordered list of basic blocks with predecessor/successor edges, a
// node-to-block map, and a reverse-postorder numbering that the
// post-machine lowerer (package postlower) and register allocator
// (package regalloc) consume directly.
//
// The CFG here is not read off an existing basic-block representation:
// it is derived from the graph's own fix nodes (Start/End/Merge/Loop/
// If/Return), building blocks out of control nodes before a
// block-level IR exists. Once that CFG is built, the dominator
// computation and reverse-postorder numbering use the iterative
// Cooper-Harvey-Kennedy algorithm rather than Lengauer-Tarjan or
// SCC/loop-nest machinery: floating-node placement only ever needs
// dominance, never loop-nest depth.
package sched

import "github.com/gross-lang/gross/ir"

// Block is one basic block of a function's schedule: a fix node
// (except none for a degenerate empty function, which cannot occur --
// every function has at least a Start) plus the floating nodes placed
// in it, in execution order.
type Block struct {
	ID    int
	RPO   int
	Nodes []*ir.Node

	Preds []*Block
	Succs []*Block

	idom *Block
}

// Symbol is the block-offset symbol the post-lowerer resolves to a
// PC-relative constant.
func (b *Block) Symbol() string {
	return symbolFor(b.RPO)
}

func symbolFor(rpo int) string {
	return ".L" + itoa(rpo)
}

// itoa avoids pulling in strconv for a single small-int conversion used
// only to name blocks -- RPO indices are always non-negative function-
// local counts.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Fix reports the fix node that anchors b (Start/End/Merge/Loop/If/
// Return), or nil for the (never-occurring) empty block.
func (b *Block) Fix() *ir.Node {
	for _, n := range b.Nodes {
		if isFixNode(n.Op) {
			return n
		}
	}
	return nil
}

// IndexOf returns n's position within b.Nodes, or -1 if n isn't
// scheduled in b -- regalloc's instruction-order comparison needs this
// to break ties between two nodes in the same block.
func (b *Block) IndexOf(n *ir.Node) int { return indexOf(b, n) }

// Schedule is the GraphSchedule for one function subgraph: its blocks
// in RPO order plus the node-to-block map.
type Schedule struct {
	Blocks  []*Block
	blockOf map[*ir.Node]*Block
	entry   *Block
}

// BlockOf returns the block n was placed in.
func (s *Schedule) BlockOf(n *ir.Node) *Block { return s.blockOf[n] }

// Entry returns the function's entry block (the one anchored by Start).
func (s *Schedule) Entry() *Block { return s.entry }

// Build schedules sg: fix-node block assignment, RPO numbering,
// floating-node placement, and within-block ordering, in that order.
func Build(g *ir.Graph, sg *ir.SubGraph) *Schedule {
	nodes := sg.Nodes()

	blockOf := assignFixBlocks(nodes)
	connectBlocks(blockOf)
	assignPhiBlocks(nodes, blockOf)

	entry := blockOf[sg.Start()]
	rpo := reversePostorder(entry)
	for i, b := range rpo {
		b.RPO = i
	}

	idom := computeDominators(rpo)

	placeFloating(nodes, blockOf, idom, entry)

	for _, b := range rpo {
		orderBlock(b, blockOf)
	}

	return &Schedule{Blocks: rpo, blockOf: blockOf, entry: entry}
}
