package opt

import (
	"sort"

	"github.com/gross-lang/gross/ir"
)

// FrameLayout records the per-function offset assigned to each
// surviving Alloca and global, as produced by LowerMemAllocation.
// Offsets are in bytes from the function's frame base. LowerMemAllocation
// folds them into the accesses it rewrites; regalloc.Allocate extends
// the table in place with its spill slots.
type FrameLayout struct {
	Offsets map[*ir.Node]int32
	Size    int32
}

// LowerMemAllocation collects every surviving Alloca in sg plus every
// graph-registered global, assigns each a unique offset in one
// per-function region (frame first, globals appended after), rewrites
// every MemLoad/MemStore in sg that addresses one of them so its base
// points at the frame-pointer register and its offset folds in the
// assigned byte offset, and returns the layout. It runs outside the
// reducer fixed point because it needs the whole function's Alloca set
// at once, not a per-node local rewrite.
//
// fpReg is the target's frame-pointer register number. opt cannot
// import regalloc for the TargetTraits type -- regalloc already
// imports opt for FrameLayout -- so the caller threads the number
// through directly rather than opt looking up a global target
// singleton itself.
//
// A local Alloca's users are fully rewritten here and the Alloca itself
// is killed: nothing downstream (lower/sched/regalloc) ever sees it, so
// it never needs a schedule slot or register assignment of its own.
// Globals are never killed -- the same declaration node is shared
// across every function's subgraph, each computing (and rewriting to)
// its own offset into its own frame.
func LowerMemAllocation(g *ir.Graph, sg *ir.SubGraph, fpReg int) *FrameLayout {
	layout := &FrameLayout{Offsets: make(map[*ir.Node]int32)}

	var allocas []*ir.Node
	for _, n := range sg.Nodes() {
		if n.Op == ir.OpAlloca && !n.IsDead() {
			allocas = append(allocas, n)
		}
	}
	sort.Slice(allocas, func(i, j int) bool { return allocas[i].ID < allocas[j].ID })

	var off int32
	for _, a := range allocas {
		layout.Offsets[a] = off
		off += a.IntValue
	}
	for _, gv := range g.GlobalVars() {
		if _, ok := layout.Offsets[gv]; ok {
			continue
		}
		size := gv.IntValue
		if size == 0 {
			size = 4
		}
		layout.Offsets[gv] = off
		off += size
	}
	layout.Size = off

	fp := ir.NewDLXRegister(g, fpReg)
	for _, n := range sg.Nodes() {
		if !n.Op.IsMemOp() || n.IsDead() {
			continue
		}
		frameOff, ok := layout.Offsets[n.ValueInput(0)]
		if !ok {
			continue
		}
		rewriteFrameAddress(g, n, fp, frameOff)
	}

	for _, a := range allocas {
		if !a.HasUsers() {
			ir.Kill(a, g.DeadSentinel())
		}
	}

	return layout
}

// rewriteFrameAddress points n's base operand at fp and folds
// allocaOff into n's existing offset operand: constant-folded when
// that offset is already a ConstantInt (a scalar alloca, or a
// constant-indexed array access), otherwise a BinAdd ahead of
// pre-machine lowering so a variable index still resolves through the
// ordinary arithmetic-selection rules in lower.Select.
func rewriteFrameAddress(g *ir.Graph, n, fp *ir.Node, allocaOff int32) {
	offset := n.ValueInput(1)
	var newOffset *ir.Node
	if offset.Op == ir.OpConstantInt {
		newOffset = ir.ConstantInt(g, offset.IntValue+allocaOff)
	} else {
		newOffset = ir.NewBinOp(g, ir.OpBinAdd).LHS(offset).RHS(ir.ConstantInt(g, allocaOff)).Build()
	}
	ir.SetInput(n, 0, fp, ir.KindValue)
	ir.SetInput(n, 1, newOffset, ir.KindValue)
}
