// Package regalloc implements the linear-scan register allocator:
// PHI legalization, RPO-ordered register/spill assignment, spill-code
// insertion, the three-address commit that turns two-operand DLX
// arithmetic into (src1, src2, dest) form, and caller-saved-register
// bookkeeping at call sites.
//
// Live-range end is defined as the last RPO position at which any
// value-user references the node -- a single ordered-users scan
// rather than a per-block dataflow fixed point, which keeps the
// allocator simple at the cost of precision a more elaborate
// distance-based or loop-nest-aware liveness analysis would buy.
package regalloc

import "github.com/gross-lang/gross/target"

// TargetTraits is the fixed target-description record: a register
// count, reserved special-purpose registers, and four register-class
// ranges.
type TargetTraits struct {
	RegisterCount int

	ReturnStorage int
	FramePointer  int
	StackPointer  int
	GlobalPointer int
	LinkRegister  int

	FirstCallerSaved int
	LastCallerSaved  int
	FirstCalleeSaved int
	LastCalleeSaved  int
	FirstParameter   int
	LastParameter    int
	FirstScratch     int
	LastScratch      int
}

// DLX is the full 32-register DLX profile.
var DLX = TargetTraits{
	RegisterCount: 32,

	ReturnStorage: target.ReturnStorage,
	FramePointer:  target.FramePointer,
	StackPointer:  target.StackPointer,
	GlobalPointer: target.GlobalPointer,
	LinkRegister:  target.LinkRegister,

	FirstCallerSaved: 10,
	LastCallerSaved:  25,
	FirstCalleeSaved: 6,
	LastCalleeSaved:  9,
	FirstParameter:   2,
	LastParameter:    5,
	FirstScratch:     26,
	LastScratch:      27,
}

// CompactDLX narrows the general pool to one caller-saved and one
// callee-saved register, so a handful of simultaneously live values
// forces spilling; useful for exercising the spill path in tests.
var CompactDLX = func() TargetTraits {
	t := DLX
	t.FirstCallerSaved, t.LastCallerSaved = 7, 7
	t.FirstCalleeSaved, t.LastCalleeSaved = 6, 6
	return t
}()

// IsReserved reports whether register r is never available to the
// general allocator: the hardwired zero register, the fixed return
// register, the two scratch registers reserved for spill reloads, and
// the four pointer registers (FP/SP/GP/LR).
func (t TargetTraits) IsReserved(r int) bool {
	switch r {
	case target.Zero, t.ReturnStorage, t.FramePointer, t.StackPointer, t.GlobalPointer, t.LinkRegister:
		return true
	}
	return r >= t.FirstScratch && r <= t.LastScratch
}

// IsCalleeSaved reports whether r falls in the target's callee-saved
// range.
func (t TargetTraits) IsCalleeSaved(r int) bool {
	return r >= t.FirstCalleeSaved && r <= t.LastCalleeSaved
}
