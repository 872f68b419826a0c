package regalloc

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/opt"
	"github.com/gross-lang/gross/sched"
)

// Allocate runs the full linear-scan pass over s:
// PHI legalization, RPO-ordered assignment with caller-saved
// bookkeeping at call sites, spill-code insertion, and the
// three-address commit. layout is extended in place with any spill
// slots this pass introduces.
func Allocate(g *ir.Graph, s *sched.Schedule, traits TargetTraits, layout *opt.FrameLayout) *Allocator {
	a := newAllocator(g, s, traits, layout)

	var phis []*ir.Node
	for _, b := range s.Blocks {
		for _, n := range b.Nodes {
			if n.Op == ir.OpPhi && n.NumValueInput() > 0 && n.NumEffectInput() == 0 {
				phis = append(phis, n)
			}
		}
	}
	for _, phi := range phis {
		legalizePhiInputs(g, s, phi)
	}

	for _, b := range s.Blocks {
		for _, n := range b.Nodes {
			a.recycle(n)

			switch {
			case n.Op == ir.OpVirtDLXCallsiteBegin:
				a.snapshotCallerSaved(n)
			case len(n.ValueUsers()) == 0:
				// no reader, no storage needed.
			case n.Op == ir.OpConstantInt:
				// always consumed as an immediate operand (see
				// commitRegisterNodes/operandRegisterNode); assigning
				// it a register here would just waste one.
			case n.Op.IsDLXRegister():
				// already names a concrete architectural register --
				// opt.LowerMemAllocation mints the frame-pointer node
				// this way, and TargetTraits.IsReserved keeps the
				// general pool from ever handing that number to
				// anything else, so no allocation is needed, just a
				// fixed-location entry for Allocator.Assignment.
				a.assignment[n] = RegisterLoc(n.RegNum)
			case n.Op == ir.OpPhi:
				a.adoptPhiOccupancy(n)
			default:
				if _, ok := a.assignment[n]; !ok {
					a.assign(n)
				}
			}
		}
	}

	a.insertSpillCodes()
	a.commitRegisterNodes()
	return a
}

// adoptPhiOccupancy transfers register-file/spill-slot occupancy to
// phi itself once the RPO walk reaches it. By this point phi always
// already has an assignment: PHI legalization rewired its value
// inputs to moves, and at least one of those moves -- the one in the
// merge's non-back-edge predecessor, which always precedes the merge
// in RPO -- was already visited and propagated its location onto phi
// (see Allocator.assign). A loop-carried phi's back-edge producer, by
// contrast, is visited after the phi and reuses phi's location
// instead of picking its own.
func (a *Allocator) adoptPhiOccupancy(phi *ir.Node) {
	loc, ok := a.assignment[phi]
	if !ok {
		ir.Fatalf("regalloc: %s reached allocation with no assignment propagated from its legalized inputs", phi)
	}
	if loc.IsRegister {
		a.regUsage[loc.Index] = phi
	} else {
		a.spillSlots[loc.Index] = phi
	}
}
