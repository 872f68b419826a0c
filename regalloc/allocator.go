package regalloc

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/opt"
	"github.com/gross-lang/gross/sched"
)

// Allocator holds the linear-scan state for one function: which value
// (if any) currently occupies each register and spill slot, the final
// node-to-location assignment, and the caller-saved bitset snapshot
// taken at each call site.
type Allocator struct {
	g      *ir.Graph
	s      *sched.Schedule
	traits TargetTraits
	layout *opt.FrameLayout

	regUsage    []*ir.Node // indexed by register number, nil = free
	spillSlots  []*ir.Node // indexed by slot, nil = free
	assignment  map[*ir.Node]Location
	callerSaved map[*ir.Node]uint32 // VirtDLXCallsiteBegin -> live caller-saved/parameter register bitset

	scratchCounter int
	regNodes       map[int]*ir.Node // one DLXRegister node per register number, reused everywhere
}

// newAllocator builds an Allocator with an empty register file and no
// spill slots yet.
func newAllocator(g *ir.Graph, s *sched.Schedule, traits TargetTraits, layout *opt.FrameLayout) *Allocator {
	return &Allocator{
		g:           g,
		s:           s,
		traits:      traits,
		layout:      layout,
		regUsage:    make([]*ir.Node, traits.RegisterCount),
		assignment:  make(map[*ir.Node]Location),
		callerSaved: make(map[*ir.Node]uint32),
		regNodes:    make(map[int]*ir.Node),
	}
}

// registerNode returns the single DLXRegister node standing for
// register r, minting it on first reference. ir.NewDLXRegister's own
// doc names this table as the allocator's responsibility: register
// nodes aren't interned globally the way constants are, since their
// identity participates in per-instruction operand lists rather than
// value numbering.
func (a *Allocator) registerNode(r int) *ir.Node {
	if n, ok := a.regNodes[r]; ok {
		return n
	}
	n := ir.NewDLXRegister(a.g, r)
	a.regNodes[r] = n
	return n
}

// Assignment returns n's final location, or the zero Location and
// false if n was never assigned one (it had no value users).
func (a *Allocator) Assignment(n *ir.Node) (Location, bool) {
	loc, ok := a.assignment[n]
	return loc, ok
}

// CallerSaved returns the live-register bitset snapshotted at a
// VirtDLXCallsiteBegin node.
func (a *Allocator) CallerSaved(begin *ir.Node) uint32 { return a.callerSaved[begin] }

// recycle frees every register and spill slot whose occupant's live
// range ends exactly at n -- called once per node in RPO order, right
// before n would receive its own assignment.
func (a *Allocator) recycle(n *ir.Node) {
	for r, holder := range a.regUsage {
		if holder != nil && !a.traits.IsReserved(r) && liveRangeEnd(a.s, holder) == n {
			a.regUsage[r] = nil
		}
	}
	for i, holder := range a.spillSlots {
		if holder != nil && liveRangeEnd(a.s, holder) == n {
			a.spillSlots[i] = nil
		}
	}
}

// assign gives n a location, threading it to n's Phi value user (if
// any) so a phi and every one of its producers end up sharing exactly
// one storage location -- whichever of them the RPO walk reaches
// first picks it, and the rest just adopt it. For a forward (if/else)
// merge both producers precede the phi in RPO, so the first producer
// picks the location and silently assigns it to the still-unassigned
// phi too; for a loop-carried phi, the header (and hence the phi) is
// visited before the back edge's producer, so that producer takes the
// reuse branch instead.
func (a *Allocator) assign(n *ir.Node) Location {
	usr := phiUser(n)

	var loc Location
	reused := false
	if usr != nil {
		if l, ok := a.assignment[usr]; ok {
			loc, reused = l, true
		}
	}

	if !reused {
		if r, ok := a.findGeneralRegister(); ok {
			loc = RegisterLoc(r)
		} else {
			loc = a.freeSpillSlot()
		}
	}

	a.occupy(loc, n)
	if usr != nil && !reused {
		a.assignment[usr] = loc
	}
	return loc
}

// phiUser returns n's Phi value-user, if any. PHI legalization is
// restricted to two-input phis, so a legalized move (or the
// value feeding an unlegalized phi directly) has at most one.
func phiUser(n *ir.Node) *ir.Node {
	for _, u := range n.ValueUsers() {
		if u.Op == ir.OpPhi {
			return u
		}
	}
	return nil
}

// findGeneralRegister scans the target's general-purpose pool -- its
// callee-saved range followed by its caller-saved range -- for the
// first free register. This is deliberately narrower than "every
// non-reserved register":
// parameter registers and whatever lies outside those two named ranges
// are never handed out here, which is what makes CompactDLX's
// narrowing of the same two ranges actually shrink the usable pool
// instead of being silently ignored.
func (a *Allocator) findGeneralRegister() (int, bool) {
	for r := a.traits.FirstCalleeSaved; r <= a.traits.LastCalleeSaved; r++ {
		if !a.traits.IsReserved(r) && a.regUsage[r] == nil {
			return r, true
		}
	}
	for r := a.traits.FirstCallerSaved; r <= a.traits.LastCallerSaved; r++ {
		if !a.traits.IsReserved(r) && a.regUsage[r] == nil {
			return r, true
		}
	}
	return 0, false
}

// freeSpillSlot returns the first free stack-slot location, growing
// the slot table by one if every existing slot is occupied. It does
// not itself mark the slot occupied -- occupy does that uniformly for
// both registers and slots.
func (a *Allocator) freeSpillSlot() Location {
	for i, holder := range a.spillSlots {
		if holder == nil {
			return StackSlotLoc(i)
		}
	}
	a.spillSlots = append(a.spillSlots, nil)
	return StackSlotLoc(len(a.spillSlots) - 1)
}

// occupy records that n now holds loc, updating whichever of the
// register file or spill-slot table loc refers to so recycle can find
// it later.
func (a *Allocator) occupy(loc Location, n *ir.Node) {
	if loc.IsRegister {
		a.regUsage[loc.Index] = n
	} else {
		a.spillSlots[loc.Index] = n
	}
	a.assignment[n] = loc
}

// snapshotCallerSaved records, at a VirtDLXCallsiteBegin marker, every
// register the call itself or its surrounding code needs preserved
// across the call: SP and LR always, plus whichever caller-saved and
// parameter registers currently hold a live value. The actual
// save/restore code sequence is left for whatever consumes this
// snapshot downstream; this allocator only ever records the bitset.
func (a *Allocator) snapshotCallerSaved(begin *ir.Node) {
	var bits uint32
	bits |= 1 << uint(a.traits.StackPointer)
	bits |= 1 << uint(a.traits.LinkRegister)
	for r := a.traits.FirstCallerSaved; r <= a.traits.LastCallerSaved; r++ {
		if a.regUsage[r] != nil {
			bits |= 1 << uint(r)
		}
	}
	for r := a.traits.FirstParameter; r <= a.traits.LastParameter; r++ {
		if a.regUsage[r] != nil {
			bits |= 1 << uint(r)
		}
	}
	a.callerSaved[begin] = bits
}

// nextScratch round-robins through the target's scratch register
// range, used for the short-lived reload values insertSpillCodes
// introduces.
func (a *Allocator) nextScratch() int {
	span := a.traits.LastScratch - a.traits.FirstScratch + 1
	r := a.traits.FirstScratch + a.scratchCounter%span
	a.scratchCounter++
	return r
}
