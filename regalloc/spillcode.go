package regalloc

import "github.com/gross-lang/gross/ir"

const wordSize = 4

// insertSpillCodes materializes every stack-slot assignment as real
// memory traffic: reserves one frame region sized for the slots used,
// a DLXStW right after each spilled definition (Phis need none -- a
// Phi's "definition" is its predecessor moves, already stored through
// their own assignment), and a DLXLdW immediately before each non-Phi
// use, rewiring that use to the load.
func (a *Allocator) insertSpillCodes() {
	if len(a.spillSlots) == 0 {
		return
	}

	base := a.layout.Size
	a.layout.Size += int32(len(a.spillSlots)) * wordSize
	fp := a.registerNode(a.traits.FramePointer)

	for n, loc := range a.assignment {
		if loc.IsRegister {
			continue
		}
		offset := base + int32(loc.Index)*wordSize
		a.layout.Offsets[n] = offset

		if n.Op != ir.OpPhi {
			a.storeSpilled(n, fp, offset)
		}
		for _, u := range n.ValueUsers() {
			if u.Op == ir.OpPhi {
				continue
			}
			a.loadSpilled(n, u, fp, offset)
		}
	}
}

func (a *Allocator) storeSpilled(n, fp *ir.Node, offset int32) {
	b := a.s.BlockOf(n)
	st := ir.NewDLXMem(a.g, ir.OpDLXStW).
		BaseAddr(fp).
		Offset(ir.ConstantInt(a.g, offset)).
		Src(n).
		Build()
	a.s.AddNodeAfter(b, n, st)
}

func (a *Allocator) loadSpilled(n, user, fp *ir.Node, offset int32) {
	b := a.s.BlockOf(user)
	ld := ir.NewDLXMem(a.g, ir.OpDLXLdW).
		BaseAddr(fp).
		Offset(ir.ConstantInt(a.g, offset)).
		Build()
	a.s.AddNodeBefore(b, user, ld)
	ir.ReplaceUseOfWith(user, n, ld, ir.KindValue)
	a.occupy(RegisterLoc(a.nextScratch()), ld)
}
