package regalloc

import "fmt"

// Location is where a value's register allocator assignment lives:
// either an architectural register or a frame-relative stack slot.
type Location struct {
	IsRegister bool
	Index      int // register number, or spill-slot index
}

// RegisterLoc constructs a register location.
func RegisterLoc(r int) Location { return Location{IsRegister: true, Index: r} }

// StackSlotLoc constructs a stack-slot location.
func StackSlotLoc(i int) Location { return Location{IsRegister: false, Index: i} }

func (l Location) String() string {
	if l.IsRegister {
		return fmt.Sprintf("r%d", l.Index)
	}
	return fmt.Sprintf("slot%d", l.Index)
}
