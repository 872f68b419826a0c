// Package postra implements the last pass before emission: a bounded
// fix-point peephole over each scheduled block that deletes degenerate
// moves the register allocator's PHI legalization and location-sharing
// routinely leave behind, plus whatever control and call-marker
// scaffolding survived post-machine lowering and register allocation
// purely to carry information between passes.
//
// The allocator's caller-saved bitset (regalloc.Allocator.CallerSaved)
// is available to a caller of Run, but this package does not itself
// emit save/restore sequences from it -- that translation is left for
// whichever backend owns physical encoding.
package postra

import "github.com/gross-lang/gross/sched"

// maxPeepholeIterations bounds Run's per-block fix-point loop.
const maxPeepholeIterations = 10

// Run lowers s in place: every block is peepholed to a fix point.
func Run(s *sched.Schedule) {
	for _, b := range s.Blocks {
		counter := 0
		for {
			changed := visitBlock(s, b)
			counter++
			if !changed || counter >= maxPeepholeIterations {
				break
			}
		}
	}
}
