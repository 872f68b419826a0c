package sched

// computeDominators implements the Cooper-Harvey-Kennedy iterative
// dominance algorithm, walking directly over the RPO index already
// computed for block symbols. rpo must be in reverse-postorder with
// rpo[0] the entry block.
func computeDominators(rpo []*Block) map[*Block]*Block {
	rpoIndex := make(map[*Block]int, len(rpo))
	for i, b := range rpo {
		rpoIndex[b] = i
	}

	idom := make(map[*Block]*Block, len(rpo))
	entry := rpo[0]
	idom[entry] = entry

	for changed := true; changed; {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom *Block
			for _, p := range b.Preds {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, rpoIndex, idom)
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	for _, b := range rpo {
		b.idom = idom[b]
	}
	return idom
}

// intersect finds the nearest common dominator of b and c given a
// (possibly partial) idom map and RPO numbering: walking the higher
// (later-in-RPO) finger up its idom chain until both fingers meet is
// the textbook Cooper-Harvey-Kennedy NCA query, and doubles as a
// general lowest-common-ancestor query over the finished dominator
// tree, which floating-node placement (placement.go) relies on.
func intersect(b, c *Block, rpoIndex map[*Block]int, idom map[*Block]*Block) *Block {
	for b != c {
		for rpoIndex[b] > rpoIndex[c] {
			b = idom[b]
		}
		for rpoIndex[c] > rpoIndex[b] {
			c = idom[c]
		}
	}
	return b
}
