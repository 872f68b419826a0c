package sched

// reversePostorder computes a DFS-postorder over entry's successor
// edges and reverses it. A plain recursive visit is used rather than an
// explicit work-stack cursor, since this CFG is small enough that the
// extra bookkeeping buys nothing.
func reversePostorder(entry *Block) []*Block {
	seen := map[*Block]bool{entry: true}
	var post []*Block

	var visit func(b *Block)
	visit = func(b *Block) {
		for _, s := range b.Succs {
			if !seen[s] {
				seen[s] = true
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(entry)

	rpo := make([]*Block, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}
