package ir

// SubGraph is a lightweight handle holding only a function's End node;
// the node set is computed lazily by reverse-BFS over inputs from End.
// Two subgraphs are equal iff their End nodes are identical, which is
// exactly Go's == for a single-field comparable struct -- no custom
// Equal method needed.
type SubGraph struct {
	tail *Node
}

// NewSubGraph wraps end as a function handle. end must be (or will
// become) an End node; callers build End first, then wrap it.
func NewSubGraph(end *Node) *SubGraph {
	return &SubGraph{tail: end}
}

// End returns the function's End node.
func (sg *SubGraph) End() *Node { return sg.tail }

// Start locates the function's Start node by walking the End node's
// control predecessors back to the root; every well-formed function has
// exactly one Start reachable this way.
func (sg *SubGraph) Start() *Node {
	for _, n := range sg.Nodes() {
		if n.Op == OpStart {
			return n
		}
	}
	return nil
}

// Nodes performs the reverse-BFS from End along all input kinds,
// visiting each node once, in BFS-queue (insertion) order.
func (sg *SubGraph) Nodes() []*Node {
	if sg.tail == nil {
		return nil
	}
	seen := make(map[*Node]bool)
	queue := []*Node{sg.tail}
	seen[sg.tail] = true
	var order []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, kids := range [][]*Node{n.value, n.control, n.effect} {
			for _, k := range kids {
				if !seen[k] {
					seen[k] = true
					queue = append(queue, k)
				}
			}
		}
	}
	return order
}

// Equal reports whether sg and other share the same End node.
func (sg *SubGraph) Equal(other *SubGraph) bool {
	if sg == nil || other == nil {
		return sg == other
	}
	return sg.tail == other.tail
}
