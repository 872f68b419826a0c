package ir

import (
	"fmt"
	"io"
)

// Graph owns all nodes (exclusive ownership; nodes outlive no graph) and
// the three interning pools (integer constants, string constants,
// function stubs), a lazy Dead sentinel, the set of global-variable
// declarations, the list of per-function SubGraph handles, and the
// attribute map. The graph is the sole arena: nodes are never freed
// individually, only replaced with the Dead sentinel and left in place
// until the whole graph is dropped.
type Graph struct {
	nodes []*Node
	nextID ID

	intPool map[int32]*Node
	strPool map[string]*Node
	stubPool map[*SubGraph]*Node

	dead *Node

	globals map[*Node]bool
	subs    []*SubGraph

	attrs map[*Node][]Attribute

	markerMax uint32
	markerInUse bool

	// Logf/LogStat sink for pass-level diagnostics. Defaults to
	// io.Discard.
	log io.Writer
}

// NewGraph returns an empty graph, the factory function the parser calls
// to start a compilation unit.
func NewGraph() *Graph {
	return &Graph{
		intPool:  make(map[int32]*Node),
		strPool:  make(map[string]*Node),
		stubPool: make(map[*SubGraph]*Node),
		globals:  make(map[*Node]bool),
		attrs:    make(map[*Node][]Attribute),
		log:      io.Discard,
	}
}

// SetLogOutput redirects Logf/LogStat output for this graph and every
// pass that runs over it.
func (g *Graph) SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	g.log = w
}

func (g *Graph) Logf(format string, args ...any) {
	fmt.Fprintf(g.log, format, args...)
}

func (g *Graph) LogStat(tag string, kv ...any) {
	fmt.Fprintf(g.log, "%s", tag)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(g.log, " %v=%v", kv[i+1], kv[i])
	}
	fmt.Fprintln(g.log)
}

// newNode allocates and inserts a bare node of the given opcode into the
// arena. Builders are the only callers; see builder.go.
func (g *Graph) newNode(op Opcode) *Node {
	n := &Node{ID: g.nextID, Op: op, g: g}
	g.nextID++
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns every node ever allocated in the graph, live or dead.
// Use SubGraph.Nodes for "all live nodes reachable from one function".
func (g *Graph) Nodes() []*Node { return g.nodes }

func (g *Graph) NumNodes() int { return len(g.nodes) }

// DeadSentinel lazily creates and returns the graph's single Dead
// sentinel node.
func (g *Graph) DeadSentinel() *Node {
	if g.dead == nil {
		g.dead = g.newNode(OpDead)
	}
	return g.dead
}

// MarkGlobal registers n as a global variable declaration.
func (g *Graph) MarkGlobal(n *Node) { g.globals[n] = true }

// IsGlobal reports whether n was registered via MarkGlobal.
func (g *Graph) IsGlobal(n *Node) bool { return g.globals[n] }

// GlobalVars returns every node registered via MarkGlobal. Registration
// order is not preserved; callers that need a stable order must sort.
func (g *Graph) GlobalVars() []*Node {
	out := make([]*Node, 0, len(g.globals))
	for n := range g.globals {
		out = append(out, n)
	}
	return out
}

// AddSubRegion registers sg as one of the graph's functions.
func (g *Graph) AddSubRegion(sg *SubGraph) { g.subs = append(g.subs, sg) }

// SubRegions returns every registered function subgraph, in registration
// order.
func (g *Graph) SubRegions() []*SubGraph { return g.subs }

// internInt returns the singleton ConstantInt node for v, building it on
// first request.
func (g *Graph) internInt(v int32, build func() *Node) *Node {
	if n, ok := g.intPool[v]; ok {
		return n
	}
	n := build()
	g.intPool[v] = n
	return n
}

func (g *Graph) internStr(s string, build func() *Node) *Node {
	if n, ok := g.strPool[s]; ok {
		return n
	}
	n := build()
	g.strPool[s] = n
	return n
}

func (g *Graph) internStub(sg *SubGraph, build func() *Node) *Node {
	for k, n := range g.stubPool {
		if *k == *sg {
			return n
		}
	}
	n := build()
	g.stubPool[sg] = n
	return n
}

func (g *Graph) NumConstInt() int  { return len(g.intPool) }
func (g *Graph) NumConstStr() int  { return len(g.strPool) }
