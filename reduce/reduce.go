// Package reduce implements the fixed-point graph reducer: a single
// worklist-driven driver shared by the node-local passes (opt.Peephole,
// opt.CSE, opt.MemoryNormalize, opt.MemoryLegalize, opt.DCE, and
// lower.Select), parameterized by one or more Reducer objects.
//
// The driver itself is opcode-agnostic; it only knows how to walk the
// graph and apply whatever Reduction a Reducer returns. Keeping the
// walk and the rewrite rules separate means a new optimization is just
// a new Reducer implementation, with no changes to the worklist
// discipline itself.
package reduce

import "github.com/gross-lang/gross/ir"

// Reduction is the result a Reducer returns for one node.
type Reduction struct {
	changed bool
	to      *ir.Node
}

// NoChange reports that the reducer made no observation worth acting on.
func NoChange() Reduction { return Reduction{} }

// Replace reports that old is to be replaced by to. Passing old itself
// back means "changed in place" (the node kept its identity but its
// inputs were rewired by the reducer); passing a different node means
// the driver must rewire old's users to to and kill old.
func Replace(to *ir.Node) Reduction { return Reduction{changed: true, to: to} }

// Changed reports whether this Reduction is a Replace (as opposed to
// NoChange). Exposed mainly so reducer implementations can be unit
// tested directly, one Reduce call at a time, without driving the
// whole fixed-point loop.
func (r Reduction) Changed() bool { return r.changed }

// To returns the replacement node carried by a Replace Reduction. Only
// meaningful when Changed() is true.
func (r Reduction) To() *ir.Node { return r.to }

// Reducer is the capability every optimization pass implements. Few
// reducers exist and they are all known at compile time, so a plain
// interface with dynamic dispatch over a small, fixed set of
// implementations is enough; there's no need for a closed sum type.
type Reducer interface {
	Name() string
	Reduce(n *ir.Node) Reduction
}

// state is the four-valued per-node marker the driver maintains.
type state int

const (
	unvisited state = iota
	visited
	onStack
	revisit
)

// Run drives reducers to a fixed point over one function subgraph.
// Reducers are tried in order each time a node is popped, and the first
// one that reports a change ends that visit. A node that no reducer
// changes is marked Visited, as is a node changed in place whose inputs
// have all been visited already.
func Run(g *ir.Graph, sg *ir.SubGraph, reducers ...Reducer) {
	d := &driver{g: g, reducers: reducers, marker: ir.NewNodeMarker[state](g, 4)}
	defer d.marker.Drop()
	d.run(sg)
}

type driver struct {
	g        *ir.Graph
	reducers []Reducer
	marker   *ir.NodeMarker[state]

	stack   []*ir.Node
	revisit []*ir.Node
}

func (d *driver) run(sg *ir.SubGraph) {
	d.dfsPush(sg.End())
	for {
		for len(d.stack) > 0 {
			n := d.pop()
			if n.IsDead() {
				continue
			}
			d.step(n)
		}
		if len(d.revisit) == 0 {
			return
		}
		for _, n := range d.revisit {
			if d.marker.Get(n) == revisit {
				d.marker.Set(n, onStack)
				d.stack = append(d.stack, n)
			}
		}
		d.revisit = d.revisit[:0]
	}
}

// dfsPush performs the initial DFS from End along inputs, pushing each
// node once finished (post-order) and marking it OnStack as it is
// queued.
func (d *driver) dfsPush(n *ir.Node) {
	if d.marker.Get(n) != unvisited {
		return
	}
	d.marker.Set(n, onStack)
	for _, in := range allInputs(n) {
		d.dfsPush(in)
	}
	d.stack = append(d.stack, n)
}

func (d *driver) pop() *ir.Node {
	n := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return n
}

// step applies every reducer to n in turn, stopping at the first one
// that reports a change. Reducers are independent passes running to a
// shared fixed point, so the first applicable rewrite wins for this
// visit; the node is visited again only if it is pushed back (an
// unvisited input during an in-place change) or one of its inputs
// changes later.
func (d *driver) step(n *ir.Node) {
	for _, r := range d.reducers {
		red := r.Reduce(n)
		if !red.changed {
			continue
		}
		if red.to == n {
			d.replaceInPlace(n)
			return
		}
		d.replaceWithOther(n, red.to)
		return
	}
	d.marker.Set(n, visited)
}

// replaceInPlace handles Replace(N): push any not-yet-visited input,
// then either leave N on the stack (if a recursion occurred) or mark it
// Visited and enqueue its users for revisit.
func (d *driver) replaceInPlace(n *ir.Node) {
	recursed := false
	for _, in := range allInputs(n) {
		if in == n {
			continue
		}
		if d.marker.Get(in) == unvisited {
			d.marker.Set(in, onStack)
			d.stack = append(d.stack, in)
			recursed = true
		}
	}
	if recursed {
		d.marker.Set(n, onStack)
		d.stack = append(d.stack, n)
		return
	}
	d.marker.Set(n, visited)
	d.enqueueRevisit(n.Users())
}

// replaceWithOther handles Replace(M), M != N: rewire N's users to M,
// kill N, and push M if it hasn't been visited yet.
func (d *driver) replaceWithOther(n, to *ir.Node) {
	users := n.Users()
	ir.ReplaceWith(n, to)
	ir.Kill(n, d.g.DeadSentinel())
	d.enqueueRevisit(users)
	if d.marker.Get(to) == unvisited {
		d.marker.Set(to, onStack)
		d.stack = append(d.stack, to)
	}
}

// enqueueRevisit marks every already-Visited user Revisit and queues it
// for the next flush; users still OnStack or Unvisited will see the
// change when the driver reaches them normally.
func (d *driver) enqueueRevisit(users []*ir.Node) {
	for _, u := range users {
		if u.IsDead() {
			continue
		}
		if d.marker.Get(u) == visited {
			d.marker.Set(u, revisit)
			d.revisit = append(d.revisit, u)
		}
	}
}

// allInputs concatenates value, control, and effect inputs -- the DFS
// and revisit logic treat all three kinds uniformly; no kind
// distinction is drawn at this level.
func allInputs(n *ir.Node) []*ir.Node {
	out := make([]*ir.Node, 0, n.NumValueInput()+n.NumControlInput()+n.NumEffectInput())
	out = append(out, n.ValueInputs()...)
	out = append(out, n.ControlInputs()...)
	out = append(out, n.EffectInputs()...)
	return out
}
