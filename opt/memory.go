package opt

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// MemoryNormalize: when a MemStore's effect predecessor also feeds one
// or more MemLoad nodes directly (i.e. the loads and the store
// currently race on the same predecessor), rewrite the store's effect
// input to depend on the loads instead, so the store is ordered after
// every load that observes the pre-store state. Multiple sibling loads
// collapse into one EffectMerge.
type MemoryNormalize struct{ G *ir.Graph }

func (MemoryNormalize) Name() string { return "MemoryNormalize" }

func (m MemoryNormalize) Reduce(n *ir.Node) reduce.Reduction {
	if n.Op != ir.OpMemStore && n.Op != ir.OpDLXStW && n.Op != ir.OpDLXStX {
		return reduce.NoChange()
	}
	if n.NumEffectInput() == 0 {
		return reduce.NoChange()
	}
	pred := n.EffectInput(0)
	loads := siblingLoads(pred, n)
	if len(loads) == 0 {
		return reduce.NoChange()
	}
	newPred := mergeEffects(m.G, loads)
	ir.SetInput(n, 0, newPred, ir.KindEffect)
	return reduce.Replace(n)
}

// siblingLoads returns pred's effect-users that are MemLoad/DLXLdW/
// DLXLdX, excluding exclude itself.
func siblingLoads(pred, exclude *ir.Node) []*ir.Node {
	var out []*ir.Node
	for _, u := range pred.Users() {
		if u == exclude {
			continue
		}
		switch u.Op {
		case ir.OpMemLoad, ir.OpDLXLdW, ir.OpDLXLdX:
			if isEffectUser(u, pred) {
				out = append(out, u)
			}
		}
	}
	return out
}

func isEffectUser(n, candidate *ir.Node) bool {
	for _, e := range n.EffectInputs() {
		if e == candidate {
			return true
		}
	}
	return false
}

// mergeEffects returns the single effect predecessor a downstream node
// should take given a set of sibling loads: the load itself if there
// is only one, otherwise a fresh EffectMerge over all of them.
func mergeEffects(g *ir.Graph, effects []*ir.Node) *ir.Node {
	if len(effects) == 1 {
		return effects[0]
	}
	b := ir.NewEffectMerge(g)
	for _, e := range effects {
		b.AddEffect(e)
	}
	return b.Build()
}

// MemoryLegalize: when a MemStore has both Phi users and MemLoad users
// reading it as their effect predecessor, the Phi's effect input is
// rewritten to the merged loads instead of the raw store, so the phi
// carries "latest seen read" rather than the unread store.
type MemoryLegalize struct{ G *ir.Graph }

func (MemoryLegalize) Name() string { return "MemoryLegalize" }

func (m MemoryLegalize) Reduce(n *ir.Node) reduce.Reduction {
	if n.Op != ir.OpMemStore && n.Op != ir.OpDLXStW && n.Op != ir.OpDLXStX {
		return reduce.NoChange()
	}
	var phis, loads []*ir.Node
	for _, u := range n.Users() {
		if !isEffectUser(u, n) {
			continue
		}
		switch u.Op {
		case ir.OpPhi:
			phis = append(phis, u)
		case ir.OpMemLoad, ir.OpDLXLdW, ir.OpDLXLdX:
			loads = append(loads, u)
		}
	}
	if len(phis) == 0 || len(loads) == 0 {
		return reduce.NoChange()
	}
	merged := mergeEffects(m.G, loads)
	changed := false
	for _, p := range phis {
		for i, e := range p.EffectInputs() {
			if e == n {
				ir.SetInput(p, i, merged, ir.KindEffect)
				changed = true
			}
		}
	}
	if !changed {
		return reduce.NoChange()
	}
	return reduce.Replace(n)
}
