package opt

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// DCE implements two dead-code sub-passes, run to a fixed point inside
// the standard reducer: kill unused non-global nodes, and strip any
// input edge whose source is the dead sentinel (so a killed node's
// former operands lose that reference in turn and can themselves
// become unused).
type DCE struct{ G *ir.Graph }

func (DCE) Name() string { return "DCE" }

func (d DCE) Reduce(n *ir.Node) reduce.Reduction {
	dead := d.G.DeadSentinel()
	if n == dead {
		return reduce.NoChange()
	}

	if stripDeadInputs(n, dead) {
		return reduce.Replace(n)
	}

	if !n.HasUsers() && !n.Op.IsGlobalValue() && !d.G.IsGlobal(n) {
		return reduce.Replace(dead)
	}

	return reduce.NoChange()
}

// stripDeadInputs removes every input edge of n (of any kind) whose
// source is dead, reporting whether it removed anything.
func stripDeadInputs(n, dead *ir.Node) bool {
	removed := false
	for _, kind := range []ir.UseKind{ir.KindValue, ir.KindControl, ir.KindEffect} {
		for {
			before := inputsOf(n, kind)
			idx := -1
			for i, in := range before {
				if in == dead {
					idx = i
					break
				}
			}
			if idx < 0 {
				break
			}
			ir.RemoveInput(n, idx, kind)
			removed = true
		}
	}
	return removed
}

func inputsOf(n *ir.Node, kind ir.UseKind) []*ir.Node {
	switch kind {
	case ir.KindValue:
		return n.ValueInputs()
	case ir.KindControl:
		return n.ControlInputs()
	case ir.KindEffect:
		return n.EffectInputs()
	}
	ir.Fatalf("inputsOf: invalid kind %d", kind)
	return nil
}
