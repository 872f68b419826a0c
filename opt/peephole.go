// Package opt implements the optimization reducers: ValuePromotion,
// Peephole, CSE, MemoryNormalize, MemoryLegalize, DCE, plus the
// non-reducer MemAllocationLowering pass. Peephole, CSE,
// MemoryNormalize, MemoryLegalize, and DCE are reduce.Reducer
// implementations run to a shared fixed point through package reduce's
// driver; ValuePromotion and MemAllocationLowering run as dedicated
// passes before/after that loop (see valuepromotion.go and
// memalloc.go for why).
package opt

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// Peephole constant-folds arithmetic and relational BinOps whose
// operands are both ConstantInt, one small struct per rewrite family
// in keeping with the rest of this package's reducers.
type Peephole struct{ G *ir.Graph }

func (Peephole) Name() string { return "Peephole" }

func (p Peephole) Reduce(n *ir.Node) reduce.Reduction {
	if !n.Op.IsArithmetic() && !n.Op.IsRelational() {
		return reduce.NoChange()
	}
	lhs, rhs := n.ValueInput(0), n.ValueInput(1)
	if lhs.Op != ir.OpConstantInt || rhs.Op != ir.OpConstantInt {
		return reduce.NoChange()
	}
	a, b := lhs.IntValue, rhs.IntValue

	if n.Op.IsRelational() {
		var result int32
		if evalRelation(n.Op, a, b) {
			result = 1
		}
		return reduce.Replace(ir.ConstantInt(p.G, result))
	}

	switch n.Op {
	case ir.OpBinAdd:
		return reduce.Replace(ir.ConstantInt(p.G, a+b))
	case ir.OpBinSub:
		// "source language lacks signed negatives in constants" --
		// only fold when the result stays non-negative.
		if a-b < 0 {
			return reduce.NoChange()
		}
		return reduce.Replace(ir.ConstantInt(p.G, a-b))
	case ir.OpBinMul:
		return reduce.Replace(ir.ConstantInt(p.G, a*b))
	case ir.OpBinDiv:
		// Division is never folded.
		return reduce.NoChange()
	}
	return reduce.NoChange()
}

func evalRelation(op ir.Opcode, a, b int32) bool {
	switch op {
	case ir.OpBinLe:
		return a <= b
	case ir.OpBinLt:
		return a < b
	case ir.OpBinGe:
		return a >= b
	case ir.OpBinGt:
		return a > b
	case ir.OpBinEq:
		return a == b
	case ir.OpBinNe:
		return a != b
	}
	ir.Fatalf("evalRelation: %s is not relational", op)
	return false
}
