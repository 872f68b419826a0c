// Package lower implements pre-machine instruction selection: a reducer
// that rewrites BinAdd/Sub/Mul/Div and MemLoad/MemStore into the DLX
// opcode family lower/postlower/regalloc share, choosing
// immediate-vs-register arithmetic forms and word-indexed-vs-
// base-plus-register memory forms.
package lower

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/reduce"
)

// Select is the pre-machine lowering reducer.
type Select struct{ G *ir.Graph }

func (Select) Name() string { return "PreMachineLowering" }

func (s Select) Reduce(n *ir.Node) reduce.Reduction {
	switch {
	case n.Op.IsArithmetic():
		return s.selectArithmetic(n)
	case n.Op.IsMemOp():
		return s.selectMemory(n)
	}
	return reduce.NoChange()
}

var arithRegOp = map[ir.Opcode]ir.Opcode{
	ir.OpBinAdd: ir.OpDLXAdd,
	ir.OpBinSub: ir.OpDLXSub,
	ir.OpBinMul: ir.OpDLXMul,
	ir.OpBinDiv: ir.OpDLXDiv,
}

var arithImmOp = map[ir.Opcode]ir.Opcode{
	ir.OpBinAdd: ir.OpDLXAddI,
	ir.OpBinSub: ir.OpDLXSubI,
	ir.OpBinMul: ir.OpDLXMulI,
	ir.OpBinDiv: ir.OpDLXDivI,
}

// selectArithmetic applies three selection rules in order: commute a
// constant operand to RHS and emit the immediate form; multiplication
// by a power of two becomes a shift; otherwise emit the register form.
func (s Select) selectArithmetic(n *ir.Node) reduce.Reduction {
	lhs, rhs := n.ValueInput(0), n.ValueInput(1)

	// Relations are left alone until branch lowering;
	// IsArithmetic already excludes them, so nothing to guard here.

	if lhs.Op == ir.OpConstantInt && rhs.Op != ir.OpConstantInt {
		if n.Op == ir.OpBinAdd || n.Op == ir.OpBinMul {
			lhs, rhs = rhs, lhs // commutative: swap so the constant lands on RHS
		}
	}

	if rhs.Op == ir.OpConstantInt {
		if n.Op == ir.OpBinMul {
			if shift, ok := powerOfTwoShift(rhs.IntValue); ok {
				return reduce.Replace(s.buildBinOp(n, ir.OpDLXLshI, lhs, ir.ConstantInt(s.G, shift)))
			}
		}
		return reduce.Replace(s.buildBinOp(n, arithImmOp[n.Op], lhs, rhs))
	}

	return reduce.Replace(s.buildBinOp(n, arithRegOp[n.Op], lhs, rhs))
}

func powerOfTwoShift(v int32) (int32, bool) {
	if v <= 0 {
		return 0, false
	}
	shift := int32(0)
	for x := v; x > 1; x >>= 1 {
		if x&1 != 0 {
			return 0, false
		}
		shift++
	}
	return shift, true
}

func (s Select) buildBinOp(old *ir.Node, op ir.Opcode, lhs, rhs *ir.Node) *ir.Node {
	b := ir.NewDLXBinOp(s.G, op).LHS(lhs).RHS(rhs)
	for _, c := range old.ControlInputs() {
		b = b.Control(c)
	}
	for _, e := range old.EffectInputs() {
		b = b.Effect(e)
	}
	return b.Build()
}

// selectMemory picks the memory form by operand shape: constant offset
// picks the word-indexed opcode, register offset
// picks the base-plus-register opcode. Effect and control inputs are
// propagated unchanged from the node being replaced.
func (s Select) selectMemory(n *ir.Node) reduce.Reduction {
	base, offset := n.ValueInput(0), n.ValueInput(1)
	isStore := n.Op == ir.OpMemStore

	var op ir.Opcode
	switch {
	case offset.Op == ir.OpConstantInt && isStore:
		op = ir.OpDLXStW
	case offset.Op == ir.OpConstantInt && !isStore:
		op = ir.OpDLXLdW
	case isStore:
		op = ir.OpDLXStX
	default:
		op = ir.OpDLXLdX
	}

	b := ir.NewDLXMem(s.G, op).BaseAddr(base).Offset(offset)
	if isStore {
		b = b.Src(n.ValueInput(2))
	}
	for _, c := range n.ControlInputs() {
		b = b.Control(c)
	}
	for _, e := range n.EffectInputs() {
		b = b.Effect(e)
	}
	return reduce.Replace(b.Build())
}

// Run lowers every arithmetic and memory node in sg to its DLX form.
func Run(g *ir.Graph, sg *ir.SubGraph) {
	reduce.Run(g, sg, Select{G: g})
}
