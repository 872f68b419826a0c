package regalloc

import "github.com/gross-lang/gross/ir"

// immediateFormOps is the set of DLX binops whose RHS is a literal
// immediate rather than a register operand -- lower.Select only ever
// emits these with a ConstantInt RHS (and a non-constant LHS), so
// commitRegisterNodes must leave that slot alone instead of routing it
// through the register file.
var immediateFormOps = map[ir.Opcode]bool{
	ir.OpDLXAddI: true, ir.OpDLXSubI: true,
	ir.OpDLXMulI: true, ir.OpDLXDivI: true,
	ir.OpDLXLshI: true, ir.OpDLXRshI: true,
}

// commitRegisterNodes turns every still-two-operand DLX arithmetic
// node into explicit three-address form: its two value inputs become
// register nodes, and a third value input is appended pointing at the
// node's own assigned destination register.
//
// Operand order here is (src1, src2, dest) -- append-only, matching
// ir.DLXBinOpBuilder's own doc ("after commit, a third (dest) is
// appended"). The ordering itself carries no semantic weight, only the
// count and kind of operands do.
//
// A node whose own result was spilled has no register assignment to
// reuse as its dest operand -- a spilled definition is still a DLX
// instruction's destination architecturally (insertSpillCodes stores
// straight from it), so this commit mints a scratch register for that
// case rather than assuming every arithmetic result lands in a
// register.
func (a *Allocator) commitRegisterNodes() {
	for _, b := range a.s.Blocks {
		for _, n := range b.Nodes {
			if !n.Op.IsDLXBinOp() || n.NumValueInput() != 2 {
				continue
			}
			allowImmediate := immediateFormOps[n.Op]

			lhs := a.operandRegisterNode(n, n.ValueInput(0), false)
			rhs := a.operandRegisterNode(n, n.ValueInput(1), allowImmediate)
			dest := a.destRegisterNode(n)

			ir.SetInput(n, 0, lhs, ir.KindValue)
			ir.SetInput(n, 1, rhs, ir.KindValue)
			ir.AppendInput(n, dest, ir.KindValue)
		}
	}
}

// operandRegisterNode resolves one value operand of n to its final
// register-node form. allowImmediate permits v to pass through
// unchanged when it's a ConstantInt -- true only for the RHS of an
// immediate-form op, the one slot DLX lets hold a literal. Elsewhere a
// ConstantInt operand (lower.Select leaves one behind on a
// non-commutable register-form Sub/Div with a constant LHS, e.g.
// `5 - x`) has no DLX register-form encoding and is materialized into
// a scratch register first.
func (a *Allocator) operandRegisterNode(n, v *ir.Node, allowImmediate bool) *ir.Node {
	if v.Op == ir.OpConstantInt {
		if allowImmediate {
			return v
		}
		return a.materializeImmediate(n, v)
	}
	if v.Op.IsDLXRegister() {
		return v
	}
	loc, ok := a.assignment[v]
	if !ok || !loc.IsRegister {
		ir.Fatalf("regalloc: commit: %s has no register assignment -- spilled uses must be reloaded before commit", v)
	}
	return a.registerNode(loc.Index)
}

// materializeImmediate loads constant v into a fresh scratch register
// via `AddI r0, v` just before n, and returns that register node.
// Register 0 is the target's hardwired zero register (TargetTraits.
// IsReserved), so this is a plain load-immediate idiom, not a real
// addition.
func (a *Allocator) materializeImmediate(n, v *ir.Node) *ir.Node {
	dest := a.registerNode(a.nextScratch())
	mov := ir.NewDLXBinOp(a.g, ir.OpDLXAddI).LHS(a.registerNode(0)).RHS(v).Dest(dest).Build()
	a.s.AddNodeBefore(a.s.BlockOf(n), n, mov)
	return dest
}

func (a *Allocator) destRegisterNode(n *ir.Node) *ir.Node {
	if loc, ok := a.assignment[n]; ok && loc.IsRegister {
		return a.registerNode(loc.Index)
	}
	return a.registerNode(a.nextScratch())
}
