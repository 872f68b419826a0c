// Package postlower implements the last lowering stage before register
// allocation: it turns the scheduled sea-of-nodes graph into
// straight-line DLX instructions plus real control transfers, in three
// passes: branch/jump lowering, call-site expansion, and trimming.
//
// Conditional branches test one register against zero, a DLX-ISA
// reality -- but nothing upstream guarantees an If's relation already
// compares against a literal zero. Lower handles this generally: when
// the relation's RHS isn't the literal zero constant, a DLXSub(LHS,
// RHS) node is synthesized first and used as the branch's comparand.
// Non-relational predicates get the same "compare against zero"
// materialization regardless of what kind of value they are.
package postlower

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// relationBranch maps a relational BinOp opcode to the DLX conditional
// branch that tests the same relation against zero.
var relationBranch = map[ir.Opcode]ir.Opcode{
	ir.OpBinLt: ir.OpDLXBlt,
	ir.OpBinLe: ir.OpDLXBle,
	ir.OpBinGt: ir.OpDLXBgt,
	ir.OpBinGe: ir.OpDLXBge,
	ir.OpBinEq: ir.OpDLXBeq,
	ir.OpBinNe: ir.OpDLXBne,
}

// invertBranch maps a DLX conditional branch opcode to the one testing
// the negated relation -- used when the fallthrough block is the true
// arm, so the branch itself must target the false arm instead.
var invertBranch = map[ir.Opcode]ir.Opcode{
	ir.OpDLXBlt: ir.OpDLXBge, ir.OpDLXBge: ir.OpDLXBlt,
	ir.OpDLXBle: ir.OpDLXBgt, ir.OpDLXBgt: ir.OpDLXBle,
	ir.OpDLXBeq: ir.OpDLXBne, ir.OpDLXBne: ir.OpDLXBeq,
}

// Run lowers s in place: branch and jump materialization, call-site
// expansion, then removal of the control-skeleton nodes block layout
// and branches have now made redundant.
func Run(g *ir.Graph, s *sched.Schedule) {
	lowerBranches(g, s)
	insertUnconditionalJumps(g, s)
	lowerCalls(g, s)
	trim(s)
}
