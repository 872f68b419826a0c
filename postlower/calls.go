package postlower

import (
	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// lowerCalls expands every Call node into the virtual call-site
// sequence: a CallsiteBegin marker, one
// PassParam per argument, the call itself (a DLXBsr carrying the
// callee's SubGraph), a CallsiteEnd marker, and -- when the result is
// used -- an `AddI R1, #0` that copies the return value out of the
// fixed return register before regalloc assigns it a home.
//
// The callee is reached through an interned FunctionStub (one node
// shared by every call site to the same function, per the graph's
// pooling invariant), so lowering only severs this call's value-edge
// to it; the stub node itself is left alone for any other call site
// still referencing it.
func lowerCalls(g *ir.Graph, s *sched.Schedule) {
	var calls []*ir.Node
	for _, b := range s.Blocks {
		for _, n := range b.Nodes {
			if n.Op == ir.OpCall {
				calls = append(calls, n)
			}
		}
	}

	for _, cs := range calls {
		b := s.BlockOf(cs)
		view := ir.AsCall(cs)
		stub := view.Callee()
		target := stub.SubGraph
		args := append([]*ir.Node(nil), view.Args()...)

		var control *ir.Node
		if cs.NumControlInput() > 0 {
			control = cs.ControlInput(0)
		}

		begin := ir.NewDLXCallsiteBegin(g, control)
		s.AddNodeBefore(b, cs, begin)

		for _, arg := range args {
			pass := ir.NewDLXPassParam(g, arg, begin)
			s.AddNodeBefore(b, cs, pass)
		}

		ir.RemoveInputAll(cs, stub, ir.KindValue)

		callInstr := ir.NewDLXCall(g, target, begin)
		s.ReplaceNode(b, cs, callInstr)

		end := ir.NewDLXCallsiteEnd(g, begin)
		s.AddNodeAfter(b, callInstr, end)

		if cs.HasUsers() {
			r1 := ir.NewDLXRegister(g, 1)
			zero := ir.ConstantInt(g, 0)
			capture := ir.NewDLXBinOp(g, ir.OpDLXAddI).LHS(r1).RHS(zero).Build()
			ir.ReplaceWith(cs, capture, ir.KindValue)
			s.AddNodeAfter(b, end, capture)
		}
	}
}
