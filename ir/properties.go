package ir

// Property is a read-only view over a node: it coerces to false (via
// Ok) when the node is absent or its opcode doesn't match what the view
// expects, centralizing "which slot means what" per opcode in one place.
// Virtual-family views (e.g. BinOpView) match any opcode satisfying the
// corresponding IsXxx predicate on Opcode.

// BinOpView exposes VirtBinOps (the four arithmetic + six relational
// opcodes).
type BinOpView struct{ n *Node }

func AsBinOp(n *Node) BinOpView {
	if n != nil && n.Op.IsBinOp() {
		return BinOpView{n}
	}
	return BinOpView{}
}

func (v BinOpView) Ok() bool       { return v.n != nil }
func (v BinOpView) Node() *Node    { return v.n }
func (v BinOpView) LHS() *Node     { return v.n.ValueInput(0) }
func (v BinOpView) RHS() *Node     { return v.n.ValueInput(1) }

// IfView exposes the If node's condition and control predecessor.
type IfView struct{ n *Node }

func AsIf(n *Node) IfView {
	if n != nil && n.Op == OpIf {
		return IfView{n}
	}
	return IfView{}
}

func (v IfView) Ok() bool          { return v.n != nil }
func (v IfView) Condition() *Node  { return v.n.ValueInput(0) }
func (v IfView) Control() *Node    { return v.n.ControlInput(0) }

// IfBranchView exposes VirtIfBranches (IfTrue | IfFalse).
type IfBranchView struct{ n *Node }

func AsIfBranch(n *Node) IfBranchView {
	if n != nil && n.Op.IsIfBranch() {
		return IfBranchView{n}
	}
	return IfBranchView{}
}

func (v IfBranchView) Ok() bool      { return v.n != nil }
func (v IfBranchView) IfNode() *Node { return v.n.ControlInput(0) }
func (v IfBranchView) IsTrue() bool  { return v.n.Op == OpIfTrue }

// MergeView exposes a Merge or Loop node's control predecessors
// (VirtCtrlPoints' join-point subset).
type MergeView struct{ n *Node }

func AsMerge(n *Node) MergeView {
	if n != nil && (n.Op == OpMerge || n.Op == OpLoop) {
		return MergeView{n}
	}
	return MergeView{}
}

func (v MergeView) Ok() bool         { return v.n != nil }
func (v MergeView) Preds() []*Node   { return v.n.ControlInputs() }
func (v MergeView) NumPreds() int    { return v.n.NumControlInput() }

// PhiView exposes a Phi node's merge point and parallel value/effect
// inputs.
type PhiView struct{ n *Node }

func AsPhi(n *Node) PhiView {
	if n != nil && n.Op == OpPhi {
		return PhiView{n}
	}
	return PhiView{}
}

func (v PhiView) Ok() bool        { return v.n != nil }
func (v PhiView) Merge() *Node     { return v.n.ControlInput(0) }
func (v PhiView) Values() []*Node  { return v.n.ValueInputs() }
func (v PhiView) Effects() []*Node { return v.n.EffectInputs() }
func (v PhiView) IsEffectOnly() bool {
	return v.n.NumValueInput() == 0 && v.n.NumEffectInput() > 0
}

// ReturnView exposes a Return node's value, control, and effect inputs.
type ReturnView struct{ n *Node }

func AsReturn(n *Node) ReturnView {
	if n != nil && n.Op == OpReturn {
		return ReturnView{n}
	}
	return ReturnView{}
}

func (v ReturnView) Ok() bool   { return v.n != nil }
func (v ReturnView) HasValue() bool { return v.n.NumValueInput() > 0 }
func (v ReturnView) Value() *Node   { return v.n.ValueInput(0) }
func (v ReturnView) Control() *Node { return v.n.ControlInput(0) }

// FuncPrototypeView exposes VirtFuncPrototype (Start + its Arguments, in
// declaration order).
type FuncPrototypeView struct{ n *Node }

func AsFuncPrototype(n *Node) FuncPrototypeView {
	if n != nil && n.Op == OpStart {
		return FuncPrototypeView{n}
	}
	return FuncPrototypeView{}
}

func (v FuncPrototypeView) Ok() bool { return v.n != nil }

// Arguments returns the Start node's formal-parameter Argument nodes, in
// declaration order (mirrored by Start's effect-input order, invariant
// 5).
func (v FuncPrototypeView) Arguments() []*Node {
	return v.n.EffectInputs()
}

// SrcDeclView exposes VirtSrcDecl (SrcVarDecl | SrcArrayDecl).
type SrcDeclView struct{ n *Node }

func AsSrcDecl(n *Node) SrcDeclView {
	if n != nil && n.Op.IsSrcDecl() {
		return SrcDeclView{n}
	}
	return SrcDeclView{}
}

func (v SrcDeclView) Ok() bool     { return v.n != nil }
func (v SrcDeclView) Name() string { return v.n.StrValue }
func (v SrcDeclView) IsArray() bool { return v.n.Op == OpSrcArrayDecl }
func (v SrcDeclView) Dims() []*Node { return v.n.ValueInputs() }

// SrcDesigAccessView exposes VirtSrcDesigAccess (SrcVarAccess |
// SrcArrayAccess).
type SrcDesigAccessView struct{ n *Node }

func AsSrcDesigAccess(n *Node) SrcDesigAccessView {
	if n != nil && n.Op.IsSrcDesigAccess() {
		return SrcDesigAccessView{n}
	}
	return SrcDesigAccessView{}
}

func (v SrcDesigAccessView) Ok() bool    { return v.n != nil }
func (v SrcDesigAccessView) Decl() *Node { return v.n.ValueInput(0) }
func (v SrcDesigAccessView) IsArray() bool { return v.n.Op == OpSrcArrayAccess }
func (v SrcDesigAccessView) Index() *Node {
	if v.n.Op != OpSrcArrayAccess {
		Fatalf("Index() called on non-array access %s", v.n)
	}
	return v.n.ValueInput(1)
}

// AssignStmtView exposes a SrcAssignStmt.
type AssignStmtView struct{ n *Node }

func AsAssignStmt(n *Node) AssignStmtView {
	if n != nil && n.Op == OpSrcAssignStmt {
		return AssignStmtView{n}
	}
	return AssignStmtView{}
}

func (v AssignStmtView) Ok() bool          { return v.n != nil }
func (v AssignStmtView) Designator() *Node { return v.n.ValueInput(0) }
func (v AssignStmtView) RHS() *Node        { return v.n.ValueInput(1) }

// MemOpView exposes VirtMemOps (MemLoad | MemStore) and the lowered
// DLX memory opcodes with the same slot layout.
type MemOpView struct{ n *Node }

func AsMemOp(n *Node) MemOpView {
	if n == nil {
		return MemOpView{}
	}
	switch n.Op {
	case OpMemLoad, OpMemStore, OpDLXLdW, OpDLXLdX, OpDLXStW, OpDLXStX:
		return MemOpView{n}
	}
	return MemOpView{}
}

func (v MemOpView) Ok() bool   { return v.n != nil }
func (v MemOpView) Base() *Node   { return v.n.ValueInput(0) }
func (v MemOpView) Offset() *Node { return v.n.ValueInput(1) }
func (v MemOpView) IsStore() bool {
	switch v.n.Op {
	case OpMemStore, OpDLXStW, OpDLXStX:
		return true
	}
	return false
}
func (v MemOpView) StoredValue() *Node { return v.n.ValueInput(2) }

// CallView exposes a Call node.
type CallView struct{ n *Node }

func AsCall(n *Node) CallView {
	if n != nil && n.Op == OpCall {
		return CallView{n}
	}
	return CallView{}
}

func (v CallView) Ok() bool      { return v.n != nil }
func (v CallView) Callee() *Node { return v.n.ValueInput(0) }
func (v CallView) Args() []*Node { return v.n.ValueInputs()[1:] }

// DLXBinOpView exposes VirtDLXBinOps (and, after three-address commit,
// VirtDLXTriOps -- distinguished by NumValueInput()).
type DLXBinOpView struct{ n *Node }

func AsDLXBinOp(n *Node) DLXBinOpView {
	if n != nil && n.Op.IsDLXBinOp() {
		return DLXBinOpView{n}
	}
	return DLXBinOpView{}
}

func (v DLXBinOpView) Ok() bool   { return v.n != nil }
func (v DLXBinOpView) Src1() *Node { return v.n.ValueInput(0) }
func (v DLXBinOpView) Src2() *Node { return v.n.ValueInput(1) }
func (v DLXBinOpView) IsThreeAddress() bool { return v.n.NumValueInput() == 3 }
func (v DLXBinOpView) Dest() *Node {
	if !v.IsThreeAddress() {
		Fatalf("Dest() called before three-address commit on %s", v.n)
	}
	return v.n.ValueInput(2)
}

// DLXRegisterView exposes VirtDLXRegisters.
type DLXRegisterView struct{ n *Node }

func AsDLXRegister(n *Node) DLXRegisterView {
	if n != nil && n.Op.IsDLXRegister() {
		return DLXRegisterView{n}
	}
	return DLXRegisterView{}
}

func (v DLXRegisterView) Ok() bool { return v.n != nil }
func (v DLXRegisterView) Num() int { return v.n.RegNum }
