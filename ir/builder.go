package ir

// This file implements Builder(opcode): fluent constructors that return
// a finished node already inserted into the graph with inputs and users
// wired up. Pooled opcodes (ConstantInt, ConstantStr,
// FunctionStub) return the existing node if one is already interned.
//
// Each opcode family gets its own small constructor function rather than
// one generic builder: Go has no template specialization, so the
// idiomatic equivalent of a per-opcode builder is one function per
// family (NewDLXBinOp, NewDLXMemOp, and so on).

// ConstantInt returns the singleton ConstantInt node for v: one node
// per distinct 32-bit value.
func ConstantInt(g *Graph, v int32) *Node {
	return g.internInt(v, func() *Node {
		n := g.newNode(OpConstantInt)
		n.IntValue = v
		return n
	})
}

// ConstantStr returns the singleton ConstantStr node for s.
func ConstantStr(g *Graph, s string) *Node {
	return g.internStr(s, func() *Node {
		n := g.newNode(OpConstantStr)
		n.StrValue = s
		return n
	})
}

// FunctionStub returns the singleton FunctionStub node for callee,
// building it and interning it into the stub pool on first use so every
// call-site references the same node -- stubs are singletons so that
// multiple call-sites reference the same callee without aliasing.
func FunctionStub(g *Graph, callee *SubGraph) *Node {
	return g.internStub(callee, func() *Node {
		n := g.newNode(OpFunctionStub)
		n.SubGraph = callee
		return n
	})
}

// StartResult bundles the nodes NewStart produces: the Start node itself
// and one Argument node per formal parameter, in the declaration order
// of the parameters (the same order as Start's effect inputs).
type StartResult struct {
	Start     *Node
	Arguments []*Node
}

// NewStart builds a function prototype: a Start node plus numParams
// Argument nodes. Start carries one effect-input per formal parameter,
// the i-th being the i-th Argument
// node; each Argument in turn takes Start as its control input, so the
// pair forms the function's entry skeleton (VirtFuncPrototype).
func NewStart(g *Graph, numParams int) StartResult {
	start := g.newNode(OpStart)
	args := make([]*Node, numParams)
	for i := 0; i < numParams; i++ {
		arg := g.newNode(OpArgument)
		arg.IntValue = int32(i)
		AppendInput(arg, start, KindControl)
		AppendInput(start, arg, KindEffect)
		args[i] = arg
	}
	return StartResult{Start: start, Arguments: args}
}

// EndBuilder accumulates the Return nodes that terminate a function; End
// aggregates them as control inputs so SubGraph's reverse-BFS from End
// reaches the whole function body.
type EndBuilder struct {
	g   *Graph
	end *Node
}

func NewEnd(g *Graph) *EndBuilder {
	return &EndBuilder{g: g, end: g.newNode(OpEnd)}
}

func (b *EndBuilder) AddReturn(ret *Node) *EndBuilder {
	AppendInput(b.end, ret, KindControl)
	return b
}

func (b *EndBuilder) Build() *Node { return b.end }

// ReturnBuilder builds a Return node: optional value, the control
// predecessor, and the effect-chain input it closes over.
type ReturnBuilder struct {
	g   *Graph
	n   *Node
}

func NewReturn(g *Graph) *ReturnBuilder {
	return &ReturnBuilder{g: g, n: g.newNode(OpReturn)}
}

func (b *ReturnBuilder) Value(v *Node) *ReturnBuilder {
	AppendInput(b.n, v, KindValue)
	return b
}

func (b *ReturnBuilder) Control(pred *Node) *ReturnBuilder {
	AppendInput(b.n, pred, KindControl)
	return b
}

func (b *ReturnBuilder) Effect(e *Node) *ReturnBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *ReturnBuilder) Build() *Node { return b.n }

// BinOpBuilder builds any of the ten source-level binary opcodes
// (VirtBinOps: four arithmetic + six relational).
type BinOpBuilder struct {
	g *Graph
	n *Node
}

// NewBinOp starts a builder for op, which must satisfy op.IsBinOp().
func NewBinOp(g *Graph, op Opcode) *BinOpBuilder {
	if !op.IsBinOp() {
		Fatalf("NewBinOp: %s is not a VirtBinOps member", op)
	}
	return &BinOpBuilder{g: g, n: g.newNode(op)}
}

func (b *BinOpBuilder) LHS(lhs *Node) *BinOpBuilder {
	AppendInput(b.n, lhs, KindValue)
	return b
}

func (b *BinOpBuilder) RHS(rhs *Node) *BinOpBuilder {
	AppendInput(b.n, rhs, KindValue)
	return b
}

func (b *BinOpBuilder) Build() *Node { return b.n }

// IfBuilder builds an If node: the relational condition value and the
// control predecessor it branches from.
type IfBuilder struct {
	g *Graph
	n *Node
}

func NewIf(g *Graph) *IfBuilder { return &IfBuilder{g: g, n: g.newNode(OpIf)} }

func (b *IfBuilder) Condition(cond *Node) *IfBuilder {
	AppendInput(b.n, cond, KindValue)
	return b
}

func (b *IfBuilder) Control(pred *Node) *IfBuilder {
	AppendInput(b.n, pred, KindControl)
	return b
}

func (b *IfBuilder) Build() *Node { return b.n }

// NewIfTrue/NewIfFalse build the two projections out of an If node.
func NewIfTrue(g *Graph, ifNode *Node) *Node {
	n := g.newNode(OpIfTrue)
	AppendInput(n, ifNode, KindControl)
	return n
}

func NewIfFalse(g *Graph, ifNode *Node) *Node {
	n := g.newNode(OpIfFalse)
	AppendInput(n, ifNode, KindControl)
	return n
}

// MergeBuilder builds a Merge node out of the control-flow predecessors
// being joined (two for if/else; generalizes to N).
type MergeBuilder struct {
	g *Graph
	n *Node
}

func NewMerge(g *Graph) *MergeBuilder { return &MergeBuilder{g: g, n: g.newNode(OpMerge)} }

func (b *MergeBuilder) AddPred(pred *Node) *MergeBuilder {
	AppendInput(b.n, pred, KindControl)
	return b
}

func (b *MergeBuilder) Build() *Node { return b.n }

// LoopBuilder builds a Loop node: control input 0 is the entry
// predecessor, control input 1 is the back-edge from the loop body.
type LoopBuilder struct {
	g *Graph
	n *Node
}

func NewLoop(g *Graph) *LoopBuilder { return &LoopBuilder{g: g, n: g.newNode(OpLoop)} }

func (b *LoopBuilder) Entry(pred *Node) *LoopBuilder {
	AppendInput(b.n, pred, KindControl)
	return b
}

func (b *LoopBuilder) Backedge(pred *Node) *LoopBuilder {
	AppendInput(b.n, pred, KindControl)
	return b
}

func (b *LoopBuilder) Build() *Node { return b.n }

// PhiBuilder builds a Phi node. Control input 0 must be the Merge/Loop
// whose control predecessors align position-wise with the phi's value
// inputs; AddValue appends in that same order.
type PhiBuilder struct {
	g *Graph
	n *Node
}

func NewPhi(g *Graph) *PhiBuilder { return &PhiBuilder{g: g, n: g.newNode(OpPhi)} }

func (b *PhiBuilder) Merge(m *Node) *PhiBuilder {
	AppendInput(b.n, m, KindControl)
	return b
}

func (b *PhiBuilder) AddValue(v *Node) *PhiBuilder {
	AppendInput(b.n, v, KindValue)
	return b
}

func (b *PhiBuilder) AddEffect(e *Node) *PhiBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *PhiBuilder) Build() *Node { return b.n }

// EffectMergeBuilder builds an EffectMerge node, produced when multiple
// loads share a predecessor and their effects need to join into one
// chain before a later store.
type EffectMergeBuilder struct {
	g *Graph
	n *Node
}

func NewEffectMerge(g *Graph) *EffectMergeBuilder {
	return &EffectMergeBuilder{g: g, n: g.newNode(OpEffectMerge)}
}

func (b *EffectMergeBuilder) AddEffect(e *Node) *EffectMergeBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *EffectMergeBuilder) Build() *Node { return b.n }

// --- Source-level builders (consumed by the parser) ---

// SrcVarDeclBuilder declares a scalar local variable.
type SrcVarDeclBuilder struct {
	g *Graph
	n *Node
}

func NewSrcVarDecl(g *Graph, name string) *SrcVarDeclBuilder {
	n := g.newNode(OpSrcVarDecl)
	n.StrValue = name
	return &SrcVarDeclBuilder{g: g, n: n}
}

func (b *SrcVarDeclBuilder) Build() *Node { return b.n }

// SrcArrayDeclBuilder declares an array local variable of a fixed
// dimension list.
type SrcArrayDeclBuilder struct {
	g *Graph
	n *Node
}

func NewSrcArrayDecl(g *Graph, name string, dims []int32) *SrcArrayDeclBuilder {
	n := g.newNode(OpSrcArrayDecl)
	n.StrValue = name
	for _, d := range dims {
		AppendInput(n, ConstantInt(g, d), KindValue)
	}
	return &SrcArrayDeclBuilder{g: g, n: n}
}

func (b *SrcArrayDeclBuilder) Build() *Node { return b.n }

// SrcVarAccessBuilder reads the current value bound to a declaration.
func NewSrcVarAccess(g *Graph, decl *Node) *Node {
	n := g.newNode(OpSrcVarAccess)
	AppendInput(n, decl, KindValue)
	return n
}

// SrcArrayAccessBuilder reads decl[index].
func NewSrcArrayAccess(g *Graph, decl, index *Node) *Node {
	n := g.newNode(OpSrcArrayAccess)
	AppendInput(n, decl, KindValue)
	AppendInput(n, index, KindValue)
	return n
}

// SrcAssignStmtBuilder binds rhs as the new value of a designator
// (SrcVarAccess or SrcArrayAccess).
func NewSrcAssignStmt(g *Graph, designator, rhs *Node) *Node {
	n := g.newNode(OpSrcAssignStmt)
	AppendInput(n, designator, KindValue)
	AppendInput(n, rhs, KindValue)
	return n
}

// SrcInitialArrayBuilder records the literal initializer list for an
// array declaration.
func NewSrcInitialArray(g *Graph, decl *Node, values []*Node) *Node {
	n := g.newNode(OpSrcInitialArray)
	AppendInput(n, decl, KindValue)
	for _, v := range values {
		AppendInput(n, v, KindValue)
	}
	return n
}

// --- Memory builders ---

// AllocaBuilder reserves a memory slot for a value no longer provably
// promotable to a register, assigned a concrete frame offset later by
// opt.LowerMemAllocation.
type AllocaBuilder struct {
	g *Graph
	n *Node
}

func NewAlloca(g *Graph, size int32) *AllocaBuilder {
	n := g.newNode(OpAlloca)
	n.IntValue = size
	return &AllocaBuilder{g: g, n: n}
}

func (b *AllocaBuilder) Build() *Node { return b.n }

// MemLoadBuilder builds a graph-level (pre-lowering) memory load:
// base address, offset, and the effect predecessor it depends on.
type MemLoadBuilder struct {
	g *Graph
	n *Node
}

func NewMemLoad(g *Graph) *MemLoadBuilder { return &MemLoadBuilder{g: g, n: g.newNode(OpMemLoad)} }

func (b *MemLoadBuilder) Base(base *Node) *MemLoadBuilder {
	AppendInput(b.n, base, KindValue)
	return b
}

func (b *MemLoadBuilder) Offset(off *Node) *MemLoadBuilder {
	AppendInput(b.n, off, KindValue)
	return b
}

func (b *MemLoadBuilder) Effect(e *Node) *MemLoadBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *MemLoadBuilder) Control(c *Node) *MemLoadBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *MemLoadBuilder) Build() *Node { return b.n }

// MemStoreBuilder builds a graph-level memory store: base, offset,
// value to store, effect predecessor.
type MemStoreBuilder struct {
	g *Graph
	n *Node
}

func NewMemStore(g *Graph) *MemStoreBuilder {
	return &MemStoreBuilder{g: g, n: g.newNode(OpMemStore)}
}

func (b *MemStoreBuilder) Base(base *Node) *MemStoreBuilder {
	AppendInput(b.n, base, KindValue)
	return b
}

func (b *MemStoreBuilder) Offset(off *Node) *MemStoreBuilder {
	AppendInput(b.n, off, KindValue)
	return b
}

func (b *MemStoreBuilder) Src(src *Node) *MemStoreBuilder {
	AppendInput(b.n, src, KindValue)
	return b
}

func (b *MemStoreBuilder) Effect(e *Node) *MemStoreBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *MemStoreBuilder) Control(c *Node) *MemStoreBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *MemStoreBuilder) Build() *Node { return b.n }

// --- Call builders ---

// CallBuilder builds a graph-level Call: the FunctionStub callee,
// argument values in order, control and effect predecessors.
type CallBuilder struct {
	g *Graph
	n *Node
}

func NewCall(g *Graph, stub *Node) *CallBuilder {
	n := g.newNode(OpCall)
	AppendInput(n, stub, KindValue)
	return &CallBuilder{g: g, n: n}
}

func (b *CallBuilder) AddArg(v *Node) *CallBuilder {
	AppendInput(b.n, v, KindValue)
	return b
}

func (b *CallBuilder) Control(c *Node) *CallBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *CallBuilder) Effect(e *Node) *CallBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *CallBuilder) Build() *Node { return b.n }

// --- DLX register and arithmetic builders (consumed by lower/sched/regalloc) ---

// DLXRegister returns a node representing architectural register r
// (0..31). Unlike the constant pools, register nodes are not interned
// globally -- the register allocator mints them once per target and
// reuses its own table (see regalloc.Allocator), since a register node's
// identity participates in per-instruction operand lists rather than in
// value-numbering.
func NewDLXRegister(g *Graph, r int) *Node {
	if r < 0 || r > 31 {
		Fatalf("register number %d out of range", r)
	}
	n := g.newNode(OpDLXRegister)
	n.RegNum = r
	return n
}

// DLXBinOpBuilder builds one of the two-operand DLX arithmetic opcodes,
// register or immediate form. Before the register allocator's
// three-address commit, it carries two value inputs (src1, src2);
// after commit, a third (dest) is appended.
type DLXBinOpBuilder struct {
	g *Graph
	n *Node
}

func NewDLXBinOp(g *Graph, op Opcode) *DLXBinOpBuilder {
	if !op.IsDLXBinOp() {
		Fatalf("NewDLXBinOp: %s is not a VirtDLXBinOps member", op)
	}
	return &DLXBinOpBuilder{g: g, n: g.newNode(op)}
}

func (b *DLXBinOpBuilder) LHS(lhs *Node) *DLXBinOpBuilder {
	AppendInput(b.n, lhs, KindValue)
	return b
}

func (b *DLXBinOpBuilder) RHS(rhs *Node) *DLXBinOpBuilder {
	AppendInput(b.n, rhs, KindValue)
	return b
}

func (b *DLXBinOpBuilder) Dest(dest *Node) *DLXBinOpBuilder {
	AppendInput(b.n, dest, KindValue)
	return b
}

func (b *DLXBinOpBuilder) Control(c *Node) *DLXBinOpBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *DLXBinOpBuilder) Effect(e *Node) *DLXBinOpBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *DLXBinOpBuilder) Build() *Node { return b.n }

// DLXMemBuilder builds one of the word-indexed/base-plus-register DLX
// load/store opcodes (LdW/LdX/StW/StX), carrying base+offset (+ src for
// stores), plus the effect/control inputs propagated from the
// pre-lowering MemLoad/MemStore they replace.
type DLXMemBuilder struct {
	g *Graph
	n *Node
}

func NewDLXMem(g *Graph, op Opcode) *DLXMemBuilder {
	switch op {
	case OpDLXLdW, OpDLXLdX, OpDLXStW, OpDLXStX:
	default:
		Fatalf("NewDLXMem: %s is not a DLX memory opcode", op)
	}
	return &DLXMemBuilder{g: g, n: g.newNode(op)}
}

func (b *DLXMemBuilder) BaseAddr(base *Node) *DLXMemBuilder {
	AppendInput(b.n, base, KindValue)
	return b
}

func (b *DLXMemBuilder) Offset(off *Node) *DLXMemBuilder {
	AppendInput(b.n, off, KindValue)
	return b
}

func (b *DLXMemBuilder) Src(src *Node) *DLXMemBuilder {
	AppendInput(b.n, src, KindValue)
	return b
}

func (b *DLXMemBuilder) Control(c *Node) *DLXMemBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *DLXMemBuilder) Effect(e *Node) *DLXMemBuilder {
	AppendInput(b.n, e, KindEffect)
	return b
}

func (b *DLXMemBuilder) Build() *Node { return b.n }

// DLXBranchBuilder builds one of the conditional DLX branch opcodes
// (Beq/Bne/Blt/Ble/Bgt/Bge): the compared value and an immediate PC-
// relative block-offset target resolved later by the emitter.
type DLXBranchBuilder struct {
	g *Graph
	n *Node
}

func NewDLXBranch(g *Graph, op Opcode) *DLXBranchBuilder {
	switch op {
	case OpDLXBeq, OpDLXBne, OpDLXBlt, OpDLXBle, OpDLXBgt, OpDLXBge:
	default:
		Fatalf("NewDLXBranch: %s is not a DLX conditional branch", op)
	}
	return &DLXBranchBuilder{g: g, n: g.newNode(op)}
}

func (b *DLXBranchBuilder) Compared(v *Node) *DLXBranchBuilder {
	AppendInput(b.n, v, KindValue)
	return b
}

func (b *DLXBranchBuilder) TargetBlock(blockID int) *DLXBranchBuilder {
	b.n.Imm = int32(blockID)
	return b
}

func (b *DLXBranchBuilder) Control(c *Node) *DLXBranchBuilder {
	AppendInput(b.n, c, KindControl)
	return b
}

func (b *DLXBranchBuilder) Build() *Node { return b.n }

// NewDLXUnconditionalJump builds an unconditional branch encoded as
// DLXBeq r0, offset (r0 always equals zero, so the branch is always
// taken).
func NewDLXUnconditionalJump(g *Graph, r0 *Node, blockID int, control *Node) *Node {
	n := NewDLXBranch(g, OpDLXBeq).Compared(r0).TargetBlock(blockID)
	if control != nil {
		n.Control(control)
	}
	return n.Build()
}

// --- Call-lowering markers (post-machine lowering) ---

func NewDLXCallsiteBegin(g *Graph, control *Node) *Node {
	n := g.newNode(OpVirtDLXCallsiteBegin)
	if control != nil {
		AppendInput(n, control, KindControl)
	}
	return n
}

func NewDLXPassParam(g *Graph, arg *Node, control *Node) *Node {
	n := g.newNode(OpVirtDLXPassParam)
	AppendInput(n, arg, KindValue)
	if control != nil {
		AppendInput(n, control, KindControl)
	}
	return n
}

func NewDLXCallsiteEnd(g *Graph, control *Node) *Node {
	n := g.newNode(OpVirtDLXCallsiteEnd)
	if control != nil {
		AppendInput(n, control, KindControl)
	}
	return n
}

func NewDLXCall(g *Graph, target *SubGraph, control *Node) *Node {
	n := g.newNode(OpDLXBsr)
	n.SubGraph = target
	if control != nil {
		AppendInput(n, control, KindControl)
	}
	return n
}
