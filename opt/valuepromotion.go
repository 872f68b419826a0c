package opt

import (
	"sort"

	"github.com/gross-lang/gross/ir"
)

// ValuePromotion eliminates SrcVarDecl / SrcArrayDecl / SrcVarAccess /
// SrcArrayAccess / SrcAssignStmt / SrcInitialArray by threading the
// last-written value through the function.
//
// Unlike Peephole/CSE/the memory reducers, ValuePromotion cannot be a
// plain reduce.Reducer: "the most-recent write at the matching program
// point" is inherently a flow-sensitive, whole-function property, not
// a fact derivable by looking at one node and its immediate neighbors.
// The affine scoped table a parser uses to track "last modifier" lives
// only in the parser's head -- by the time a graph reaches this
// package, the only ordering signal left is construction order, which
// ir.Node.ID preserves exactly (IDs are handed out strictly
// increasing). Promote walks the subgraph's Src nodes in ID order and
// simulates the same last-write bookkeeping a parser's affine table
// would have done inline.
//
// Scalars promote straight to registers (last write's RHS value
// replaces every read). Arrays lower to Alloca/MemLoad/MemStore
// triples threaded through a single synthetic per-function memory
// effect chain -- this is only strictly required for arrays that
// escape local proof, but doing it uniformly keeps this pass
// independent of an escape analysis with no parser to feed it, and
// arrays that do stay local simply get their Alloca dropped later once
// nothing references it.
func Promote(g *ir.Graph, sg *ir.SubGraph) {
	p := &promoter{
		g:           g,
		lastScalar:  make(map[*ir.Node]*ir.Node),
		arrayAlloca: make(map[*ir.Node]*ir.Node),
	}
	p.run(sg)
}

type promoter struct {
	g           *ir.Graph
	lastScalar  map[*ir.Node]*ir.Node // SrcVarDecl -> current value
	arrayAlloca map[*ir.Node]*ir.Node // SrcArrayDecl -> Alloca
	memEffect   *ir.Node
}

func (p *promoter) run(sg *ir.SubGraph) {
	nodes := sg.Nodes()
	// Assignments have no users, so the walk back from End misses them:
	// pull in every user of a reached declaration or access, and its inputs.
	seen := make(map[*ir.Node]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	for i := 0; i < len(nodes); i++ {
		more := append([]*ir.Node(nil), nodes[i].ValueInputs()...)
		if nodes[i].Op.IsSrcDecl() || nodes[i].Op.IsSrcDesigAccess() {
			more = append(more, nodes[i].Users()...)
		}
		for _, m := range more {
			if !seen[m] {
				seen[m] = true
				nodes = append(nodes, m)
			}
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		switch n.Op {
		case ir.OpSrcVarDecl:
			p.lastScalar[n] = ir.ConstantInt(p.g, 0)
		case ir.OpSrcArrayDecl:
			p.declareArray(n)
		case ir.OpSrcInitialArray:
			p.initializeArray(n)
		case ir.OpSrcVarAccess:
			p.handleScalarAccess(n)
		case ir.OpSrcArrayAccess:
			p.handleArrayAccess(n)
		case ir.OpSrcAssignStmt:
			p.handleAssign(n)
		}
	}
}

func isDesignatorOnly(n *ir.Node) (*ir.Node, bool) {
	users := n.ValueUsers()
	if len(users) != 1 {
		return nil, false
	}
	u := users[0]
	view := ir.AsAssignStmt(u)
	if view.Ok() && view.Designator() == n {
		return u, true
	}
	return nil, false
}

func (p *promoter) handleScalarAccess(n *ir.Node) {
	if _, ok := isDesignatorOnly(n); ok {
		return // resolved when the owning SrcAssignStmt is processed
	}
	decl := n.ValueInput(0)
	val, ok := p.lastScalar[decl]
	if !ok {
		val = ir.ConstantInt(p.g, 0)
	}
	ir.ReplaceWith(n, val)
	ir.Kill(n, p.g.DeadSentinel())
}

func (p *promoter) declareArray(n *ir.Node) {
	size := int32(4)
	for _, d := range n.ValueInputs() {
		size *= d.IntValue
	}
	alloca := ir.NewAlloca(p.g, size).Build()
	p.arrayAlloca[n] = alloca
	ir.ReplaceWith(n, alloca)
}

func (p *promoter) initializeArray(n *ir.Node) {
	decl := n.ValueInput(0)
	alloca, ok := p.arrayAlloca[decl]
	if !ok {
		alloca = decl // already replaced in place
	}
	for i, v := range n.ValueInputs()[1:] {
		offset := ir.ConstantInt(p.g, int32(i*4))
		b := ir.NewMemStore(p.g).Base(alloca).Offset(offset).Src(v)
		if p.memEffect != nil {
			b = b.Effect(p.memEffect)
		}
		p.memEffect = b.Build()
	}
}

func (p *promoter) handleArrayAccess(n *ir.Node) {
	if _, ok := isDesignatorOnly(n); ok {
		return
	}
	base := n.ValueInput(0)
	index := n.ValueInput(1)
	offset := scaledOffset(p.g, index)
	b := ir.NewMemLoad(p.g).Base(base).Offset(offset)
	if p.memEffect != nil {
		b = b.Effect(p.memEffect)
	}
	load := b.Build()
	p.memEffect = load
	ir.ReplaceWith(n, load)
	ir.Kill(n, p.g.DeadSentinel())
}

func (p *promoter) handleAssign(n *ir.Node) {
	designator := n.ValueInput(0)
	rhs := n.ValueInput(1)

	switch designator.Op {
	case ir.OpSrcVarAccess:
		decl := designator.ValueInput(0)
		p.lastScalar[decl] = rhs
	case ir.OpSrcArrayAccess:
		// handleArrayAccess skips designator-only accesses, so this is
		// always the original SrcArrayAccess node, untouched until now.
		base := designator.ValueInput(0)
		index := designator.ValueInput(1)
		offset := scaledOffset(p.g, index)
		b := ir.NewMemStore(p.g).Base(base).Offset(offset).Src(rhs)
		if p.memEffect != nil {
			b = b.Effect(p.memEffect)
		}
		p.memEffect = b.Build()
	default:
		ir.Fatalf("ValuePromotion: unexpected designator opcode %s", designator.Op)
	}

	ir.Kill(designator, p.g.DeadSentinel())
	ir.Kill(n, p.g.DeadSentinel())
}

// scaledOffset returns a byte-offset node for array index idx, folding
// the ×4 word scale immediately when idx is already constant.
func scaledOffset(g *ir.Graph, idx *ir.Node) *ir.Node {
	if idx.Op == ir.OpConstantInt {
		return ir.ConstantInt(g, idx.IntValue*4)
	}
	return ir.NewBinOp(g, ir.OpBinMul).LHS(idx).RHS(ir.ConstantInt(g, 4)).Build()
}
