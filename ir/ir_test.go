package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstantIntInterning(t *testing.T) {
	g := NewGraph()
	a := ConstantInt(g, 9)
	b := ConstantInt(g, 9)
	c := ConstantInt(g, 10)
	require.Same(t, a, b, "same value must intern to the same node")
	require.NotSame(t, a, c)
	require.Equal(t, 2, g.NumConstInt())
}

func TestConstantStrInterning(t *testing.T) {
	g := NewGraph()
	a := ConstantStr(g, "hello")
	b := ConstantStr(g, "hello")
	require.Same(t, a, b)
}

func TestEdgeSymmetry(t *testing.T) {
	g := NewGraph()
	lhs := ConstantInt(g, 1)
	rhs := ConstantInt(g, 2)
	add := NewBinOp(g, OpBinAdd).LHS(lhs).RHS(rhs).Build()

	require.Equal(t, lhs, add.ValueInput(0))
	require.Equal(t, rhs, add.ValueInput(1))
	require.Contains(t, lhs.ValueUsers(), add)
	require.Contains(t, rhs.ValueUsers(), add)
}

func TestSetInputDropsOldUser(t *testing.T) {
	g := NewGraph()
	a := ConstantInt(g, 1)
	b := ConstantInt(g, 2)
	c := ConstantInt(g, 3)
	add := NewBinOp(g, OpBinAdd).LHS(a).RHS(b).Build()

	SetInput(add, 0, c, KindValue)
	require.Equal(t, c, add.ValueInput(0))
	require.NotContains(t, a.ValueUsers(), add)
	require.Contains(t, c.ValueUsers(), add)
}

func TestReplaceWithRewiresAllUsers(t *testing.T) {
	g := NewGraph()
	a := ConstantInt(g, 1)
	b := ConstantInt(g, 2)
	add := NewBinOp(g, OpBinAdd).LHS(a).RHS(b).Build()
	user1 := NewBinOp(g, OpBinAdd).LHS(add).RHS(a).Build()
	user2 := NewBinOp(g, OpBinAdd).LHS(a).RHS(add).Build()

	nine := ConstantInt(g, 9)
	ReplaceWith(add, nine)

	require.Equal(t, nine, user1.ValueInput(0))
	require.Equal(t, nine, user2.ValueInput(1))
	require.False(t, add.HasUsers())
}

func TestKillSeversInputsAndRedirectsUsers(t *testing.T) {
	g := NewGraph()
	a := ConstantInt(g, 1)
	b := ConstantInt(g, 2)
	add := NewBinOp(g, OpBinAdd).LHS(a).RHS(b).Build()
	user := NewBinOp(g, OpBinAdd).LHS(add).RHS(a).Build()

	dead := g.DeadSentinel()
	Kill(add, dead)

	require.Equal(t, OpDead, add.Op)
	require.Equal(t, 0, add.NumValueInput())
	require.NotContains(t, a.ValueUsers(), add)
	require.Equal(t, dead, user.ValueInput(0))
}

func TestSubGraphBFSReachesWholeFunction(t *testing.T) {
	g := NewGraph()
	sr := NewStart(g, 1)
	ret := NewReturn(g).Value(sr.Arguments[0]).Control(sr.Start).Build()
	end := NewEnd(g).AddReturn(ret).Build()
	sg := NewSubGraph(end)

	nodes := sg.Nodes()
	require.Contains(t, nodes, end)
	require.Contains(t, nodes, ret)
	require.Contains(t, nodes, sr.Start)
	require.Contains(t, nodes, sr.Arguments[0])
}

func TestFunctionStubIsSingleton(t *testing.T) {
	g := NewGraph()
	sr := NewStart(g, 0)
	ret := NewReturn(g).Control(sr.Start).Build()
	end := NewEnd(g).AddReturn(ret).Build()
	sg := NewSubGraph(end)

	s1 := FunctionStub(g, sg)
	s2 := FunctionStub(g, sg)
	require.Same(t, s1, s2)
}

func TestStartArgumentInvariant(t *testing.T) {
	g := NewGraph()
	sr := NewStart(g, 3)
	require.Equal(t, 3, sr.Start.NumEffectInput())
	for i, arg := range sr.Arguments {
		require.Equal(t, sr.Start.EffectInput(i), arg)
		require.Equal(t, int32(i), arg.IntValue)
	}
}

func TestNodeMarkerDefaultsToZero(t *testing.T) {
	g := NewGraph()
	n := ConstantInt(g, 42)

	type state int
	const (
		unvisited state = iota
		visited
	)
	m := NewNodeMarker[state](g, 2)
	require.Equal(t, unvisited, m.Get(n))
	m.Set(n, visited)
	require.Equal(t, visited, m.Get(n))
	m.Drop()

	// A second marker's window must not see stale state from the first.
	m2 := NewNodeMarker[state](g, 2)
	require.Equal(t, unvisited, m2.Get(n))
	m2.Drop()
}

func TestNodeMarkerRejectsConcurrentLiveMarker(t *testing.T) {
	g := NewGraph()
	type state int
	m := NewNodeMarker[state](g, 2)
	defer m.Drop()
	require.Panics(t, func() {
		NewNodeMarker[state](g, 2)
	})
}

func TestAffineTableBranchIsolation(t *testing.T) {
	tbl := NewAffineTable[string, int]()
	tbl.Set("x", 1)

	tbl.NewScope()
	tbl.Set("x", 2)
	v, ok := tbl.Get("x")
	require.True(t, ok)
	require.Equal(t, 2, v)

	tbl.NewBranch()
	v, ok = tbl.Get("x")
	require.True(t, ok)
	require.Equal(t, 1, v, "new branch must see the parent's value, not the sibling's write")
	tbl.Set("x", 3)

	var merged map[string]int
	tbl.CloseScope(func(table *AffineTable[string, int], branches []map[string]int) {
		require.Len(t, branches, 2)
		require.Equal(t, 2, branches[0]["x"])
		require.Equal(t, 3, branches[1]["x"])
		merged = map[string]int{"x": 99}
		table.Set("x", merged["x"])
	})

	v, ok = tbl.Get("x")
	require.True(t, ok)
	require.Equal(t, 99, v)
}

func TestAffineTableDefaultScopeCannotClose(t *testing.T) {
	tbl := NewAffineTable[string, int]()
	require.Panics(t, func() {
		tbl.CloseScope(func(*AffineTable[string, int], []map[string]int) {})
	})
}

func TestAttributeBuilderAttachesToStart(t *testing.T) {
	g := NewGraph()
	sr := NewStart(g, 0)

	ab := NewAttributeBuilder(g)
	ab.Add(AttrReadMem).Add(AttrIsBuiltin)
	ab.Attach(sr.Start)

	require.True(t, g.HasAttribute(sr.Start, AttrReadMem))
	require.True(t, g.HasAttribute(sr.Start, AttrIsBuiltin))
	require.False(t, g.HasAttribute(sr.Start, AttrWriteMem))
}

func TestAttributeQueryThroughFunctionStub(t *testing.T) {
	g := NewGraph()
	sr := NewStart(g, 0)
	ret := NewReturn(g).Control(sr.Start).Build()
	end := NewEnd(g).AddReturn(ret).Build()
	sg := NewSubGraph(end)
	stub := FunctionStub(g, sg)

	NewAttributeBuilder(g).Add(AttrHasSideEffect).Attach(sr.Start)
	require.True(t, g.HasAttribute(stub, AttrHasSideEffect))
}
