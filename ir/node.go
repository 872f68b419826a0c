package ir

import "fmt"

// UseKind tags an edge with which of the three disjoint input vectors it
// belongs to.
type UseKind int

const (
	KindValue UseKind = iota
	KindControl
	KindEffect
)

func (k UseKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindControl:
		return "control"
	case KindEffect:
		return "effect"
	}
	return "?"
}

// use is one back-edge entry: the user node and which input slot (within
// its kind-specific vector) the edge occupies. Kept so that Kill/replace
// operations can walk users without a linear re-scan of every input slot.
type use struct {
	user *Node
	kind UseKind
	slot int
}

// Node is the sole IR entity. Every node belongs to exactly one Graph,
// which owns it for its whole lifetime -- nodes are never freed
// individually, only logically killed (rewired to the graph's Dead
// sentinel) and left in the arena. See Graph for arena ownership.
type Node struct {
	ID ID
	Op Opcode

	g *Graph

	value   []*Node
	control []*Node
	effect  []*Node

	users []use

	// Marker is the one-word scratch used by NodeMarker. Never read or
	// written directly outside marker.go.
	marker uint32

	// Payload fields. Only the ones relevant to Op are meaningful; see
	// builder.go and properties.go for which opcode uses which field.
	IntValue int32
	StrValue string
	RegNum   int // DLXRegister: 0..31
	Imm      int32
	SubGraph *SubGraph // FunctionStub: callee
}

// ID uniquely identifies a node within its Graph for the Graph's
// lifetime, and is used as map keys anywhere a *Node would otherwise
// work just as well -- present mainly for stable debug output.
type ID uint32

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case OpConstantInt:
		return fmt.Sprintf("%s#%d(%d)", n.Op, n.ID, n.IntValue)
	case OpConstantStr:
		return fmt.Sprintf("%s#%d(%q)", n.Op, n.ID, n.StrValue)
	case OpDLXRegister:
		return fmt.Sprintf("r%d", n.RegNum)
	default:
		return fmt.Sprintf("%s#%d", n.Op, n.ID)
	}
}

// inputSlice returns the mutable backing slice for kind, so edge
// primitives can share logic across the three kinds.
func (n *Node) inputSlice(kind UseKind) *[]*Node {
	switch kind {
	case KindValue:
		return &n.value
	case KindControl:
		return &n.control
	case KindEffect:
		return &n.effect
	}
	Fatalf("invalid use kind %d", kind)
	return nil
}

func (n *Node) NumValueInput() int   { return len(n.value) }
func (n *Node) NumControlInput() int { return len(n.control) }
func (n *Node) NumEffectInput() int  { return len(n.effect) }

func (n *Node) ValueInput(i int) *Node {
	if i < 0 || i >= len(n.value) {
		Fatalf("%s: value input index %d out of range [0,%d)", n, i, len(n.value))
	}
	return n.value[i]
}

func (n *Node) ControlInput(i int) *Node {
	if i < 0 || i >= len(n.control) {
		Fatalf("%s: control input index %d out of range [0,%d)", n, i, len(n.control))
	}
	return n.control[i]
}

func (n *Node) EffectInput(i int) *Node {
	if i < 0 || i >= len(n.effect) {
		Fatalf("%s: effect input index %d out of range [0,%d)", n, i, len(n.effect))
	}
	return n.effect[i]
}

func (n *Node) ValueInputs() []*Node   { return n.value }
func (n *Node) ControlInputs() []*Node { return n.control }
func (n *Node) EffectInputs() []*Node  { return n.effect }

// Users returns every node that uses n, each appearing once per input
// slot it occupies.
func (n *Node) Users() []*Node {
	out := make([]*Node, len(n.users))
	for i, u := range n.users {
		out[i] = u.user
	}
	return out
}

// ValueUsers returns the subset of users referencing n through a value
// edge, in back-edge-list order.
func (n *Node) ValueUsers() []*Node {
	var out []*Node
	for _, u := range n.users {
		if u.kind == KindValue {
			out = append(out, u.user)
		}
	}
	return out
}

// HasUsers reports whether n has any user at all (any kind).
func (n *Node) HasUsers() bool { return len(n.users) > 0 }

// IsDead reports invariant 3: opcode Dead, or the only remaining users
// are the dead sentinel itself.
func (n *Node) IsDead() bool {
	if n.Op == OpDead {
		return true
	}
	if len(n.users) == 0 {
		return false
	}
	for _, u := range n.users {
		if u.user.Op != OpDead {
			return false
		}
	}
	return true
}

// addUser appends a back-edge recording that user consumes n through
// the given kind/slot.
func (n *Node) addUser(user *Node, kind UseKind, slot int) {
	n.users = append(n.users, use{user: user, kind: kind, slot: slot})
}

// removeUser deletes exactly one matching back-edge entry (if present).
func (n *Node) removeUser(user *Node, kind UseKind, slot int) {
	for i, u := range n.users {
		if u.user == user && u.kind == kind && u.slot == slot {
			n.users = append(n.users[:i], n.users[i+1:]...)
			return
		}
	}
}

// Graph returns the owning graph.
func (n *Node) Graph() *Graph { return n.g }
