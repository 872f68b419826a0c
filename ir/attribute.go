package ir

// Attribute is the closed set of per-node side-channel tags. Attributes
// are attached only to Start nodes of functions and queried through
// their FunctionStub.
type Attribute int

const (
	AttrNoMem Attribute = iota
	AttrReadMem
	AttrWriteMem
	AttrHasSideEffect
	AttrIsBuiltin
)

func (a Attribute) String() string {
	switch a {
	case AttrNoMem:
		return "NoMem"
	case AttrReadMem:
		return "ReadMem"
	case AttrWriteMem:
		return "WriteMem"
	case AttrHasSideEffect:
		return "HasSideEffect"
	case AttrIsBuiltin:
		return "IsBuiltin"
	}
	return "?"
}

// AttributeBuilder accumulates attributes and attaches them to a Start
// node in one call.
type AttributeBuilder struct {
	g     *Graph
	attrs []Attribute
	set   map[Attribute]bool
}

// NewAttributeBuilder starts accumulating attributes for g.
func NewAttributeBuilder(g *Graph) *AttributeBuilder {
	return &AttributeBuilder{g: g, set: make(map[Attribute]bool)}
}

// Add appends attr to the accumulator, deduplicating against attrs
// already added.
func (b *AttributeBuilder) Add(attr Attribute) *AttributeBuilder {
	if !b.set[attr] {
		b.attrs = append(b.attrs, attr)
		b.set[attr] = true
	}
	return b
}

// HasAttr reports whether attr was added to this (still-unattached)
// builder.
func (b *AttributeBuilder) HasAttr(attr Attribute) bool { return b.set[attr] }

// Empty reports whether no attribute has been added yet.
func (b *AttributeBuilder) Empty() bool { return len(b.attrs) == 0 }

// Attach records the accumulated attributes against n (must be a Start
// node) in the owning graph's attribute map.
func (b *AttributeBuilder) Attach(n *Node) {
	if n.Op != OpStart {
		Fatalf("attributes may only attach to a Start node, got %s", n.Op)
	}
	b.g.attrs[n] = append(b.g.attrs[n], b.attrs...)
}

// Attributes returns the attributes attached to n (a Start node),
// queried through either the Start node directly or its FunctionStub.
func (g *Graph) Attributes(n *Node) []Attribute {
	if n.Op == OpFunctionStub && n.SubGraph != nil {
		n = n.SubGraph.Start()
	}
	return g.attrs[n]
}

// HasAttribute reports whether n (a Start node, or a FunctionStub whose
// callee Start carries it) has attr.
func (g *Graph) HasAttribute(n *Node, attr Attribute) bool {
	start := n
	if n.Op == OpFunctionStub && n.SubGraph != nil {
		start = n.SubGraph.Start()
	}
	if start == nil {
		return false
	}
	for _, a := range g.attrs[start] {
		if a == attr {
			return true
		}
	}
	return false
}
