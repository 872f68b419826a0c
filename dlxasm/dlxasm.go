// Package dlxasm renders a graph or a finished schedule as text: a
// GraphViz DOT dump for pipeline-checkpoint diagnostics and an
// assembly-style listing once post-RA lowering has flattened a
// function into blocks of machine-shaped nodes. Neither format affects
// pipeline semantics -- both are read-only views over an *ir.Graph or
// *sched.Schedule, built directly against fmt.Fprintf rather than a
// templating library.
//
// This is a human-readable stand-in for a binary encoder, for
// observing a function at any of the pipeline's checkpoints
// (post-build, post-reduce, post-schedule, post-regalloc, post-postra).
package dlxasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// DumpDOT writes g as a GraphViz digraph: one node per graph node,
// one edge per value/control/effect input, colored and styled by use
// kind the way a sea-of-nodes dump conventionally distinguishes them
// (solid black for control, dashed blue for value, dotted red for
// effect).
func DumpDOT(g *ir.Graph, w io.Writer) {
	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, `  node [shape=box, fontname="monospace"];`)

	nodes := g.Nodes()
	for _, n := range nodes {
		fmt.Fprintf(w, "  n%d [label=%q];\n", n.ID, nodeLabel(n))
	}
	for _, n := range nodes {
		writeEdges(w, n, n.ControlInputs(), KindControl)
		writeEdges(w, n, n.ValueInputs(), KindValue)
		writeEdges(w, n, n.EffectInputs(), KindEffect)
	}

	fmt.Fprintln(w, "}")
}

// useKind selects the edge style below. It is local to this package;
// its values are not those of ir.UseKind.
type useKind int

const (
	KindControl useKind = iota
	KindValue
	KindEffect
)

func writeEdges(w io.Writer, n *ir.Node, inputs []*ir.Node, kind useKind) {
	style := edgeStyle(kind)
	for i, in := range inputs {
		if in == nil {
			continue
		}
		fmt.Fprintf(w, "  n%d -> n%d [%s, label=%q];\n", in.ID, n.ID, style, fmt.Sprintf("%d", i))
	}
}

func edgeStyle(kind useKind) string {
	switch kind {
	case KindControl:
		return `color=black, style=solid`
	case KindValue:
		return `color=blue, style=dashed`
	case KindEffect:
		return `color=red, style=dotted`
	}
	return `color=gray`
}

func nodeLabel(n *ir.Node) string {
	return n.String()
}

// DumpScheduleDOT writes s as a GraphViz digraph of basic blocks:
// each block is a cluster containing its ordered node list, and each
// control-flow edge (Succs) runs from a block's last node to its
// successor's first node. Useful for dumping a schedule before and after
// regalloc/postra to eyeball the effect of a pass.
func DumpScheduleDOT(s *sched.Schedule, w io.Writer) {
	fmt.Fprintln(w, "digraph Schedule {")
	fmt.Fprintln(w, "  compound=true;")
	fmt.Fprintln(w, `  node [shape=box, fontname="monospace"];`)

	for _, b := range s.Blocks {
		fmt.Fprintf(w, "  subgraph cluster_%d {\n", b.ID)
		fmt.Fprintf(w, "    label=%q;\n", b.Symbol())
		for _, n := range b.Nodes {
			fmt.Fprintf(w, "    n%d [label=%q];\n", n.ID, nodeLabel(n))
		}
		for i := 0; i+1 < len(b.Nodes); i++ {
			fmt.Fprintf(w, "    n%d -> n%d [style=invis];\n", b.Nodes[i].ID, b.Nodes[i+1].ID)
		}
		fmt.Fprintln(w, "  }")
	}

	for _, b := range s.Blocks {
		if len(b.Nodes) == 0 {
			continue
		}
		for _, succ := range b.Succs {
			if len(succ.Nodes) == 0 {
				continue
			}
			fmt.Fprintf(w, "  n%d -> n%d [color=black, style=bold, ltail=cluster_%d, lhead=cluster_%d];\n",
				b.Nodes[len(b.Nodes)-1].ID, succ.Nodes[0].ID, b.ID, succ.ID)
		}
	}

	fmt.Fprintln(w, "}")
}

// DumpListing writes s as a flat, per-block assembly-style listing:
// a block label line followed by one line per scheduled node in
// within-block order. This is the closest this package comes to the
// excluded "concrete DLX encoder" -- readable mnemonic text, not
// encoded machine words -- for when a DOT graph is more detail than
// needed.
func DumpListing(s *sched.Schedule, w io.Writer) {
	blocks := append([]*sched.Block(nil), s.Blocks...)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].RPO < blocks[j].RPO })

	for _, b := range blocks {
		fmt.Fprintf(w, "%s:\n", b.Symbol())
		for _, n := range b.Nodes {
			fmt.Fprintf(w, "\t%s\n", listingLine(n))
		}
	}
}

func listingLine(n *ir.Node) string {
	if n.NumValueInput() == 0 {
		return n.String()
	}
	operands := make([]string, n.NumValueInput())
	for i := range operands {
		operands[i] = n.ValueInput(i).String()
	}
	line := n.Op.String()
	for _, op := range operands {
		line += " " + op
	}
	return line
}
