// Package callgraph builds the method-level call graph of one type.
package callgraph

import "github.com/panbanda/stepdown/pkg/signature"

// Graph owns the nodes of one call graph, indexed by signature and kept in
// creation order.
type Graph struct {
	nodes []*Node
	index map[signature.Signature]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[signature.Signature]*Node)}
}

// Node looks up a node by signature.
func (g *Graph) Node(sig signature.Signature) (*Node, bool) {
	n, ok := g.index[sig]
	return n, ok
}

// Obtain returns the node for sig, creating it if needed.
func (g *Graph) Obtain(sig signature.Signature) *Node {
	if n, ok := g.index[sig]; ok {
		return n
	}
	n := NewNode(sig)
	g.index[sig] = n
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns a copy of the node list in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Signatures returns the set of signatures in the graph.
func (g *Graph) Signatures() signature.Set {
	s := make(signature.Set, len(g.nodes))
	for _, n := range g.nodes {
		s.Add(n.sig)
	}
	return s
}

// Edges returns the number of caller -> callee edges.
func (g *Graph) Edges() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.callees)
	}
	return total
}
