package callgraph

import (
	"slices"
	"strings"

	"github.com/panbanda/stepdown/pkg/signature"
)

// Node is one method or synthetic caller in a call graph. Callees are kept
// in the order the calls first appear; callers in the order the edges were
// added. Neither list holds duplicates.
type Node struct {
	sig     signature.Signature
	callees []*Node
	callers []*Node
}

// NewNode creates an unconnected node.
func NewNode(sig signature.Signature) *Node {
	return &Node{sig: sig}
}

// Signature returns the node's signature.
func (n *Node) Signature() signature.Signature {
	return n.sig
}

// Callees returns the nodes n calls. The slice must not be modified.
func (n *Node) Callees() []*Node {
	return n.callees
}

// Callers returns the nodes calling n. The slice must not be modified.
func (n *Node) Callers() []*Node {
	return n.callers
}

// AddCallee adds the edge n -> callee. It reports false when the edge
// already existed.
func (n *Node) AddCallee(callee *Node) bool {
	if slices.Contains(n.callees, callee) {
		return false
	}
	n.callees = append(n.callees, callee)
	callee.callers = append(callee.callers, n)
	return true
}

// RemoveCallee drops the edge n -> callee from both endpoints.
func (n *Node) RemoveCallee(callee *Node) bool {
	i := slices.Index(n.callees, callee)
	if i < 0 {
		return false
	}
	n.callees = slices.Delete(n.callees, i, i+1)
	if j := slices.Index(callee.callers, n); j >= 0 {
		callee.callers = slices.Delete(callee.callers, j, j+1)
	}
	return true
}

// Equal compares signatures and the callee signature sequence.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil || n.sig != o.sig || len(n.callees) != len(o.callees) {
		return false
	}
	for i := range n.callees {
		if n.callees[i].sig != o.callees[i].sig {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(n.sig.String())
	b.WriteString(" -> [")
	for i, c := range n.callees {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.sig.String())
	}
	b.WriteString("]")
	return b.String()
}

// Signatures returns the signatures of nodes in order.
func Signatures(nodes []*Node) []signature.Signature {
	out := make([]signature.Signature, len(nodes))
	for i, n := range nodes {
		out[i] = n.sig
	}
	return out
}

// Clone deep-copies nodes and the edges among them, preserving list order
// and callee/caller order. Edges to nodes outside the list are dropped.
func Clone(nodes []*Node) []*Node {
	copies := make(map[*Node]*Node, len(nodes))
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		c := &Node{sig: n.sig}
		copies[n] = c
		out[i] = c
	}
	for _, n := range nodes {
		c := copies[n]
		for _, callee := range n.callees {
			if cc, ok := copies[callee]; ok {
				c.callees = append(c.callees, cc)
			}
		}
		for _, caller := range n.callers {
			if cc, ok := copies[caller]; ok {
				c.callers = append(c.callers, cc)
			}
		}
	}
	return out
}
