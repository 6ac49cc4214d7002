// Package invocation turns a call graph into a linear order of methods by
// walking invocations from a list of start points.
package invocation

import (
	"slices"

	"github.com/panbanda/stepdown/pkg/callgraph"
)

// Ordering accumulates traversed nodes.
type Ordering interface {
	Insert(n *callgraph.Node)
	Contains(n *callgraph.Node) bool
	Nodes() []*callgraph.Node
}

// Simple appends nodes in the order they are first inserted.
type Simple struct {
	nodes []*callgraph.Node
	seen  map[*callgraph.Node]struct{}
}

// NewSimple creates an empty Simple ordering.
func NewSimple() *Simple {
	return &Simple{seen: make(map[*callgraph.Node]struct{})}
}

func (s *Simple) Insert(n *callgraph.Node) {
	if s.Contains(n) {
		return
	}
	s.seen[n] = struct{}{}
	s.nodes = append(s.nodes, n)
}

func (s *Simple) Contains(n *callgraph.Node) bool {
	_, ok := s.seen[n]
	return ok
}

func (s *Simple) Nodes() []*callgraph.Node {
	return slices.Clone(s.nodes)
}

// Interleaved places a node before the first already-ordered node it can
// reach without being reachable from it, so a caller discovered late still
// lands above its callees. Each such insertion drops the caller's direct
// edge to that node, which shapes the placement of later insertions.
// Interleaved mutates the graph it orders; run it on a clone.
type Interleaved struct {
	nodes []*callgraph.Node
	seen  map[*callgraph.Node]struct{}
}

// NewInterleaved creates an empty Interleaved ordering.
func NewInterleaved() *Interleaved {
	return &Interleaved{seen: make(map[*callgraph.Node]struct{})}
}

func (o *Interleaved) Insert(v *callgraph.Node) {
	if o.Contains(v) {
		return
	}
	o.seen[v] = struct{}{}

	fromV := Reachable(v)
	for i, w := range o.nodes {
		if _, ok := fromV[w]; !ok {
			continue
		}
		if _, back := Reachable(w)[v]; back {
			continue
		}
		o.nodes = slices.Insert(o.nodes, i, v)
		v.RemoveCallee(w)
		return
	}
	o.nodes = append(o.nodes, v)
}

func (o *Interleaved) Contains(n *callgraph.Node) bool {
	_, ok := o.seen[n]
	return ok
}

func (o *Interleaved) Nodes() []*callgraph.Node {
	return slices.Clone(o.nodes)
}

// Reachable returns the nodes reachable from n over the current callee
// edges, including n itself.
func Reachable(n *callgraph.Node) map[*callgraph.Node]struct{} {
	seen := map[*callgraph.Node]struct{}{n: {}}
	stack := []*callgraph.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range cur.Callees() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			stack = append(stack, c)
		}
	}
	return seen
}
