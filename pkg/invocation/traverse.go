package invocation

import (
	"fmt"

	"github.com/panbanda/stepdown/pkg/callgraph"
)

// Strategy selects how invocations are followed from each start point.
type Strategy string

const (
	DepthFirst   Strategy = "depth-first"
	BreadthFirst Strategy = "breadth-first"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case DepthFirst, BreadthFirst:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown invocation strategy %q", s)
	}
}

// Traverse visits the graph from roots in order with the given strategy,
// inserting every newly reached node into ordering, and returns the result.
func Traverse(roots []*callgraph.Node, ordering Ordering, strategy Strategy) []*callgraph.Node {
	if strategy == BreadthFirst {
		return traverseBreadthFirst(roots, ordering)
	}
	return traverseDepthFirst(roots, ordering)
}

// traverseDepthFirst pushes callees in reverse so that the first callee in
// list order is visited first.
func traverseDepthFirst(roots []*callgraph.Node, ordering Ordering) []*callgraph.Node {
	for _, root := range roots {
		stack := []*callgraph.Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if ordering.Contains(n) {
				continue
			}
			callees := n.Callees()
			for i := len(callees) - 1; i >= 0; i-- {
				stack = append(stack, callees[i])
			}
			ordering.Insert(n)
		}
	}
	return ordering.Nodes()
}

func traverseBreadthFirst(roots []*callgraph.Node, ordering Ordering) []*callgraph.Node {
	for _, root := range roots {
		queue := []*callgraph.Node{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if ordering.Contains(n) {
				continue
			}
			queue = append(queue, n.Callees()...)
			ordering.Insert(n)
		}
	}
	return ordering.Nodes()
}
