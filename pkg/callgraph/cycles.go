package callgraph

import (
	"slices"

	"github.com/panbanda/stepdown/pkg/signature"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Cycles returns the strongly connected components that form call cycles:
// components with more than one method, plus methods that call themselves.
// Each cycle lists its members in graph creation order.
func Cycles(nodes []*Node) [][]signature.Signature {
	if len(nodes) == 0 {
		return nil
	}

	ids := make(map[*Node]int64, len(nodes))
	directed := simple.NewDirectedGraph()
	for i, n := range nodes {
		ids[n] = int64(i)
		directed.AddNode(simple.Node(i))
	}

	selfLoops := make(map[int64]bool)
	for _, n := range nodes {
		from := ids[n]
		for _, callee := range n.callees {
			to, ok := ids[callee]
			if !ok {
				continue
			}
			// gonum simple graphs don't support self-loops.
			if from == to {
				selfLoops[from] = true
				continue
			}
			directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	var found [][]int64
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) == 1 && !selfLoops[scc[0].ID()] {
			continue
		}
		members := make([]int64, len(scc))
		for i, node := range scc {
			members[i] = node.ID()
		}
		slices.Sort(members)
		found = append(found, members)
	}
	slices.SortFunc(found, func(a, b []int64) int { return int(a[0] - b[0]) })

	cycles := make([][]signature.Signature, len(found))
	for i, members := range found {
		cycles[i] = make([]signature.Signature, len(members))
		for j, id := range members {
			cycles[i][j] = nodes[id].sig
		}
	}
	return cycles
}
