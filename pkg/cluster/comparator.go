package cluster

import (
	"cmp"

	"github.com/panbanda/stepdown/pkg/comparator"
	"github.com/panbanda/stepdown/pkg/signature"
)

// Comparator keeps each cluster contiguous: members of one cluster compare
// by their position inside it, members of different clusters compare as
// their clusters' main signatures do under the outer comparator.
type Comparator struct {
	outer    comparator.Comparator
	clusters map[signature.Signature]*Node
	rank     map[signature.Signature]int
}

// NewComparator snapshots the current member order of clusters.
func NewComparator(outer comparator.Comparator, clusters []*Node) *Comparator {
	c := &Comparator{
		outer:    outer,
		clusters: make(map[signature.Signature]*Node),
		rank:     make(map[signature.Signature]int),
	}
	for _, cl := range clusters {
		for i, m := range cl.members {
			c.clusters[m.Signature()] = cl
			c.rank[m.Signature()] = i
		}
	}
	return c
}

func (c *Comparator) Name() string {
	return "cluster"
}

func (c *Comparator) Compare(a, b signature.Signature) int {
	ca, okA := c.clusters[a]
	cb, okB := c.clusters[b]
	if !okA || !okB {
		return 0
	}
	if ca == cb {
		return cmp.Compare(c.rank[a], c.rank[b])
	}
	return c.outer.Compare(ca.Signature(), cb.Signature())
}
