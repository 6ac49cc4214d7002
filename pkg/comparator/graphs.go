package comparator

import (
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/stepdown/pkg/callgraph"
	"github.com/panbanda/stepdown/pkg/invocation"
	"github.com/panbanda/stepdown/pkg/signature"
)

// FanOut ranks nodes with more callees first.
func FanOut(nodes []*callgraph.Node) *Ranked {
	r := NewRanked("fan-out", false)
	for _, n := range nodes {
		r.Set(n.Signature(), -float64(len(n.Callees())))
	}
	return r
}

// FanIn ranks nodes with fewer callers first.
func FanIn(nodes []*callgraph.Node) *Ranked {
	r := NewRanked("fan-in", false)
	for _, n := range nodes {
		r.Set(n.Signature(), float64(len(n.Callers())))
	}
	return r
}

// FanRatio ranks by callers per callee; nodes without callees rank last.
func FanRatio(nodes []*callgraph.Node) *Ranked {
	r := NewRanked("fan-ratio", false)
	for _, n := range nodes {
		callees := len(n.Callees())
		if callees == 0 {
			r.Set(n.Signature(), math.Inf(1))
			continue
		}
		r.Set(n.Signature(), float64(len(n.Callers()))/float64(callees))
	}
	return r
}

// RootSeparation puts nodes nobody calls first.
func RootSeparation(nodes []*callgraph.Node) *Ranked {
	r := NewRanked("roots", false)
	for _, n := range nodes {
		rank := 0.0
		if len(n.Callers()) == 0 {
			rank = -1
		}
		r.Set(n.Signature(), rank)
	}
	return r
}

// LeafSeparation puts nodes that call nothing last.
func LeafSeparation(nodes []*callgraph.Node) *Ranked {
	r := NewRanked("leaves", false)
	for _, n := range nodes {
		rank := 0.0
		if len(n.Callees()) == 0 {
			rank = 1
		}
		r.Set(n.Signature(), rank)
	}
	return r
}

// Random assigns every node a random rank. Used to evaluate other orderings.
func Random(nodes []*callgraph.Node, rng *rand.Rand) *Ranked {
	r := NewRanked("random", false)
	for _, n := range nodes {
		r.Set(n.Signature(), float64(rng.Int()))
	}
	return r
}

// Invocation ranks nodes by their position in an invocation traversal
// starting from every node of the list in order. The traversal runs on a
// clone, so orderings that drop edges leave nodes untouched.
func Invocation(nodes []*callgraph.Node, ordering invocation.Ordering, strategy invocation.Strategy) *Ranked {
	r := NewRanked("invocation", false)
	for i, n := range invocation.Traverse(callgraph.Clone(nodes), ordering, strategy) {
		r.Set(n.Signature(), float64(i))
	}
	return r
}

// Reachability sorts a before b when b is reachable from a but not the
// other way round. Reachability sets are computed once, at construction.
type Reachability struct {
	index     map[signature.Signature]uint32
	reachable []*roaring.Bitmap
}

// NewReachability computes the reachability sets of nodes.
func NewReachability(nodes []*callgraph.Node) *Reachability {
	r := &Reachability{
		index:     make(map[signature.Signature]uint32, len(nodes)),
		reachable: make([]*roaring.Bitmap, len(nodes)),
	}
	for i, n := range nodes {
		r.index[n.Signature()] = uint32(i)
	}
	for i, n := range nodes {
		bm := roaring.New()
		for m := range invocation.Reachable(n) {
			if id, ok := r.index[m.Signature()]; ok {
				bm.Add(id)
			}
		}
		r.reachable[i] = bm
	}
	return r
}

func (r *Reachability) Name() string {
	return "reachability"
}

func (r *Reachability) Compare(a, b signature.Signature) int {
	ia, okA := r.index[a]
	ib, okB := r.index[b]
	if !okA || !okB || ia == ib {
		return 0
	}
	ab := r.reachable[ia].Contains(ib)
	ba := r.reachable[ib].Contains(ia)
	switch {
	case ab && !ba:
		return -1
	case ba && !ab:
		return 1
	default:
		return 0
	}
}

// Reachable returns how many nodes are reachable from sig, sig included.
func (r *Reachability) Reachable(sig signature.Signature) uint64 {
	i, ok := r.index[sig]
	if !ok {
		return 0
	}
	return r.reachable[i].GetCardinality()
}
