// Package comparator provides partial orderings over method signatures and
// the stack that combines them into one ordering.
package comparator

import (
	"cmp"

	"github.com/panbanda/stepdown/pkg/signature"
)

// Comparator orders two signatures: negative if a sorts first, positive if
// b does, zero when it has no opinion.
type Comparator interface {
	Compare(a, b signature.Signature) int
}

// Func adapts an ordinary function to Comparator.
type Func func(a, b signature.Signature) int

func (f Func) Compare(a, b signature.Signature) int {
	return f(a, b)
}

// Named is implemented by comparators that can describe themselves in logs.
type Named interface {
	Name() string
}

// NameOf returns c's name, or "anonymous".
func NameOf(c Comparator) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "anonymous"
}

// Ranked orders signatures by a numeric rank, lower first. Signatures
// without a rank sort before every ranked one when unknownFirst is set and
// after them otherwise; two unranked signatures are equal.
type Ranked struct {
	name         string
	ranks        map[signature.Signature]float64
	unknownFirst bool
}

// NewRanked creates an empty ranked comparator.
func NewRanked(name string, unknownFirst bool) *Ranked {
	return &Ranked{
		name:         name,
		ranks:        make(map[signature.Signature]float64),
		unknownFirst: unknownFirst,
	}
}

// Set assigns a rank, replacing any earlier one.
func (r *Ranked) Set(sig signature.Signature, rank float64) {
	r.ranks[sig] = rank
}

// SetDefault assigns a rank only if sig has none yet.
func (r *Ranked) SetDefault(sig signature.Signature, rank float64) {
	if _, ok := r.ranks[sig]; !ok {
		r.ranks[sig] = rank
	}
}

// Rank returns the rank of sig.
func (r *Ranked) Rank(sig signature.Signature) (float64, bool) {
	rank, ok := r.ranks[sig]
	return rank, ok
}

// Len returns the number of ranked signatures.
func (r *Ranked) Len() int {
	return len(r.ranks)
}

func (r *Ranked) Name() string {
	return r.name
}

func (r *Ranked) Compare(a, b signature.Signature) int {
	ra, okA := r.ranks[a]
	rb, okB := r.ranks[b]
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		if r.unknownFirst {
			return -1
		}
		return 1
	case !okB:
		if r.unknownFirst {
			return 1
		}
		return -1
	}
	return cmp.Compare(ra, rb)
}

// Lexical orders signatures by their keys.
func Lexical() Comparator {
	return named{name: "lexical", fn: func(a, b signature.Signature) int { return a.Compare(b) }}
}

// Null never expresses a preference.
func Null() Comparator {
	return named{name: "null", fn: func(signature.Signature, signature.Signature) int { return 0 }}
}

type named struct {
	name string
	fn   Func
}

func (n named) Compare(a, b signature.Signature) int { return n.fn(a, b) }
func (n named) Name() string                         { return n.name }
