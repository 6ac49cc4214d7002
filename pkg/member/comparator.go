package member

import (
	"cmp"
	"io"
	"log/slog"
	"slices"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/comparator"
	"github.com/panbanda/stepdown/pkg/signature"
)

// Comparator orders the members of one type. Fields, enum constants,
// initializers and nested types never move relative to each other; members
// of different categories follow the category order; methods with known
// signatures follow the method comparator; anything else keeps source order.
type Comparator struct {
	methods comparator.Comparator
	known   signature.Set
	order   CategoryOrder
	logger  *slog.Logger
}

// NewComparator wraps a method comparator. A nil order uses DefaultCategoryOrder.
func NewComparator(methods comparator.Comparator, known signature.Set, order CategoryOrder) *Comparator {
	if order == nil {
		order = DefaultCategoryOrder()
	}
	return &Comparator{
		methods: methods,
		known:   known,
		order:   order,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for tie diagnostics.
func (c *Comparator) WithLogger(logger *slog.Logger) *Comparator {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Methods returns the wrapped method comparator.
func (c *Comparator) Methods() comparator.Comparator {
	return c.methods
}

func (c *Comparator) Compare(a, b *ast.Member) int {
	if a == b {
		return 0
	}
	if keepsPlace(a) && keepsPlace(b) {
		return cmp.Compare(a.Start, b.Start)
	}

	if d := c.order.Rank(Of(a)) - c.order.Rank(Of(b)); d != 0 {
		return d
	}

	if a.Method != nil && b.Method != nil {
		sa, sb := signature.FromMethod(a.Method), signature.FromMethod(b.Method)
		if c.known.Contains(sa) && c.known.Contains(sb) {
			if d := c.methods.Compare(sa, sb); d != 0 {
				return d
			}
			if sa != sb {
				c.logger.Warn("method order is ambiguous, keeping source order", "a", sa.String(), "b", sb.String())
			}
		}
	}
	return cmp.Compare(a.Start, b.Start)
}

// Sort returns members in comparator order. Pinned members, enum constants
// and members with syntax errors, keep their index and the others fill the
// remaining slots. The input is not modified.
func (c *Comparator) Sort(members []*ast.Member) []*ast.Member {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, c.Compare)

	movable := slices.DeleteFunc(sorted, pinned)
	out := make([]*ast.Member, len(members))
	next := 0
	for i, m := range members {
		if pinned(m) {
			out[i] = m
			continue
		}
		out[i] = movable[next]
		next++
	}
	return out
}

func pinned(m *ast.Member) bool {
	return m.Malformed || m.Kind == ast.MemberEnumConstant
}

func keepsPlace(m *ast.Member) bool {
	switch m.Kind {
	case ast.MemberField, ast.MemberEnumConstant, ast.MemberInitializer, ast.MemberType:
		return true
	}
	return false
}
