// Package rewrite applies a member order to Java source text.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/member"
)

var (
	// ErrContentLoss is returned when a rewrite would change the number of
	// non-blank lines. The file is left untouched.
	ErrContentLoss = errors.New("rewrite would lose content")

	// ErrOverlap is returned when member extents overlap, which means the
	// syntax tree does not describe the source it came with.
	ErrOverlap = errors.New("overlapping member extents")
)

// Reorder returns the unit's source with the members of its top-level type
// permuted into comparator order. Each member keeps its leading comments
// and a comment trailing it on the same line; the text between members
// stays where it is. Enum constants and members with syntax errors never
// move.
func Reorder(unit *ast.Unit, order *member.Comparator) ([]byte, bool, error) {
	top := unit.TopLevel()
	if top == nil {
		return nil, false, fmt.Errorf("%s: %w", unit.Path, ast.ErrNoTopLevelType)
	}
	src := unit.Source
	slots := top.Members
	if len(slots) < 2 {
		return src, false, nil
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Start < slots[i-1].End {
			return nil, false, fmt.Errorf("%s: %w: %s and %s", unit.Path, ErrOverlap, slots[i-1].Name, slots[i].Name)
		}
	}
	if slots[0].Start < 0 || slots[len(slots)-1].End > len(src) {
		return nil, false, fmt.Errorf("%s: %w: extents outside source", unit.Path, ErrOverlap)
	}

	placed := order.Sort(slots)

	var out bytes.Buffer
	out.Grow(len(src))
	out.Write(src[:slots[0].Start])
	for i, m := range placed {
		out.Write(src[m.Start:m.End])
		if i+1 < len(slots) {
			out.Write(src[slots[i].End:slots[i+1].Start])
		}
	}
	out.Write(src[slots[len(slots)-1].End:])

	result := out.Bytes()
	if nonBlankLines(result) != nonBlankLines(src) {
		return nil, false, fmt.Errorf("%s: %w", unit.Path, ErrContentLoss)
	}
	return result, !bytes.Equal(result, src), nil
}

// nonBlankLines counts lines holding anything besides whitespace.
func nonBlankLines(b []byte) int {
	count := 0
	for line := range bytes.Lines(b) {
		if len(bytes.TrimSpace(line)) > 0 {
			count++
		}
	}
	return count
}
