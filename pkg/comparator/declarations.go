package comparator

import (
	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/signature"
)

// SourcePosition ranks methods by the order they are declared in. When two
// declarations share a signature the first one counts.
func SourcePosition(t *ast.TypeDecl) *Ranked {
	r := NewRanked("source-position", true)
	i := 0
	forEachMethod(t, func(m *ast.MethodDecl) {
		r.SetDefault(signature.FromMethod(m), float64(i))
		i++
	})
	return r
}

// AccessLevel ranks public before protected before package before private.
func AccessLevel(t *ast.TypeDecl) *Ranked {
	r := NewRanked("access-level", true)
	forEachMethod(t, func(m *ast.MethodDecl) {
		r.SetDefault(signature.FromMethod(m), float64(m.Modifiers.Access()))
	})
	return r
}

// Constructor puts constructors before every other signature.
func Constructor(t *ast.TypeDecl) *Ranked {
	r := NewRanked("constructor", false)
	forEachMethod(t, func(m *ast.MethodDecl) {
		if m.Constructor {
			r.Set(signature.FromMethod(m), 0)
		}
	})
	return r
}

// InitializerInvocation ranks the synthetic callers of initializer blocks
// and field initializers in source order, ahead of everything else, so the
// methods they call are traversed first.
func InitializerInvocation(t *ast.TypeDecl) *Ranked {
	v := &initializerRanks{ranks: NewRanked("initializer", false)}
	ast.Walk(t, v)
	return v.ranks
}

type initializerRanks struct {
	ast.BaseVisitor
	ranks *Ranked
	next  int
}

func (v *initializerRanks) VisitMethod(*ast.MethodDecl) bool { return false }

func (v *initializerRanks) VisitInitializer(_ *ast.Initializer, i int) bool {
	v.ranks.Set(signature.ForInitializer(i), float64(v.next))
	v.next++
	return false
}

func (v *initializerRanks) VisitField(f *ast.FieldDecl, i int) bool {
	if len(f.Invocations) > 0 {
		v.ranks.Set(signature.ForFieldInitializer(i), float64(v.next))
		v.next++
	}
	return false
}

// methodVisitor adapts a callback to ast.Visitor.
type methodVisitor struct {
	ast.BaseVisitor
	fn func(*ast.MethodDecl)
}

func (v methodVisitor) VisitMethod(m *ast.MethodDecl) bool {
	v.fn(m)
	return false
}

func (methodVisitor) VisitInitializer(*ast.Initializer, int) bool { return false }
func (methodVisitor) VisitField(*ast.FieldDecl, int) bool         { return false }

func forEachMethod(t *ast.TypeDecl, fn func(*ast.MethodDecl)) {
	ast.Walk(t, methodVisitor{fn: fn})
}
