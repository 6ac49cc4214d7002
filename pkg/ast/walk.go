package ast

// Visitor receives the members of one type declaration in source order.
// Returning false from a Visit method skips the invocations of that member.
type Visitor interface {
	VisitMethod(m *MethodDecl) bool
	// VisitInitializer receives the i-th initializer block of the type.
	VisitInitializer(init *Initializer, i int) bool
	// VisitField receives the i-th field declaration of the type.
	VisitField(f *FieldDecl, i int) bool
	VisitInvocation(inv *Invocation)
}

// BaseVisitor implements Visitor with no-ops that visit everything.
// Embed it to override only the callbacks you need.
type BaseVisitor struct{}

func (BaseVisitor) VisitMethod(*MethodDecl) bool            { return true }
func (BaseVisitor) VisitInitializer(*Initializer, int) bool { return true }
func (BaseVisitor) VisitField(*FieldDecl, int) bool         { return true }
func (BaseVisitor) VisitInvocation(*Invocation)             {}

// Walk visits the members of t in source order. Nested type declarations
// are not descended into.
func Walk(t *TypeDecl, v Visitor) {
	if t == nil {
		return
	}

	initializers, fields := 0, 0
	for _, m := range t.Members {
		switch {
		case m.Method != nil:
			if v.VisitMethod(m.Method) {
				visitInvocations(m.Method.Invocations, v)
			}
		case m.Initializer != nil:
			i := initializers
			initializers++
			if v.VisitInitializer(m.Initializer, i) {
				visitInvocations(m.Initializer.Invocations, v)
			}
		case m.Field != nil:
			i := fields
			fields++
			if v.VisitField(m.Field, i) {
				visitInvocations(m.Field.Invocations, v)
			}
		}
	}
}

func visitInvocations(invs []*Invocation, v Visitor) {
	for _, inv := range invs {
		v.VisitInvocation(inv)
	}
}
