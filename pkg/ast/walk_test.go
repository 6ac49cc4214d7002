package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	BaseVisitor
	events    []string
	skipField bool
}

func (r *recorder) VisitMethod(m *MethodDecl) bool {
	r.events = append(r.events, "method:"+m.Name)
	return true
}

func (r *recorder) VisitInitializer(_ *Initializer, i int) bool {
	r.events = append(r.events, "init:"+string(rune('0'+i)))
	return true
}

func (r *recorder) VisitField(f *FieldDecl, i int) bool {
	r.events = append(r.events, "field:"+f.Names[0])
	return !r.skipField
}

func (r *recorder) VisitInvocation(inv *Invocation) {
	r.events = append(r.events, "call:"+inv.Name)
}

func sampleType() *TypeDecl {
	return &TypeDecl{
		Name: "Sample",
		Members: []*Member{
			{Kind: MemberField, Field: &FieldDecl{Names: []string{"x"}, Invocations: []*Invocation{{Name: "compute"}}}},
			{Kind: MemberInitializer, Initializer: &Initializer{Invocations: []*Invocation{{Name: "setup"}}}},
			{Kind: MemberType, Type: &TypeDecl{Name: "Inner", Members: []*Member{
				{Kind: MemberMethod, Method: &MethodDecl{Name: "hidden"}},
			}}},
			{Kind: MemberMethod, Method: &MethodDecl{Name: "run", Invocations: []*Invocation{{Name: "a"}, {Name: "b"}}}},
			{Kind: MemberInitializer, Initializer: &Initializer{Static: true}},
		},
	}
}

func TestWalkVisitsMembersInSourceOrder(t *testing.T) {
	r := &recorder{}
	Walk(sampleType(), r)

	assert.Equal(t, []string{
		"field:x", "call:compute",
		"init:0", "call:setup",
		"method:run", "call:a", "call:b",
		"init:1",
	}, r.events)
}

func TestWalkSkipsInvocationsWhenVisitReturnsFalse(t *testing.T) {
	r := &recorder{skipField: true}
	Walk(sampleType(), r)

	assert.NotContains(t, r.events, "call:compute")
	assert.Contains(t, r.events, "call:setup")
}

func TestWalkNilType(t *testing.T) {
	r := &recorder{}
	Walk(nil, r)
	assert.Empty(t, r.events)
}

func TestModifiersAccess(t *testing.T) {
	tests := []struct {
		mods Modifiers
		want Access
	}{
		{ModPublic | ModStatic, AccessPublic},
		{ModProtected, AccessProtected},
		{0, AccessPackage},
		{ModFinal, AccessPackage},
		{ModPrivate | ModFinal, AccessPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.mods.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mods.Access())
		})
	}
}

func TestUnitTopLevel(t *testing.T) {
	unit := &Unit{Types: []*TypeDecl{{Name: ""}, {Name: "First"}, {Name: "Second"}}}
	assert.Equal(t, "First", unit.TopLevel().Name)

	var empty *Unit
	assert.Nil(t, empty.TopLevel())
}

func TestMalformedMembers(t *testing.T) {
	ok := &Member{Kind: MemberMethod, Name: "ok"}
	bad := &Member{Kind: MemberMethod, Name: "bad", Malformed: true}
	decl := &TypeDecl{Name: "Demo", Members: []*Member{ok, bad}}

	assert.False(t, decl.Malformed(), "errors inside a member leave the type sortable")
	assert.Equal(t, []*Member{bad}, decl.MalformedMembers())
	assert.True(t, decl.HasSyntaxErrors())

	decl.SyntaxErrors = true
	assert.True(t, decl.Malformed())

	clean := &TypeDecl{Name: "Clean", Members: []*Member{ok}}
	assert.False(t, clean.HasSyntaxErrors())
	assert.Empty(t, clean.MalformedMembers())
}
