package signature

import (
	"encoding/json"
	"testing"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/stretchr/testify/assert"
)

func TestFromMethod(t *testing.T) {
	tests := []struct {
		name   string
		method *ast.MethodDecl
		want   string
	}{
		{"no params", &ast.MethodDecl{Name: "run"}, "run()"},
		{"primitive", &ast.MethodDecl{Name: "foo", Params: []ast.Param{{Type: "int"}}}, "foo(int)"},
		{
			"generics stripped",
			&ast.MethodDecl{Name: "put", Params: []ast.Param{{Type: "Map<String, List<Integer>>"}, {Type: "T"}}},
			"put(Map, T)",
		},
		{"array", &ast.MethodDecl{Name: "sum", Params: []ast.Param{{Type: "int[]"}}}, "sum(int[])"},
		{"varargs element type", &ast.MethodDecl{Name: "join", Params: []ast.Param{{Type: "String", Variadic: true}}}, "join(String)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromMethod(tt.method).String())
		})
	}
}

func TestGenericOverloadsCollapse(t *testing.T) {
	a := FromMethod(&ast.MethodDecl{Name: "f", Params: []ast.Param{{Type: "List<String>"}}})
	b := FromMethod(&ast.MethodDecl{Name: "f", Params: []ast.Param{{Type: "List<Integer>"}}})
	assert.Equal(t, a, b)
}

func TestFromInvocation(t *testing.T) {
	_, ok := FromInvocation(&ast.Invocation{Name: "x"})
	assert.False(t, ok, "unresolved invocation has no signature")

	_, ok = FromInvocation(nil)
	assert.False(t, ok)

	sig, ok := FromInvocation(&ast.Invocation{
		Name:    "foo",
		Binding: &ast.Binding{DeclaringType: "A", Name: "foo", ParamTypes: []string{"List<String>", "int"}},
	})
	assert.True(t, ok)
	assert.Equal(t, "foo(List, int)", sig.String())

	decl := FromMethod(&ast.MethodDecl{Name: "foo", Params: []ast.Param{{Type: "List<T>"}, {Type: "int"}}})
	assert.Equal(t, decl, sig)
}

func TestSynthetic(t *testing.T) {
	assert.Equal(t, "#INITIALIZER#_0", ForInitializer(0).String())
	assert.Equal(t, "#FIELD#_3", ForFieldInitializer(3).String())
	assert.True(t, ForInitializer(1).IsSynthetic())
	assert.True(t, ForFieldInitializer(0).IsSynthetic())
	assert.False(t, New("run()").IsSynthetic())
	assert.NotEqual(t, ForInitializer(0), ForInitializer(1))
}

func TestCompare(t *testing.T) {
	assert.Negative(t, New("a()").Compare(New("b()")))
	assert.Positive(t, New("b()").Compare(New("a()")))
	assert.Zero(t, New("a()").Compare(New("a()")))
}

func TestSet(t *testing.T) {
	s := NewSet(New("b()"), New("a()"))
	s.Add(New("a()"))

	assert.Len(t, s, 2)
	assert.True(t, s.Contains(New("a()")))
	assert.False(t, s.Contains(New("c()")))
	assert.Equal(t, []Signature{New("a()"), New("b()")}, s.Sorted())

	var empty Set
	assert.False(t, empty.Contains(New("a()")))
}

func TestMarshalText(t *testing.T) {
	data, err := json.Marshal(map[string]Signature{"sig": Of("f", []string{"int"})})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"sig":"f(int)"}`, string(data))
}
