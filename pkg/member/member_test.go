package member

import (
	"testing"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/comparator"
	"github.com/panbanda/stepdown/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name string, start int) *ast.Member {
	return &ast.Member{Kind: ast.MemberField, Name: name, Start: start, Field: &ast.FieldDecl{Names: []string{name}}}
}

func method(name string, start int) *ast.Member {
	return &ast.Member{Kind: ast.MemberMethod, Name: name, Start: start, Method: &ast.MethodDecl{Name: name}}
}

func nestedType(name string, start int) *ast.Member {
	return &ast.Member{Kind: ast.MemberType, Name: name, Start: start, Type: &ast.TypeDecl{Name: name}}
}

func names(members []*ast.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

func TestNonMethodsKeepSourceOrder(t *testing.T) {
	order, err := ParseCategoryOrder([]string{"fields", "methods", "types"})
	require.NoError(t, err)

	f, m, typ := field("f", 0), method("m", 10), nestedType("T", 20)
	c := NewComparator(comparator.Lexical(), signature.NewSet(signature.New("m()")), order)

	assert.Equal(t, []string{"f", "m", "T"}, names(c.Sort([]*ast.Member{f, m, typ})))
}

func TestKeepsPlaceIgnoresCategories(t *testing.T) {
	order, err := ParseCategoryOrder([]string{"types", "fields"})
	require.NoError(t, err)

	c := NewComparator(comparator.Null(), nil, order)
	f, typ := field("f", 0), nestedType("T", 10)
	assert.Negative(t, c.Compare(f, typ), "fields and types never swap")
}

func TestMethodsFollowMethodComparator(t *testing.T) {
	known := signature.NewSet(signature.New("a()"), signature.New("b()"))
	c := NewComparator(comparator.Lexical(), known, nil)

	b, a := method("b", 0), method("a", 10)
	assert.Equal(t, []string{"a", "b"}, names(c.Sort([]*ast.Member{b, a})))
}

func TestUnknownMethodsKeepSourceOrder(t *testing.T) {
	c := NewComparator(comparator.Lexical(), signature.NewSet(), nil)
	b, a := method("b", 0), method("a", 10)
	assert.Equal(t, []string{"b", "a"}, names(c.Sort([]*ast.Member{b, a})))
}

func TestTiesFallBackToSourceOrder(t *testing.T) {
	known := signature.NewSet(signature.New("a()"), signature.New("b()"))
	c := NewComparator(comparator.Null(), known, nil)
	b, a := method("b", 0), method("a", 10)
	assert.Equal(t, []string{"b", "a"}, names(c.Sort([]*ast.Member{b, a})))
}

func TestCategoriesOrderMethodsAgainstFields(t *testing.T) {
	c := NewComparator(comparator.Null(), nil, nil)
	ctor := &ast.Member{Kind: ast.MemberMethod, Name: "T", Start: 0, Method: &ast.MethodDecl{Name: "T", Constructor: true}}
	m := method("run", 10)
	f := field("x", 20)

	assert.Equal(t, []string{"x", "T", "run"}, names(c.Sort([]*ast.Member{m, f, ctor})))
}

func TestSortIsAPermutation(t *testing.T) {
	known := signature.NewSet(signature.New("a()"), signature.New("b()"), signature.New("c()"))
	c := NewComparator(comparator.Lexical(), known, nil)
	input := []*ast.Member{method("c", 0), field("x", 5), method("a", 10), nestedType("In", 15), method("b", 20)}

	once := c.Sort(input)
	assert.ElementsMatch(t, input, once)
	assert.Equal(t, []string{"c", "x", "a", "In", "b"}, names(input), "input is untouched")
}

func TestPinnedMembersKeepTheirSlot(t *testing.T) {
	known := signature.NewSet(signature.New("a()"), signature.New("b()"), signature.New("x()"))
	c := NewComparator(comparator.Lexical(), known, nil)

	broken := method("x", 10)
	broken.Malformed = true
	input := []*ast.Member{method("b", 0), broken, method("a", 20)}
	assert.Equal(t, []string{"a", "x", "b"}, names(c.Sort(input)))

	constant := &ast.Member{Kind: ast.MemberEnumConstant, Name: "RED", Start: 30}
	input = []*ast.Member{method("b", 0), method("a", 20), constant}
	assert.Equal(t, []string{"a", "b", "RED"}, names(c.Sort(input)))
}

func TestOf(t *testing.T) {
	tests := []struct {
		member *ast.Member
		want   Category
	}{
		{method("m", 0), CategoryMethods},
		{&ast.Member{Kind: ast.MemberMethod, Method: &ast.MethodDecl{Constructor: true}}, CategoryConstructors},
		{field("f", 0), CategoryFields},
		{&ast.Member{Kind: ast.MemberInitializer, Initializer: &ast.Initializer{Static: true}}, CategoryStaticInitializers},
		{&ast.Member{Kind: ast.MemberInitializer, Initializer: &ast.Initializer{}}, CategoryInitializers},
		{nestedType("T", 0), CategoryTypes},
		{&ast.Member{Kind: ast.MemberEnumConstant}, CategoryEnumConstants},
		{&ast.Member{Kind: ast.MemberAnnotationElement, Method: &ast.MethodDecl{}}, CategoryAnnotationMembers},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.member))
		})
	}
}

func TestParseCategoryOrder(t *testing.T) {
	order, err := ParseCategoryOrder(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategoryOrder(), order)

	order, err = ParseCategoryOrder([]string{"Methods", "fields"})
	require.NoError(t, err)
	assert.Less(t, order.Rank(CategoryMethods), order.Rank(CategoryFields))
	assert.Less(t, order.Rank(CategoryFields), order.Rank(CategoryConstructors))

	_, err = ParseCategoryOrder([]string{"gadgets"})
	assert.Error(t, err)
}
