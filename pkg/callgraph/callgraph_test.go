package callgraph

import (
	"testing"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "Sample"

func call(name string, params ...string) *ast.Invocation {
	return &ast.Invocation{
		Name:    name,
		Binding: &ast.Binding{DeclaringType: owner, Name: name, ParamTypes: params},
	}
}

func method(name string, params []string, calls ...*ast.Invocation) *ast.Member {
	m := &ast.MethodDecl{Name: name, Invocations: calls}
	for _, p := range params {
		m.Params = append(m.Params, ast.Param{Type: p})
	}
	return &ast.Member{Kind: ast.MemberMethod, Name: name, Method: m}
}

func unitOf(members ...*ast.Member) *ast.Unit {
	return &ast.Unit{Types: []*ast.TypeDecl{{Name: owner, Members: members}}}
}

func sig(s string) signature.Signature {
	return signature.New(s)
}

func TestNodeAddCalleeIsIdempotent(t *testing.T) {
	a, b := NewNode(sig("a()")), NewNode(sig("b()"))

	assert.True(t, a.AddCallee(b))
	assert.False(t, a.AddCallee(b))

	assert.Equal(t, []*Node{b}, a.Callees())
	assert.Equal(t, []*Node{a}, b.Callers())
}

func TestNodeRemoveCallee(t *testing.T) {
	a, b, c := NewNode(sig("a()")), NewNode(sig("b()")), NewNode(sig("c()"))
	a.AddCallee(b)
	a.AddCallee(c)

	assert.True(t, a.RemoveCallee(b))
	assert.False(t, a.RemoveCallee(b))
	assert.Equal(t, []*Node{c}, a.Callees())
	assert.Empty(t, b.Callers())
}

func TestNodeEqual(t *testing.T) {
	a1, b1 := NewNode(sig("a()")), NewNode(sig("b()"))
	a1.AddCallee(b1)
	a2, b2 := NewNode(sig("a()")), NewNode(sig("b()"))
	a2.AddCallee(b2)

	assert.True(t, a1.Equal(a2))
	assert.False(t, a1.Equal(b1))
	assert.Equal(t, "a() -> [b()]", a1.String())
}

func TestExtractStepdown(t *testing.T) {
	unit := unitOf(
		method("c", nil),
		method("b", nil),
		method("a", nil, call("b"), call("c"), call("b")),
	)

	g := Extract(unit)
	require.Equal(t, 3, g.Len())

	a, ok := g.Node(sig("a()"))
	require.True(t, ok)
	assert.Equal(t, []signature.Signature{sig("b()"), sig("c()")}, Signatures(a.Callees()))
	assert.Equal(t, 2, g.Edges())

	assert.Equal(t, []signature.Signature{sig("c()"), sig("b()"), sig("a()")}, Signatures(g.Nodes()))
}

func TestExtractSkipsNonLocalCalls(t *testing.T) {
	external := &ast.Invocation{Name: "x", Binding: &ast.Binding{DeclaringType: "Other", Name: "x"}}
	unresolved := &ast.Invocation{Name: "y"}
	qualified := call("b")
	qualified.Qualifier = ast.QualifierOther
	this := call("b")
	this.Qualifier = ast.QualifierThis

	unit := unitOf(
		method("a", nil, external, unresolved, qualified),
		method("b", nil),
		method("c", nil, this),
	)

	g := Extract(unit)
	a, _ := g.Node(sig("a()"))
	assert.Empty(t, a.Callees())

	c, _ := g.Node(sig("c()"))
	assert.Len(t, c.Callees(), 1, "this-qualified calls are local by default")

	g = Extract(unit, WithThisCalls(false))
	c, _ = g.Node(sig("c()"))
	assert.Empty(t, c.Callees())
}

func TestExtractInitializersAndFields(t *testing.T) {
	unit := unitOf(
		&ast.Member{Kind: ast.MemberField, Field: &ast.FieldDecl{Names: []string{"plain"}}},
		&ast.Member{Kind: ast.MemberField, Field: &ast.FieldDecl{Names: []string{"x"}, Invocations: []*ast.Invocation{call("compute")}}},
		&ast.Member{Kind: ast.MemberInitializer, Initializer: &ast.Initializer{Invocations: []*ast.Invocation{call("setup")}}},
		&ast.Member{Kind: ast.MemberInitializer, Initializer: &ast.Initializer{Static: true}},
		method("compute", nil),
		method("setup", nil),
	)

	g := Extract(unit)

	field, ok := g.Node(signature.ForFieldInitializer(1))
	require.True(t, ok, "field initializer with a local call gets its own node")
	assert.Equal(t, []signature.Signature{sig("compute()")}, Signatures(field.Callees()))

	_, ok = g.Node(signature.ForFieldInitializer(0))
	assert.False(t, ok, "fields without calls get no node")

	init0, ok := g.Node(signature.ForInitializer(0))
	require.True(t, ok)
	assert.Equal(t, []signature.Signature{sig("setup()")}, Signatures(init0.Callees()))

	_, ok = g.Node(signature.ForInitializer(1))
	assert.True(t, ok, "every initializer block gets a node")

	compute, _ := g.Node(sig("compute()"))
	assert.Empty(t, compute.Callees(), "field calls are not lumped into neighbouring methods")
}

func TestExtractSelfRecursion(t *testing.T) {
	g := Extract(unitOf(method("loop", nil, call("loop"))))
	n, _ := g.Node(sig("loop()"))
	assert.Equal(t, []*Node{n}, n.Callees())
	assert.Equal(t, []*Node{n}, n.Callers())
}

func TestExtractCollapsesIdenticalSignatures(t *testing.T) {
	unit := unitOf(
		method("f", []string{"List<String>"}),
		method("f", []string{"List<Integer>"}),
		method("g", nil, call("f", "List<String>")),
	)
	g := Extract(unit)
	assert.Equal(t, 2, g.Len())
}

func TestExtractEmptyUnit(t *testing.T) {
	assert.Zero(t, Extract(&ast.Unit{}).Len())
	assert.Zero(t, Extract(unitOf()).Len())
}

func TestExtractSubgraph(t *testing.T) {
	unit := unitOf(
		&ast.Member{Kind: ast.MemberInitializer, Initializer: &ast.Initializer{Invocations: []*ast.Invocation{call("a")}}},
		method("a", nil, call("b"), call("c")),
		method("b", nil, call("c")),
		method("c", nil),
	)

	g := ExtractSubgraph(unit, signature.NewSet(sig("a()"), sig("c()")))
	assert.Equal(t, []signature.Signature{sig("a()"), sig("c()")}, Signatures(g.Nodes()))

	a, _ := g.Node(sig("a()"))
	assert.Equal(t, []signature.Signature{sig("c()")}, Signatures(a.Callees()))

	assert.Zero(t, ExtractSubgraph(unit, nil).Len())
}

func TestClone(t *testing.T) {
	g := Extract(unitOf(
		method("a", nil, call("b"), call("c")),
		method("b", nil, call("c")),
		method("c", nil),
	))
	nodes := g.Nodes()
	clone := Clone(nodes)

	require.Len(t, clone, 3)
	for i := range nodes {
		assert.NotSame(t, nodes[i], clone[i])
		assert.True(t, nodes[i].Equal(clone[i]))
	}

	clone[0].RemoveCallee(clone[1])
	assert.Len(t, nodes[0].Callees(), 2, "clone edits do not leak into the original")
}

func TestCycles(t *testing.T) {
	g := Extract(unitOf(
		method("a", nil, call("b")),
		method("b", nil, call("a")),
		method("c", nil, call("c")),
		method("d", nil, call("a")),
	))

	cycles := Cycles(g.Nodes())
	require.Len(t, cycles, 2)
	assert.Equal(t, []signature.Signature{sig("a()"), sig("b()")}, cycles[0])
	assert.Equal(t, []signature.Signature{sig("c()")}, cycles[1])

	assert.Empty(t, Cycles(nil))
}
