package cluster

import (
	"strings"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/callgraph"
	"github.com/panbanda/stepdown/pkg/signature"
)

const (
	getterPrefix = "get"
	setterPrefix = "set"
)

// Options selects which methods are grouped together.
type Options struct {
	// GettersSetters pairs setX(T) with T getX().
	GettersSetters bool
	// Overloaded groups methods sharing a name.
	Overloaded bool
}

// Enabled reports whether any grouping is requested.
func (o Options) Enabled() bool {
	return o.GettersSetters || o.Overloaded
}

type declared struct {
	method *ast.MethodDecl
	node   *callgraph.Node
}

// Extract groups the methods of t that appear in g. Every such method ends
// up in exactly one cluster; methods that group with nothing form a
// cluster of one. Clusters are returned in the source order of their seeds.
func Extract(t *ast.TypeDecl, g *callgraph.Graph, opts Options) []*Node {
	var methods []declared
	for _, m := range t.Methods() {
		if n, ok := g.Node(signature.FromMethod(m)); ok {
			methods = append(methods, declared{method: m, node: n})
		}
	}

	clustered := make(map[*callgraph.Node]bool)
	var clusters []*Node
	for _, seed := range methods {
		if clustered[seed.node] {
			continue
		}
		clustered[seed.node] = true
		members := []*callgraph.Node{seed.node}

		var joins func(other *ast.MethodDecl) bool
		switch {
		case opts.GettersSetters && isSetter(seed.method):
			joins = func(other *ast.MethodDecl) bool {
				return isGetter(other) && pairs(seed.method, other)
			}
		case opts.GettersSetters && isGetter(seed.method):
			joins = func(other *ast.MethodDecl) bool {
				return isSetter(other) && pairs(other, seed.method)
			}
		case opts.Overloaded:
			joins = func(other *ast.MethodDecl) bool {
				return other.Name == seed.method.Name
			}
		}

		if joins != nil {
			for _, other := range methods {
				if clustered[other.node] || !joins(other.method) {
					continue
				}
				clustered[other.node] = true
				members = append(members, other.node)
			}
		}

		c, _ := NewNode(members)
		clusters = append(clusters, c)
	}
	return clusters
}

func isSetter(m *ast.MethodDecl) bool {
	return !m.Constructor && hasAccessorPrefix(m.Name, setterPrefix) && len(m.Params) == 1
}

func isGetter(m *ast.MethodDecl) bool {
	return !m.Constructor && hasAccessorPrefix(m.Name, getterPrefix) && len(m.Params) == 0
}

// hasAccessorPrefix requires something after the prefix: a bare get() or
// set(x) is not an accessor.
func hasAccessorPrefix(name, prefix string) bool {
	return len(name) > len(prefix) && strings.HasPrefix(name, prefix)
}

// pairs reports whether setter and getter access the same property: equal
// suffixes, and the getter returns the setter's parameter type.
func pairs(setter, getter *ast.MethodDecl) bool {
	return setter.Name[len(setterPrefix):] == getter.Name[len(getterPrefix):] &&
		getter.ReturnType == setter.Params[0].Type
}
