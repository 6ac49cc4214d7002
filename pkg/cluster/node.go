// Package cluster groups methods that belong together, such as overloads
// and getter/setter pairs, so they can be ordered as one unit.
package cluster

import (
	"errors"
	"slices"

	"github.com/panbanda/stepdown/pkg/callgraph"
	"github.com/panbanda/stepdown/pkg/signature"
)

// ErrEmpty is returned when a cluster is created without members.
var ErrEmpty = errors.New("cluster has no members")

// Node is a group of call graph nodes ordered as one. Its signature is the
// first member's; its callers and callees are the union of its members'.
type Node struct {
	members []*callgraph.Node
	callers []*callgraph.Node
	callees []*callgraph.Node
}

// NewNode creates a cluster from at least one member.
func NewNode(members []*callgraph.Node) (*Node, error) {
	c := &Node{}
	if err := c.SetMembers(members); err != nil {
		return nil, err
	}
	return c, nil
}

// Signature returns the signature of the main member.
func (c *Node) Signature() signature.Signature {
	return c.members[0].Signature()
}

// Members returns the constituent nodes in cluster order.
func (c *Node) Members() []*callgraph.Node {
	return slices.Clone(c.members)
}

// Len returns the number of members.
func (c *Node) Len() int {
	return len(c.members)
}

// SetMembers replaces the members and recomputes the merged edges.
func (c *Node) SetMembers(members []*callgraph.Node) error {
	if len(members) == 0 {
		return ErrEmpty
	}
	c.members = slices.Clone(members)
	c.callers, c.callees = nil, nil
	for _, m := range members {
		c.callers = appendUnique(c.callers, m.Callers()...)
		c.callees = appendUnique(c.callees, m.Callees()...)
	}
	return nil
}

// Callers returns the merged callers of all members.
func (c *Node) Callers() []*callgraph.Node {
	return c.callers
}

// Callees returns the merged callees of all members.
func (c *Node) Callees() []*callgraph.Node {
	return c.callees
}

// AddCallee is not supported: clusters are read-only views of their members.
func (c *Node) AddCallee(*callgraph.Node) {
	panic("cluster: AddCallee is not supported on a cluster node")
}

// RemoveCallee drops callee from the merged callee list only.
func (c *Node) RemoveCallee(callee *callgraph.Node) bool {
	i := slices.Index(c.callees, callee)
	if i < 0 {
		return false
	}
	c.callees = slices.Delete(c.callees, i, i+1)
	return true
}

// Signatures returns the member signatures in cluster order.
func (c *Node) Signatures() []signature.Signature {
	return callgraph.Signatures(c.members)
}

func appendUnique(dst []*callgraph.Node, nodes ...*callgraph.Node) []*callgraph.Node {
	for _, n := range nodes {
		if !slices.Contains(dst, n) {
			dst = append(dst, n)
		}
	}
	return dst
}
