package callgraph

import (
	"io"
	"log/slog"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/signature"
)

// Option configures extraction.
type Option func(*extractor)

// WithThisCalls controls whether calls through a bare this. receiver count
// as local calls. They do by default.
func WithThisCalls(local bool) Option {
	return func(e *extractor) {
		e.thisCalls = local
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extract builds the call graph of the unit's top-level type. Every method,
// constructor and initializer block becomes a node; field declarations
// become a node only once their initializer calls a local method. Only
// unqualified calls bound to a method of the top-level type become edges.
func Extract(unit *ast.Unit, opts ...Option) *Graph {
	return extract(unit, nil, opts)
}

// ExtractSubgraph is Extract restricted to the methods in filter: other
// declarations, initializers and calls to methods outside filter are ignored.
func ExtractSubgraph(unit *ast.Unit, filter signature.Set, opts ...Option) *Graph {
	if filter == nil {
		filter = signature.Set{}
	}
	return extract(unit, filter, opts)
}

func extract(unit *ast.Unit, filter signature.Set, opts []Option) *Graph {
	e := &extractor{
		graph:     New(),
		filter:    filter,
		thisCalls: true,
		field:     -1,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	top := unit.TopLevel()
	if top == nil {
		return e.graph
	}
	e.owner = top.Name
	ast.Walk(top, e)

	e.logger.Debug("call graph extracted",
		"type", e.owner,
		"nodes", e.graph.Len(),
		"edges", e.graph.Edges(),
		"subgraph", filter != nil)
	return e.graph
}

// extractor is the ast.Visitor that records caller -> callee edges.
type extractor struct {
	graph     *Graph
	owner     string
	filter    signature.Set
	thisCalls bool
	logger    *slog.Logger

	// current is the caller for the invocations being visited; nil while
	// inside a skipped declaration.
	current *Node
	// field is the index of the field declaration being visited, whose
	// node is created on its first accepted call.
	field int
}

func (e *extractor) admits(sig signature.Signature) bool {
	return e.filter == nil || e.filter.Contains(sig)
}

func (e *extractor) VisitMethod(m *ast.MethodDecl) bool {
	e.field = -1
	sig := signature.FromMethod(m)
	if !e.admits(sig) {
		e.current = nil
		return false
	}
	e.current = e.graph.Obtain(sig)
	return true
}

func (e *extractor) VisitInitializer(_ *ast.Initializer, i int) bool {
	e.field = -1
	if e.filter != nil {
		e.current = nil
		return false
	}
	e.current = e.graph.Obtain(signature.ForInitializer(i))
	return true
}

func (e *extractor) VisitField(f *ast.FieldDecl, i int) bool {
	e.current = nil
	e.field = -1
	if e.filter != nil || len(f.Invocations) == 0 {
		return false
	}
	e.field = i
	return true
}

func (e *extractor) VisitInvocation(inv *ast.Invocation) {
	if !e.isLocal(inv) {
		return
	}
	sig, ok := signature.FromInvocation(inv)
	if !ok || !e.admits(sig) {
		return
	}
	caller := e.caller()
	if caller == nil {
		return
	}
	caller.AddCallee(e.graph.Obtain(sig))
}

func (e *extractor) isLocal(inv *ast.Invocation) bool {
	switch inv.Qualifier {
	case ast.QualifierNone:
	case ast.QualifierThis:
		if !e.thisCalls {
			return false
		}
	default:
		return false
	}
	return inv.Binding != nil && inv.Binding.DeclaringType == e.owner
}

func (e *extractor) caller() *Node {
	if e.current == nil && e.field >= 0 {
		e.current = e.graph.Obtain(signature.ForFieldInitializer(e.field))
	}
	return e.current
}
