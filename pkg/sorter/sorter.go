// Package sorter computes the stepdown order of a type's methods: callers
// above their callees, ties broken by a configurable stack of orderings.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/callgraph"
	"github.com/panbanda/stepdown/pkg/cluster"
	"github.com/panbanda/stepdown/pkg/comparator"
	"github.com/panbanda/stepdown/pkg/invocation"
	"github.com/panbanda/stepdown/pkg/member"
	"github.com/panbanda/stepdown/pkg/signature"
)

var (
	// ErrInvalidPreference is returned for unrecognized preference values.
	ErrInvalidPreference = errors.New("invalid preference")

	// ErrMalformed is returned when the type to sort contains syntax
	// errors. Its source must be left unchanged.
	ErrMalformed = errors.New("malformed declaration")
)

// Rewriter applies a member order to a unit's source.
type Rewriter interface {
	Rewrite(ctx context.Context, unit *ast.Unit, order *member.Comparator) error
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(ctx context.Context, unit *ast.Unit, order *member.Comparator) error

func (f RewriterFunc) Rewrite(ctx context.Context, unit *ast.Unit, order *member.Comparator) error {
	return f(ctx, unit, order)
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sorter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sorter builds method orderings for units. It holds no per-unit state.
type Sorter struct {
	prefs  Preferences
	logger *slog.Logger
}

// New validates prefs and creates a Sorter.
func New(prefs Preferences, opts ...Option) (*Sorter, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	prefs.OrderingPriorities = normalizePriorities(prefs.OrderingPriorities)
	if prefs.MemberCategoryOrder == nil {
		prefs.MemberCategoryOrder = member.DefaultCategoryOrder()
	}
	s := &Sorter{
		prefs:  prefs,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preferences returns the sorter's preferences.
func (s *Sorter) Preferences() Preferences {
	return s.prefs
}

// Plan is the result of ordering one unit.
type Plan struct {
	Unit        *ast.Unit
	Type        *ast.TypeDecl
	Graph       *callgraph.Graph
	WorkingList []*callgraph.Node
	Known       signature.Set
	Clusters    []*cluster.Node
	Methods     comparator.Comparator
	Members     *member.Comparator
	// Order lists every known signature in final order.
	Order []signature.Signature
}

// Sort plans the unit and hands the member order to rw.
func (s *Sorter) Sort(ctx context.Context, unit *ast.Unit, rw Rewriter) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := s.Plan(unit)
	if err != nil {
		return nil, err
	}
	if err := rw.Rewrite(ctx, unit, plan.Members); err != nil {
		return plan, err
	}
	return plan, nil
}

// Plan computes the method order of the unit's top-level type.
func (s *Sorter) Plan(unit *ast.Unit) (*Plan, error) {
	top := unit.TopLevel()
	if top == nil {
		return nil, fmt.Errorf("%s: %w", unit.Path, ast.ErrNoTopLevelType)
	}
	if top.Malformed() {
		s.logger.Warn("skipping type with syntax errors", "path", unit.Path, "type", top.Name)
		return nil, fmt.Errorf("%s: %w: %s", unit.Path, ErrMalformed, top.Name)
	}
	for _, m := range top.MalformedMembers() {
		s.logger.Warn("keeping member with syntax errors in place", "path", unit.Path, "member", m.Name, "line", m.Pos.Line)
	}

	graph := callgraph.Extract(unit, s.extractOptions()...)
	known := graph.Signatures()

	working := s.workingList(top, graph.Nodes(), known)
	stack, err := s.pipeline(top, working, known)
	if err != nil {
		return nil, err
	}
	var methods comparator.Comparator = stack

	var clusters []*cluster.Node
	opts := cluster.Options{GettersSetters: s.prefs.ClusterGetterSetter, Overloaded: s.prefs.ClusterOverloaded}
	if opts.Enabled() {
		clusters = cluster.Extract(top, graph, opts)
		for _, cl := range clusters {
			if cl.Len() > 1 {
				if err := s.sortCluster(unit, top, graph, cl); err != nil {
					return nil, err
				}
			}
		}
		methods = cluster.NewComparator(methods, clusters)
	}

	order := callgraph.Signatures(working)
	slices.SortStableFunc(order, methods.Compare)

	s.logger.Debug("method order computed",
		"path", unit.Path,
		"type", top.Name,
		"methods", len(order),
		"clusters", len(clusters))

	return &Plan{
		Unit:        unit,
		Type:        top,
		Graph:       graph,
		WorkingList: working,
		Known:       known,
		Clusters:    clusters,
		Methods:     methods,
		Members:     member.NewComparator(methods, known, s.prefs.MemberCategoryOrder).WithLogger(s.logger),
		Order:       order,
	}, nil
}

func (s *Sorter) extractOptions() []callgraph.Option {
	return []callgraph.Option{
		callgraph.WithThisCalls(s.prefs.ThisCalls),
		callgraph.WithLogger(s.logger),
	}
}

// sortCluster orders a cluster's members by running the priority pipeline
// over the call graph restricted to them. Clustering is not reapplied.
func (s *Sorter) sortCluster(unit *ast.Unit, top *ast.TypeDecl, graph *callgraph.Graph, cl *cluster.Node) error {
	sub := callgraph.ExtractSubgraph(unit, signature.NewSet(cl.Signatures()...), s.extractOptions()...)
	known := sub.Signatures()
	working := s.workingList(top, sub.Nodes(), known)
	stack, err := s.pipeline(top, working, known)
	if err != nil {
		return err
	}
	sorted := sortNodes(working, stack)

	members := make([]*callgraph.Node, 0, len(sorted))
	for _, n := range sorted {
		if full, ok := graph.Node(n.Signature()); ok {
			members = append(members, full)
		}
	}
	if err := cl.SetMembers(members); err != nil {
		s.logger.Warn("cluster reorder failed", "cluster", cl.Signature().String(), "error", err)
	}
	return nil
}

// workingList pre-sorts nodes to fix the start points of the invocation
// traversal and the tie order of every later stage.
func (s *Sorter) workingList(top *ast.TypeDecl, nodes []*callgraph.Node, known signature.Set) []*callgraph.Node {
	var layers []comparator.Comparator
	if s.prefs.StartpointStrategy == StartpointUser {
		layers = []comparator.Comparator{comparator.SourcePosition(top)}
	} else {
		layers = []comparator.Comparator{
			comparator.InitializerInvocation(top),
			comparator.Constructor(top),
			comparator.RootSeparation(nodes),
			comparator.AccessLevel(top),
			comparator.FanOut(nodes),
			comparator.SourcePosition(top),
		}
	}
	return sortNodes(nodes, comparator.NewStack(known, layers...))
}

// pipeline stacks one comparator per configured priority.
func (s *Sorter) pipeline(top *ast.TypeDecl, working []*callgraph.Node, known signature.Set) (*comparator.Stack, error) {
	stack := comparator.NewStack(known).WithLogger(s.logger)
	for _, p := range s.prefs.OrderingPriorities {
		layer, err := s.layer(p, top, working)
		if err != nil {
			return nil, err
		}
		stack.Add(layer)
	}
	return stack, nil
}

func (s *Sorter) layer(p Priority, top *ast.TypeDecl, working []*callgraph.Node) (comparator.Comparator, error) {
	switch p {
	case PriorityInvocation:
		var ordering invocation.Ordering = invocation.NewSimple()
		if s.prefs.RespectBeforeAfter {
			ordering = invocation.NewInterleaved()
		}
		return comparator.Invocation(working, ordering, s.prefs.InvocationStrategy), nil
	case PriorityAccessLevel:
		return comparator.AccessLevel(top), nil
	case PriorityConstructor:
		return comparator.Constructor(top), nil
	case PriorityFanOut:
		return comparator.FanOut(working), nil
	case PriorityInitializer:
		return comparator.InitializerInvocation(top), nil
	case PriorityLexical:
		return comparator.Lexical(), nil
	case PriorityRoots:
		return comparator.RootSeparation(working), nil
	case PrioritySourcePosition:
		return comparator.SourcePosition(top), nil
	case PriorityReachability:
		return comparator.NewReachability(working), nil
	case PriorityFanIn:
		return comparator.FanIn(working), nil
	case PriorityFanRatio:
		return comparator.FanRatio(working), nil
	case PriorityLeaves:
		return comparator.LeafSeparation(working), nil
	case PriorityRandom:
		return comparator.Random(working, rand.New(rand.NewSource(s.prefs.RandomSeed))), nil
	default:
		return nil, fmt.Errorf("%w: unknown ordering priority %q", ErrInvalidPreference, p)
	}
}

func sortNodes(nodes []*callgraph.Node, c comparator.Comparator) []*callgraph.Node {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b *callgraph.Node) int {
		return c.Compare(a.Signature(), b.Signature())
	})
	return out
}
