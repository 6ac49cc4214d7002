package sorter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/panbanda/stepdown/pkg/invocation"
	"github.com/panbanda/stepdown/pkg/member"
)

// Priority names one partial ordering in the method comparator stack.
type Priority string

const (
	PriorityInvocation     Priority = "INVOCATION"
	PriorityAccessLevel    Priority = "ACCESS_LEVEL"
	PriorityConstructor    Priority = "CONSTRUCTOR"
	PriorityFanOut         Priority = "FAN_OUT"
	PriorityInitializer    Priority = "INITIALIZER"
	PriorityLexical        Priority = "LEXICAL"
	PriorityRoots          Priority = "ROOTS"
	PrioritySourcePosition Priority = "SOURCE_POSITION"
	PriorityReachability   Priority = "REACHABILITY"
	PriorityFanIn          Priority = "FAN_IN"
	PriorityFanRatio       Priority = "FAN_RATIO"
	PriorityLeaves         Priority = "LEAVES"
	PriorityRandom         Priority = "RANDOM"
)

// Priorities lists every recognized priority.
var Priorities = []Priority{
	PriorityInvocation,
	PriorityAccessLevel,
	PriorityConstructor,
	PriorityFanOut,
	PriorityInitializer,
	PriorityLexical,
	PriorityRoots,
	PrioritySourcePosition,
	PriorityReachability,
	PriorityFanIn,
	PriorityFanRatio,
	PriorityLeaves,
	PriorityRandom,
}

// prioritySeparator joins priorities in their persisted form.
const prioritySeparator = "#"

// StartpointStrategy selects how the working list is pre-sorted before the
// priority stack runs.
type StartpointStrategy string

const (
	// StartpointHeuristic sorts by initializer calls, constructors, roots,
	// access level, fan-out and source position.
	StartpointHeuristic StartpointStrategy = "heuristic"
	// StartpointUser keeps the order the methods are written in.
	StartpointUser StartpointStrategy = "user"
)

// Preferences configures a Sorter.
type Preferences struct {
	OrderingPriorities  []Priority
	InvocationStrategy  invocation.Strategy
	StartpointStrategy  StartpointStrategy
	RespectBeforeAfter  bool
	ClusterGetterSetter bool
	ClusterOverloaded   bool
	// ThisCalls counts this.m() calls as local invocations.
	ThisCalls           bool
	MemberCategoryOrder member.CategoryOrder
	// RandomSeed seeds the RANDOM priority.
	RandomSeed int64
}

// DefaultPreferences returns the stepdown defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		OrderingPriorities: []Priority{
			PriorityInvocation,
			PriorityAccessLevel,
			PrioritySourcePosition,
			PriorityLexical,
		},
		InvocationStrategy:  invocation.DepthFirst,
		StartpointStrategy:  StartpointHeuristic,
		RespectBeforeAfter:  true,
		ThisCalls:           true,
		MemberCategoryOrder: member.DefaultCategoryOrder(),
	}
}

// Validate reports the first unrecognized value.
func (p Preferences) Validate() error {
	for _, pr := range p.OrderingPriorities {
		if _, err := ParsePriority(string(pr)); err != nil {
			return err
		}
	}
	if _, err := invocation.ParseStrategy(string(p.InvocationStrategy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreference, err)
	}
	if _, err := ParseStartpointStrategy(string(p.StartpointStrategy)); err != nil {
		return err
	}
	return nil
}

// ParsePriority normalizes and validates one priority name. Matching is
// case-insensitive and accepts '-' for '_'.
func ParsePriority(s string) (Priority, error) {
	norm := Priority(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, p := range Priorities {
		if p == norm {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown ordering priority %q", ErrInvalidPreference, s)
}

// normalizePriorities maps every validated priority to its canonical name.
func normalizePriorities(priorities []Priority) []Priority {
	out := make([]Priority, len(priorities))
	for i, p := range priorities {
		out[i], _ = ParsePriority(string(p))
	}
	return out
}

// ParsePriorityList validates a list of priority names.
func ParsePriorityList(names []string) ([]Priority, error) {
	out := make([]Priority, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		p, err := ParsePriority(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ParsePriorities decodes the persisted '#'-joined form.
func ParsePriorities(encoded string) ([]Priority, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	return ParsePriorityList(strings.Split(encoded, prioritySeparator))
}

// EncodePriorities produces the persisted '#'-joined form.
func EncodePriorities(priorities []Priority) string {
	parts := make([]string, len(priorities))
	for i, p := range priorities {
		parts[i] = string(p)
	}
	return strings.Join(parts, prioritySeparator)
}

// ParseStartpointStrategy validates a start point strategy name.
func ParseStartpointStrategy(s string) (StartpointStrategy, error) {
	switch StartpointStrategy(s) {
	case StartpointHeuristic, StartpointUser:
		return StartpointStrategy(s), nil
	default:
		return "", fmt.Errorf("%w: unknown start point strategy %q", ErrInvalidPreference, s)
	}
}

// Encode renders every setting that influences the result as one line,
// for use as a cache key.
func (p Preferences) Encode() string {
	var b strings.Builder
	b.WriteString("priorities=" + EncodePriorities(p.OrderingPriorities))
	b.WriteString(";invocation=" + string(p.InvocationStrategy))
	b.WriteString(";startpoint=" + string(p.StartpointStrategy))
	b.WriteString(";before-after=" + strconv.FormatBool(p.RespectBeforeAfter))
	b.WriteString(";getter-setter=" + strconv.FormatBool(p.ClusterGetterSetter))
	b.WriteString(";overloaded=" + strconv.FormatBool(p.ClusterOverloaded))
	b.WriteString(";this-calls=" + strconv.FormatBool(p.ThisCalls))
	b.WriteString(";seed=" + strconv.FormatInt(p.RandomSeed, 10))
	b.WriteString(";categories=")
	order := p.MemberCategoryOrder
	if order == nil {
		order = member.DefaultCategoryOrder()
	}
	for i, c := range member.Categories {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(c) + ":" + strconv.Itoa(order.Rank(c)))
	}
	return b.String()
}
