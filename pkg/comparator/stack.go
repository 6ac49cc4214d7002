package comparator

import (
	"io"
	"log/slog"

	"github.com/panbanda/stepdown/pkg/signature"
)

// Stack combines comparators in priority order: the first layer with an
// opinion decides. Signatures outside the known set compare equal.
type Stack struct {
	known  signature.Set
	layers []Comparator
	logger *slog.Logger
}

// NewStack creates a stack over the known signatures.
func NewStack(known signature.Set, layers ...Comparator) *Stack {
	return &Stack{
		known:  known,
		layers: layers,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger that reports exhausted comparisons.
func (s *Stack) WithLogger(logger *slog.Logger) *Stack {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Add appends c as the lowest-priority layer.
func (s *Stack) Add(c Comparator) {
	s.layers = append(s.layers, c)
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layers returns the names of the layers in priority order.
func (s *Stack) Layers() []string {
	names := make([]string, len(s.layers))
	for i, c := range s.layers {
		names[i] = NameOf(c)
	}
	return names
}

func (s *Stack) Name() string {
	return "stack"
}

func (s *Stack) Compare(a, b signature.Signature) int {
	if !s.known.Contains(a) || !s.known.Contains(b) {
		return 0
	}
	for _, layer := range s.layers {
		if c := layer.Compare(a, b); c != 0 {
			return c
		}
	}
	if a != b {
		s.logger.Warn("no ordering between methods", "a", a.String(), "b", b.String(), "layers", len(s.layers))
	}
	return 0
}
