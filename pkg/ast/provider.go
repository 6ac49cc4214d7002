package ast

import (
	"context"
	"errors"
)

// ErrUnsupportedLanguage is returned when parsing a file with an unsupported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrNoTopLevelType is returned when a unit declares no named top-level type.
var ErrNoTopLevelType = errors.New("no top-level type declaration")

// Position represents a location in source code.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

// Provider abstracts the front-end that turns source files into units.
type Provider interface {
	// Parse reads and parses a file.
	Parse(ctx context.Context, path string) (*Unit, error)

	// ParseSource parses in-memory source attributed to path.
	ParseSource(ctx context.Context, path string, source []byte) (*Unit, error)

	// Close releases provider resources.
	Close()
}
