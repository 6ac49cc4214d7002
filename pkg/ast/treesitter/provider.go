package treesitter

import (
	"context"
	"fmt"
	"os"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/parser"
)

// Provider implements ast.Provider for Java using tree-sitter.
// A Provider owns one parser and is not safe for concurrent use.
type Provider struct {
	parser *parser.Parser
}

// New creates a new tree-sitter based provider.
func New() *Provider {
	return &Provider{
		parser: parser.New(),
	}
}

// Parse reads a Java file and builds its syntax-tree view.
func (p *Provider) Parse(ctx context.Context, path string) (*ast.Unit, error) {
	if parser.DetectLanguage(path) != parser.LangJava {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnsupportedLanguage, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(ctx, path, source)
}

// ParseSource builds the syntax-tree view of in-memory Java source.
func (p *Provider) ParseSource(ctx context.Context, path string, source []byte) (*ast.Unit, error) {
	result, err := p.parser.Parse(ctx, source, parser.LangJava, path)
	if err != nil {
		return nil, err
	}
	return build(result), nil
}

// Close releases parser resources.
func (p *Provider) Close() {
	p.parser.Close()
}

var _ ast.Provider = (*Provider)(nil)
