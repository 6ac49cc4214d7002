package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// promptArgument is one {{name}} placeholder of a prompt body.
type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// prompt is a workflow over the stepdown tools, read from a Markdown file
// with YAML frontmatter.
type prompt struct {
	Name        string           `yaml:"-"`
	Description string           `yaml:"description"`
	Tools       []string         `yaml:"tools"`
	Arguments   []promptArgument `yaml:"arguments"`
	Body        string           `yaml:"-"`
}

// parsePrompt reads frontmatter and body and checks that the prompt only
// names stepdown tools and only uses declared arguments.
func parsePrompt(name string, content []byte) (*prompt, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, fmt.Errorf("prompt %s: missing frontmatter", name)
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return nil, fmt.Errorf("prompt %s: unterminated frontmatter", name)
	}

	p := &prompt{Name: name}
	if err := yaml.Unmarshal(rest[:end], p); err != nil {
		return nil, fmt.Errorf("prompt %s: %w", name, err)
	}
	p.Body = strings.TrimPrefix(string(rest[end+5:]), "\n")

	if p.Description == "" {
		return nil, fmt.Errorf("prompt %s: missing description", name)
	}
	for _, t := range p.Tools {
		if !hasTool(t) {
			return nil, fmt.Errorf("prompt %s: unknown tool %q", name, t)
		}
	}
	declared := make(map[string]bool, len(p.Arguments))
	for _, a := range p.Arguments {
		declared[a.Name] = true
	}
	for _, m := range placeholder.FindAllStringSubmatch(p.Body, -1) {
		if !declared[m[1]] {
			return nil, fmt.Errorf("prompt %s: undeclared argument %q", name, m[1])
		}
	}
	return p, nil
}

// loadPrompts parses every embedded prompt.
func loadPrompts() ([]*prompt, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	var prompts []*prompt
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p, err := parsePrompt(strings.TrimSuffix(entry.Name(), ".md"), content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prompts = append(prompts, p)
	}
	return prompts, errors.Join(errs...)
}

// registerPrompts registers every valid embedded prompt under its file name.
func (s *Server) registerPrompts() {
	prompts, _ := loadPrompts()
	for _, p := range prompts {
		s.server.AddPrompt(p.definition(), p.handler())
	}
}

func (p *prompt) definition() *mcp.Prompt {
	def := &mcp.Prompt{Name: p.Name, Description: p.Description}
	for _, a := range p.Arguments {
		def.Arguments = append(def.Arguments, &mcp.PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	return def
}

// render fills the body placeholders from args, falling back to defaults.
func (p *prompt) render(args map[string]string) (string, error) {
	values := make(map[string]string, len(p.Arguments))
	for _, a := range p.Arguments {
		v := strings.TrimSpace(args[a.Name])
		if v == "" {
			if a.Required {
				return "", fmt.Errorf("prompt %s: missing argument %q", p.Name, a.Name)
			}
			v = a.Default
		}
		values[a.Name] = v
	}
	return placeholder.ReplaceAllStringFunc(p.Body, func(m string) string {
		return values[placeholder.FindStringSubmatch(m)[1]]
	}), nil
}

func (p *prompt) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		text, err := p.render(args)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: text},
				},
			},
		}, nil
	}
}
