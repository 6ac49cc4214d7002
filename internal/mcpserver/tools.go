package mcpserver

import (
	"context"
	"errors"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/stepdown/internal/output"
	"github.com/panbanda/stepdown/internal/rewrite"
	"github.com/panbanda/stepdown/internal/scanner"
	"github.com/panbanda/stepdown/internal/service/sorting"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/panbanda/stepdown/pkg/sorter"
)

// Common input structures for tools

// PathsInput is the base input for tools that scan files.
type PathsInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Java files or directories. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// SorterInput overrides the configured sorter preferences.
type SorterInput struct {
	Priorities          []string `json:"priorities,omitempty" jsonschema:"Ordering priorities, most significant first, e.g. INVOCATION, ACCESS_LEVEL, LEXICAL."`
	Strategy            string   `json:"strategy,omitempty" jsonschema:"Invocation strategy: depth-first (default) or breadth-first."`
	ClusterGetterSetter bool     `json:"cluster_getter_setter,omitempty" jsonschema:"Keep getters and setters of the same property together."`
	ClusterOverloaded   bool     `json:"cluster_overloaded,omitempty" jsonschema:"Keep overloaded methods together."`
}

// OrderInput selects either in-memory source or files on disk.
type OrderInput struct {
	PathsInput
	SorterInput
	Source string `json:"source,omitempty" jsonschema:"Java source to order instead of reading paths."`
	Path   string `json:"path,omitempty" jsonschema:"File name reported for source. Defaults to Input.java."`
}

// CheckInput checks files without rewriting them.
type CheckInput struct {
	PathsInput
	SorterInput
}

// GraphInput selects one file or in-memory source.
type GraphInput struct {
	SorterInput
	Path   string `json:"path,omitempty" jsonschema:"Java file to read, or the name reported for source."`
	Source string `json:"source,omitempty" jsonschema:"Java source to analyze instead of reading path."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, markdown, or mermaid."`
}

// Helper functions

func getPaths(input PathsInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "yaml", "yml":
		return output.FormatYAML
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatMarkdown {
		out, err := output.Encode(data, output.FormatTOON)
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "```", nil
	}
	out, err := output.Encode(data, format)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// loadConfig resolves the config named by STEPDOWN_CONFIG or found in the
// working directory, and applies per-call overrides.
func loadConfig(input SorterInput) (*config.Config, error) {
	cfg, _, err := config.Resolve(os.Getenv(config.EnvVar))
	if err != nil {
		return nil, err
	}
	if len(input.Priorities) > 0 {
		cfg.Sorter.Priorities = input.Priorities
	}
	if input.Strategy != "" {
		cfg.Sorter.InvocationStrategy = input.Strategy
	}
	if input.ClusterGetterSetter {
		cfg.Sorter.ClusterGetterSetter = true
	}
	if input.ClusterOverloaded {
		cfg.Sorter.ClusterOverloaded = true
	}
	return cfg, nil
}

func newService(input SorterInput) (*sorting.Service, *config.Config, error) {
	cfg, err := loadConfig(input)
	if err != nil {
		return nil, nil, err
	}
	svc, err := sorting.New(sorting.WithConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func scan(cfg *config.Config, input PathsInput) ([]string, error) {
	files, err := scanner.NewScanner(cfg).ScanPaths(getPaths(input))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no Java files found")
	}
	return files, nil
}

// Tool handlers

func handleOrderMethods(ctx context.Context, req *mcp.CallToolRequest, input OrderInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)
	svc, cfg, err := newService(input.SorterInput)
	if err != nil {
		return toolError(err.Error())
	}

	if input.Source != "" {
		path := input.Path
		if path == "" {
			path = "Input.java"
		}
		plan, err := svc.PlanSource(ctx, path, []byte(input.Source))
		if err != nil {
			return toolError(err.Error())
		}
		res, err := sorting.Order(plan)
		if err != nil {
			return toolError(err.Error())
		}
		return toolResult(res, format)
	}

	files, err := scan(cfg, input.PathsInput)
	if err != nil {
		return toolError(err.Error())
	}

	out := struct {
		Files  []*sorting.OrderResult `json:"files" yaml:"files" toon:"files"`
		Errors []string               `json:"errors,omitempty" yaml:"errors,omitempty" toon:"errors"`
	}{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return toolError(err.Error())
		}
		plan, err := svc.Plan(ctx, path)
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		res, err := sorting.Order(plan)
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		out.Files = append(out.Files, res)
	}
	return toolResult(out, format)
}

func handleCheckOrder(ctx context.Context, req *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)
	svc, cfg, err := newService(input.SorterInput)
	if err != nil {
		return toolError(err.Error())
	}

	files, err := scan(cfg, input.PathsInput)
	if err != nil {
		return toolError(err.Error())
	}

	summary, errs := svc.Run(ctx, files, sorting.RunOptions{Mode: rewrite.ModeCheck, Workers: cfg.Sorter.Workers})
	out := struct {
		Summary *sorting.Summary `json:"summary" yaml:"summary" toon:"summary"`
		Clean   bool             `json:"clean" yaml:"clean" toon:"clean"`
		Errors  []string         `json:"errors,omitempty" yaml:"errors,omitempty" toon:"errors"`
	}{Summary: summary, Clean: summary.Clean()}
	if errs != nil {
		for _, e := range errs.Errors {
			out.Errors = append(out.Errors, e.Error())
		}
	}
	return toolResult(out, format)
}

func handleCallGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	svc, _, err := newService(input.SorterInput)
	if err != nil {
		return toolError(err.Error())
	}

	var plan *sorter.Plan
	switch {
	case input.Source != "":
		path := input.Path
		if path == "" {
			path = "Input.java"
		}
		plan, err = svc.PlanSource(ctx, path, []byte(input.Source))
	case input.Path != "":
		plan, err = svc.Plan(ctx, input.Path)
	default:
		return toolError("path or source is required")
	}
	if err != nil {
		return toolError(err.Error())
	}

	graph := sorting.Graph(plan)
	if input.Format == "mermaid" {
		return textResult(graph.Mermaid()), nil, nil
	}
	return toolResult(graph, getFormat(input.Format))
}
