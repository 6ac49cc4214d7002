// Package mcpserver exposes the stepdown sorter to LLM clients over the
// Model Context Protocol.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "stepdown"

// Server wraps the MCP server and registers the stepdown tools.
type Server struct {
	server *mcp.Server
}

// tool is one entry of the stepdown tool set. The server registers it and
// prompts and the registry manifest refer to it by name.
type tool struct {
	name     string
	title    string
	describe func() string
	add      func(*mcp.Server, *mcp.Tool)
}

func addTool[In any](h mcp.ToolHandlerFor[In, any]) func(*mcp.Server, *mcp.Tool) {
	return func(s *mcp.Server, t *mcp.Tool) {
		mcp.AddTool(s, t, h)
	}
}

// tools never write files.
var tools = []tool{
	{name: "order_methods", title: "Stepdown method order", describe: describeOrderMethods, add: addTool(handleOrderMethods)},
	{name: "check_order", title: "Check stepdown order", describe: describeCheckOrder, add: addTool(handleCheckOrder)},
	{name: "call_graph", title: "Local call graph", describe: describeCallGraph, add: addTool(handleCallGraph)},
}

func toolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.name
	}
	return names
}

func hasTool(name string) bool {
	for _, t := range tools {
		if t.name == name {
			return true
		}
	}
	return false
}

// NewServer creates a new MCP server with all stepdown tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	for _, t := range tools {
		t.add(s.server, &mcp.Tool{
			Name:        t.name,
			Description: t.describe(),
			Annotations: &mcp.ToolAnnotations{Title: t.title, ReadOnlyHint: true},
		})
	}
}
