package mcpserver

import (
	"encoding/json"
	"strings"

	"github.com/panbanda/stepdown/pkg/config"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	registryName   = "io.github.panbanda/" + serverName
	image          = "ghcr.io/panbanda/" + serverName
	publisherMeta  = "io.modelcontextprotocol.registry/publisher-provided"
)

// Manifest is the registry entry (server.json) of the stepdown MCP server.
type Manifest struct {
	Schema      string         `json:"$schema"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Repository  *Repository    `json:"repository,omitempty"`
	Packages    []Package      `json:"packages,omitempty"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is the container image that runs `stepdown mcp`.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired,omitempty"`
	Format      string `json:"format,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// toolSet is what the publisher metadata advertises.
type toolSet struct {
	Tools   []string `json:"tools"`
	Prompts []string `json:"prompts"`
}

// GenerateManifest renders the manifest from the registered tools and
// embedded prompts.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	prompts, err := loadPrompts()
	if err != nil {
		return nil, err
	}
	set := toolSet{Tools: toolNames()}
	for _, p := range prompts {
		set.Prompts = append(set.Prompts, p.Name)
	}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        registryName,
		Description: "Orders Java methods by the stepdown rule. Tools: " + strings.Join(set.Tools, ", "),
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/" + serverName,
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   image + ":" + version,
				PackageArguments: []Argument{
					{Type: "positional", Value: "mcp"},
				},
				EnvironmentVariables: []EnvVariable{
					{
						Name:        config.EnvVar,
						Description: "Path to a stepdown.toml, .yaml or .json with sorter preferences",
						Format:      "filepath",
					},
				},
				Transport: Transport{Type: "stdio"},
			},
		},
		Meta: map[string]any{publisherMeta: set},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
