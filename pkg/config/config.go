package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/stepdown/pkg/invocation"
	"github.com/panbanda/stepdown/pkg/member"
	"github.com/panbanda/stepdown/pkg/sorter"
)

// Config holds all configuration options for stepdown.
type Config struct {
	// Method ordering
	Sorter SorterConfig `koanf:"sorter" toml:"sorter" json:"sorter" yaml:"sorter"`

	// Placement of non-method members
	Members MembersConfig `koanf:"members" toml:"members" json:"members" yaml:"members"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" json:"exclude" yaml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" json:"cache" yaml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" json:"output" yaml:"output"`
}

// SorterConfig mirrors sorter.Preferences in file form.
type SorterConfig struct {
	Priorities          []string `koanf:"priorities" toml:"priorities" json:"priorities" yaml:"priorities"`
	InvocationStrategy  string   `koanf:"invocation_strategy" toml:"invocation_strategy" json:"invocation_strategy" yaml:"invocation_strategy"`
	StartpointStrategy  string   `koanf:"startpoint_strategy" toml:"startpoint_strategy" json:"startpoint_strategy" yaml:"startpoint_strategy"`
	RespectBeforeAfter  bool     `koanf:"respect_before_after" toml:"respect_before_after" json:"respect_before_after" yaml:"respect_before_after"`
	ClusterGetterSetter bool     `koanf:"cluster_getter_setter" toml:"cluster_getter_setter" json:"cluster_getter_setter" yaml:"cluster_getter_setter"`
	ClusterOverloaded   bool     `koanf:"cluster_overloaded" toml:"cluster_overloaded" json:"cluster_overloaded" yaml:"cluster_overloaded"`
	ThisCalls           bool     `koanf:"this_calls" toml:"this_calls" json:"this_calls" yaml:"this_calls"`
	RandomSeed          int64    `koanf:"random_seed" toml:"random_seed" json:"random_seed" yaml:"random_seed"`
	Workers             int      `koanf:"workers" toml:"workers" json:"workers" yaml:"workers"` // 0 means 2x NumCPU
}

// MembersConfig lists member categories first to last. Empty keeps the
// built-in order.
type MembersConfig struct {
	Order []string `koanf:"order" toml:"order" json:"order" yaml:"order"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns" yaml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs" yaml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore" yaml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" json:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" json:"format" yaml:"format"` // text, json, markdown, yaml, toon
	Color   bool   `koanf:"color" toml:"color" json:"color" yaml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" json:"verbose" yaml:"verbose"`
}

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "STEPDOWN_CONFIG"

// FileNames are the config file names searched for, in order.
var FileNames = []string{
	"stepdown.toml",
	"stepdown.yaml",
	"stepdown.yml",
	"stepdown.json",
	".stepdown.toml",
	".stepdown.yaml",
	".stepdown.yml",
	".stepdown.json",
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	prefs := sorter.DefaultPreferences()
	priorities := make([]string, len(prefs.OrderingPriorities))
	for i, p := range prefs.OrderingPriorities {
		priorities[i] = string(p)
	}
	return &Config{
		Sorter: SorterConfig{
			Priorities:         priorities,
			InvocationStrategy: string(prefs.InvocationStrategy),
			StartpointStrategy: string(prefs.StartpointStrategy),
			RespectBeforeAfter: prefs.RespectBeforeAfter,
			ThisCalls:          prefs.ThisCalls,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"package-info.java",
				"module-info.java",
			},
			Dirs: []string{
				".git",
				".stepdown",
				"build",
				"target",
				"out",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".stepdown/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load loads configuration from a file, validating it against the schema
// before applying it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := Validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if _, err := cfg.Preferences(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file in dir or its .stepdown directory.
func Find(dir string) (string, bool) {
	for _, sub := range []string{"", ".stepdown"} {
		for _, name := range FileNames {
			path := filepath.Join(dir, sub, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// Resolve loads path, or the config found in the working directory when
// path is empty. It returns the file used, empty for defaults.
func Resolve(path string) (*Config, string, error) {
	if path == "" {
		found, ok := Find(".")
		if !ok {
			return DefaultConfig(), "", nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	cfg, _, err := Resolve("")
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Preferences converts the sorter section into sorter preferences.
func (c *Config) Preferences() (sorter.Preferences, error) {
	priorities, err := sorter.ParsePriorityList(c.Sorter.Priorities)
	if err != nil {
		return sorter.Preferences{}, err
	}
	strategy, err := invocation.ParseStrategy(c.Sorter.InvocationStrategy)
	if err != nil {
		return sorter.Preferences{}, fmt.Errorf("%w: %v", sorter.ErrInvalidPreference, err)
	}
	startpoint, err := sorter.ParseStartpointStrategy(c.Sorter.StartpointStrategy)
	if err != nil {
		return sorter.Preferences{}, err
	}
	order, err := member.ParseCategoryOrder(c.Members.Order)
	if err != nil {
		return sorter.Preferences{}, fmt.Errorf("%w: %v", sorter.ErrInvalidPreference, err)
	}

	return sorter.Preferences{
		OrderingPriorities:  priorities,
		InvocationStrategy:  strategy,
		StartpointStrategy:  startpoint,
		RespectBeforeAfter:  c.Sorter.RespectBeforeAfter,
		ClusterGetterSetter: c.Sorter.ClusterGetterSetter,
		ClusterOverloaded:   c.Sorter.ClusterOverloaded,
		ThisCalls:           c.Sorter.ThisCalls,
		MemberCategoryOrder: order,
		RandomSeed:          c.Sorter.RandomSeed,
	}, nil
}

// ShouldExclude checks if a path should be excluded from sorting.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
