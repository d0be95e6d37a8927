// Package config loads vestige configuration from TOML, YAML, or JSON
// files, validating against an embedded schema before use.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for vestige.
type Config struct {
	// Detectors toggles individual finding kinds.
	Detectors DetectorsConfig `koanf:"detectors" toml:"detectors"`

	// Thresholds for auxiliary detectors.
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Naming conventions that suppress findings.
	Naming NamingConfig `koanf:"naming" toml:"naming"`

	// File exclusion patterns.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Workers is the analysis pool size; 0 means one per CPU.
	Workers int `koanf:"workers" toml:"workers"`

	// Cache settings.
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings.
	Output OutputConfig `koanf:"output" toml:"output"`
}

// DetectorsConfig controls which detectors run.
type DetectorsConfig struct {
	UnusedImports        bool `koanf:"unused_imports" toml:"unused_imports"`
	UnusedVariables      bool `koanf:"unused_variables" toml:"unused_variables"`
	DeadFunctions        bool `koanf:"dead_functions" toml:"dead_functions"`
	DeadExports          bool `koanf:"dead_exports" toml:"dead_exports"`
	CircularDependencies bool `koanf:"circular_dependencies" toml:"circular_dependencies"`
	LongFunctions        bool `koanf:"long_functions" toml:"long_functions"`
}

// ThresholdConfig defines detector thresholds.
type ThresholdConfig struct {
	LongFunctionLines int `koanf:"long_function_lines" toml:"long_function_lines"`
}

// NamingConfig defines convention-based exclusions.
type NamingConfig struct {
	// UnderscoreConvention treats leading-underscore symbols as
	// intentionally unused.
	UnderscoreConvention bool `koanf:"underscore_convention" toml:"underscore_convention"`
	// LifecycleNames extends the built-in framework entry point list.
	LifecycleNames []string `koanf:"lifecycle_names" toml:"lifecycle_names"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
	TTL     int  `koanf:"ttl" toml:"ttl"` // TTL in minutes
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, yaml, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detectors: DetectorsConfig{
			UnusedImports:        true,
			UnusedVariables:      true,
			DeadFunctions:        true,
			DeadExports:          true,
			CircularDependencies: true,
			LongFunctions:        true,
		},
		Thresholds: ThresholdConfig{
			LongFunctionLines: 80,
		},
		Naming: NamingConfig{
			UnderscoreConvention: true,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.go",
				"*.test.ts",
				"*.spec.ts",
				"*.min.js",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".vestige",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Workers: 0,
		Cache: CacheConfig{
			Enabled: true,
			TTL:     60,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file, layered over defaults. The parsed
// document is schema-validated before unmarshaling.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := validate(k.Raw()); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"vestige.toml",
		"vestige.yaml",
		"vestige.yml",
		"vestige.json",
		".vestige.toml",
		".vestige.yaml",
		".vestige.yml",
		".vestige.json",
	}
	dirs := []string{".", ".vestige"}

	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
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
