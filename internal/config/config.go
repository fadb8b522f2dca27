// Package config provides hierarchical configuration management for ilverify using koanf.
// Configuration is loaded with priority: environment variables > project config (.ilverify/config.yml)
// > user config (~/.config/ilverify/config.yml) > defaults. An explicit --config file replaces
// both the user and the project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/ilverify/internal/verifier"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "ILVERIFY_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceFile    ConfigSource = "file"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the ilverify CLI configuration
type Configuration struct {
	// VerifierPath is the ilverify executable, resolved through PATH when bare.
	VerifierPath string `koanf:"verifier_path" yaml:"verifier_path" validate:"required"`
	// Verbosity is one of quiet, normal, detailed, diagnostics.
	Verbosity string `koanf:"verbosity" yaml:"verbosity" validate:"verbosity"`
	// OutputPath is where modules are serialized before verification.
	// Empty means VerifiedAssembly.dll next to the ilverify-go binary.
	OutputPath string `koanf:"output_path" yaml:"output_path"`
	// FrameworkDir pins the .NET shared framework directory.
	// Empty means discover it with 'dotnet --list-runtimes'.
	FrameworkDir string `koanf:"framework_dir" yaml:"framework_dir"`
	// References are extra dependency modules passed with -r.
	// ILVERIFY_REFERENCES takes a path-list-separated value.
	References []string `koanf:"references" yaml:"references" validate:"dive,required"`
	// Timeout bounds one verification, e.g. "2m". 0 disables it.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" validate:"min=0"`
	// Parallel is the number of modules verified at once in batch mode.
	Parallel int `koanf:"parallel" yaml:"parallel" validate:"min=1,max=64"`
	// StateDir holds history.yaml.
	StateDir string `koanf:"state_dir" yaml:"state_dir" validate:"required"`
	// MaxHistoryEntries caps history.yaml; the oldest entries are pruned first.
	MaxHistoryEntries int `koanf:"max_history_entries" yaml:"max_history_entries" validate:"min=0"`
}

// Loaded is a configuration together with the origin of each key.
type Loaded struct {
	Config  *Configuration
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath is an explicit config file (--config). When set, the user
	// and project files are not read and the file must exist.
	ConfigPath string
	// ProjectConfigPath overrides the project config path (default: .ilverify/config.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: XDG config dir)
	UserConfigPath string
	// SkipEnv ignores ILVERIFY_* variables.
	SkipEnv bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	loaded, err := LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Loaded, error) {
	l := &loader{k: koanf.New("."), sources: map[string]ConfigSource{}}

	l.loadDefaults()

	if opts.ConfigPath != "" {
		if !fileExists(opts.ConfigPath) {
			return nil, fmt.Errorf("config file not found: %s", opts.ConfigPath)
		}
		if err := l.loadYAMLConfig(opts.ConfigPath, SourceFile); err != nil {
			return nil, err
		}
	} else {
		userPath := opts.UserConfigPath
		if userPath == "" {
			userPath, _ = UserConfigPath()
		}
		if err := l.loadYAMLConfig(userPath, SourceUser); err != nil {
			return nil, err
		}

		projectPath := opts.ProjectConfigPath
		if projectPath == "" {
			projectPath = ProjectConfigPath()
		}
		if err := l.loadYAMLConfig(projectPath, SourceProject); err != nil {
			return nil, err
		}
	}

	if !opts.SkipEnv {
		if err := l.merge(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil, SourceEnv); err != nil {
			return nil, fmt.Errorf("failed to load environment config: %w", err)
		}
	}

	cfg, err := finalizeConfig(l.k)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

type loader struct {
	k       *koanf.Koanf
	sources map[string]ConfigSource
	files   []string
}

// loadDefaults applies default configuration values
func (l *loader) loadDefaults() {
	for key, value := range GetDefaults() {
		_ = l.k.Set(key, value) // Set only fails for non-map parents; defaults are flat
		l.sources[key] = SourceDefault
	}
}

// merge loads one layer on its own so its keys can be attributed, then
// merges it over the previous layers.
func (l *loader) merge(p koanf.Provider, parser koanf.Parser, source ConfigSource) error {
	layer := koanf.New(".")
	if err := layer.Load(p, parser); err != nil {
		return err
	}
	for _, key := range layer.Keys() {
		l.sources[key] = source
	}
	return l.k.Merge(layer)
}

// loadYAMLConfig validates and loads a YAML config file. Missing files are skipped.
func (l *loader) loadYAMLConfig(path string, source ConfigSource) error {
	if !fileExists(path) {
		return nil
	}
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := l.merge(file.Provider(path), yaml.Parser(), source); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	l.files = append(l.files, path)
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Verbosity = strings.ToLower(strings.TrimSpace(cfg.Verbosity))
	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.OutputPath = expandHomePath(cfg.OutputPath)
	cfg.FrameworkDir = expandHomePath(cfg.FrameworkDir)
	for i, ref := range cfg.References {
		cfg.References[i] = expandHomePath(ref)
	}

	return &cfg, nil
}

// VerbosityLevel returns the parsed verbosity.
func (c *Configuration) VerbosityLevel() verifier.Verbosity {
	v, err := verifier.ParseVerbosity(c.Verbosity)
	if err != nil {
		return verifier.Quiet
	}
	return v
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Example: ILVERIFY_MAX_HISTORY_ENTRIES -> max_history_entries
func envTransform(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "references" {
		return key, filepath.SplitList(value)
	}
	return key, value
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
