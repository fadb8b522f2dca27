// Package config provides the CLI configuration commands: show, keys and init.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/config"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ilverify-go configuration",
	Long: `Manage ilverify-go configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Command flags
  2. Environment variables (ILVERIFY_*)
  3. Project config (.ilverify/config.yml)
  4. User config (~/.config/ilverify/config.yml)
  5. Built-in defaults

--config <file> replaces both config files.`,
	Example: `  # Show the effective configuration
  ilverify-go config show

  # Show where each value comes from
  ilverify-go config show --sources

  # Create a project config
  ilverify-go config init --project`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration as YAML",
	RunE:  runConfigShow,
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Run: func(cmd *cobra.Command, args []string) {
		printKeys(cmd.OutOrStdout())
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetBool("project")
		force, _ := cmd.Flags().GetBool("force")
		path, err := getConfigPath(project)
		if err != nil {
			return err
		}
		_, err = initializeConfig(cmd.OutOrStdout(), path, force)
		return err
	},
}

// Register adds the config command tree to root.
func Register(root *cobra.Command) {
	configCmd.GroupID = shared.GroupConfiguration
	showCmd.Flags().Bool("sources", false, "Show the source of each value")
	initCmd.Flags().Bool("project", false, "Write .ilverify/config.yml instead of the user config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(showCmd, keysCmd, initCmd)
	root.AddCommand(configCmd)
}

// configView is the printable form of the configuration. Durations are kept
// as strings so they round-trip through the config file.
type configView struct {
	VerifierPath      string   `yaml:"verifier_path"`
	Verbosity         string   `yaml:"verbosity"`
	OutputPath        string   `yaml:"output_path"`
	FrameworkDir      string   `yaml:"framework_dir"`
	References        []string `yaml:"references"`
	Timeout           string   `yaml:"timeout"`
	Parallel          int      `yaml:"parallel"`
	StateDir          string   `yaml:"state_dir"`
	MaxHistoryEntries int      `yaml:"max_history_entries"`
}

func newConfigView(c *config.Configuration) configView {
	refs := c.References
	if refs == nil {
		refs = []string{}
	}
	return configView{
		VerifierPath:      c.VerifierPath,
		Verbosity:         c.Verbosity,
		OutputPath:        c.OutputPath,
		FrameworkDir:      c.FrameworkDir,
		References:        refs,
		Timeout:           c.Timeout.String(),
		Parallel:          c.Parallel,
		StateDir:          c.StateDir,
		MaxHistoryEntries: c.MaxHistoryEntries,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loaded, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}
	withSources, _ := cmd.Flags().GetBool("sources")
	return showConfig(cmd.OutOrStdout(), loaded, withSources)
}

func showConfig(out io.Writer, loaded *config.Loaded, withSources bool) error {
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(out, dim("# Configuration Sources"))
	if len(loaded.Files) == 0 {
		fmt.Fprintln(out, dim("#   (defaults and environment only)"))
	}
	for _, f := range loaded.Files {
		fmt.Fprintln(out, dim("#   "+f))
	}

	data, err := yaml.Marshal(newConfigView(loaded.Config))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if !withSources {
		_, err = out.Write(data)
		return err
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("reading back config: %w", err)
	}
	for _, key := range config.SortedKeys() {
		source := loaded.Sources[key]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(out, "%-20s %-32s %s\n", key+":", formatValue(values[key]), dim("("+string(source)+")"))
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return `""`
	case string:
		if val == "" {
			return `""`
		}
		return val
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

func printKeys(out io.Writer) {
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, key := range config.SortedKeys() {
		schema, err := config.GetKeySchema(key)
		if err != nil {
			continue
		}
		kind := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			kind += " (" + strings.Join(schema.AllowedValues, "|") + ")"
		}
		fmt.Fprintf(out, "%s  %s\n    %s\n", cyan(key), kind, schema.Description)
	}
}

// getConfigPath returns the user or project config path.
func getConfigPath(project bool) (string, error) {
	if project {
		return config.ProjectConfigPath(), nil
	}
	configPath, err := config.UserConfigPath()
	if err != nil {
		cfgErr := clierrors.NewConfigError("cannot locate the user config directory",
			"Set HOME or XDG_CONFIG_HOME",
			"Or write a project config with 'ilverify-go config init --project'")
		cfgErr.Cause = err
		return "", cfgErr
	}
	return configPath, nil
}

// initializeConfig writes the default template to configPath. It reports
// whether a file was written.
func initializeConfig(out io.Writer, configPath string, force bool) (bool, error) {
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	_, statErr := os.Stat(configPath)
	exists := statErr == nil

	if exists && !force {
		fmt.Fprintf(out, "%s Config exists at %s (use --force to overwrite)\n", green("✓"), dim(configPath))
		return false, nil
	}

	if err := writeDefaultConfig(configPath); err != nil {
		return false, fmt.Errorf("writing default config: %w", err)
	}

	verb := "created"
	if exists {
		verb = "overwritten"
	}
	fmt.Fprintf(out, "%s Config %s at %s\n", green("✓"), verb, dim(configPath))
	return true, nil
}

// writeDefaultConfig writes the default configuration to the given path
func writeDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
