package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// showCommand builds an isolated "show" command reading the given config file.
func showCommand(t *testing.T, path string, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "show", RunE: runConfigShow}
	cmd.Flags().String(shared.ConfigFlagName, "", "")
	cmd.Flags().Bool("sources", false, "")
	cmd.SetArgs(append([]string{"--config", path}, args...))

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func TestRunConfigShow_YAMLOutput(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "verbosity: detailed\ntimeout: 90s\nreferences: [/refs/A.dll]\n")
	cmd, buf := showCommand(t, path)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "# Configuration Sources")
	assert.Contains(t, out, path)

	var view configView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "1m30s", view.Timeout)
	assert.Equal(t, []string{"/refs/A.dll"}, view.References)
	assert.Equal(t, "ilverify", view.VerifierPath)
}

func TestRunConfigShow_Sources(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "parallel: 2\n")
	cmd, buf := showCommand(t, path, "--sources")
	require.NoError(t, cmd.Execute())

	lines := map[string]string{}
	for _, line := range strings.Split(buf.String(), "\n") {
		if fields := strings.Fields(line); len(fields) >= 3 && !strings.HasPrefix(line, "#") {
			lines[strings.TrimSuffix(fields[0], ":")] = line
		}
	}
	require.Len(t, lines, len(config.KnownKeys))
	assert.Contains(t, lines["parallel"], "(file)")
	assert.Contains(t, lines["output_path"], `""`)
}

func TestRunConfigShow_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "parallel: 0\n")
	cmd, _ := showCommand(t, path)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArguments, shared.ExitCode(err))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   any
		want string
	}{
		"nil":          {in: nil, want: `""`},
		"empty string": {in: "", want: `""`},
		"string":       {in: "quiet", want: "quiet"},
		"int":          {in: 4, want: "4"},
		"list":         {in: []any{"a", "b"}, want: "[a, b]"},
		"empty list":   {in: []any{}, want: "[]"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestNewConfigView(t *testing.T) {
	t.Parallel()

	view := newConfigView(&config.Configuration{Timeout: 2 * time.Minute})
	assert.Equal(t, "2m0s", view.Timeout)
	assert.NotNil(t, view.References)
}

func TestPrintKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printKeys(&buf)
	out := buf.String()
	for key := range config.KnownKeys {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "enum (quiet|normal|detailed|diagnostics)")
}

func TestInitializeConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing    string
		force       bool
		wantWritten bool
		wantOutput  string
	}{
		"creates new":           {wantWritten: true, wantOutput: "created"},
		"keeps existing":        {existing: "parallel: 2\n", wantWritten: false, wantOutput: "exists"},
		"overwrites with force": {existing: "parallel: 2\n", force: true, wantWritten: true, wantOutput: "overwritten"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", "config.yml")
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o644))
			}

			var buf bytes.Buffer
			written, err := initializeConfig(&buf, path, tt.force)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWritten, written)
			assert.Contains(t, buf.String(), tt.wantOutput)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			if tt.wantWritten {
				assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))
			} else {
				assert.Equal(t, tt.existing, string(data))
			}
		})
	}
}

func TestInitializedConfigLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, writeDefaultConfig(path))

	loaded, err := config.LoadWithOptions(config.LoadOptions{ConfigPath: path, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Config.Parallel)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "root"}
	root.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"})
	Register(root)

	names := map[string]bool{}
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"show": true, "keys": true, "init": true}, names)
	assert.NotNil(t, showCmd.Flags().Lookup("sources"))
	assert.NotNil(t, initCmd.Flags().Lookup("project"))
}
