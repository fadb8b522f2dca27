// Package history records past verifications in a YAML file under the state
// directory so 'ilverify-go history' can list them.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryFileName is the history file inside the state directory.
const HistoryFileName = "history.yaml"

// HistoryEntry is one verification.
type HistoryEntry struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	// Module is the module path as given on the command line.
	Module string `yaml:"module"`
	// Verdict is "passed", "failed" or the failure kind.
	Verdict  string `yaml:"verdict"`
	ExitCode int    `yaml:"exit_code"`
	Duration string `yaml:"duration"`
	// Verbosity is the level the run used.
	Verbosity   string `yaml:"verbosity,omitempty"`
	ToolVersion string `yaml:"tool_version,omitempty"`
	// Commit is the HEAD commit of the repository the command ran in.
	Commit string `yaml:"commit,omitempty"`
}

// HistoryFile is the on-disk document.
type HistoryFile struct {
	Entries []HistoryEntry `yaml:"entries"`
}

// HistoryPath returns the history file path for stateDir.
func HistoryPath(stateDir string) string {
	return filepath.Join(stateDir, HistoryFileName)
}

// LoadHistory reads the history file. A missing file is an empty history.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	data, err := os.ReadFile(HistoryPath(stateDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &HistoryFile{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history HistoryFile
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return &history, nil
}

// SaveHistory writes the history file, creating the state directory. The file
// is replaced atomically so readers never see a partial document.
func SaveHistory(stateDir string, history *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp, err := os.CreateTemp(stateDir, ".history-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing history: %w", err)
	}
	if err := os.Rename(tmpName, HistoryPath(stateDir)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// ClearHistory removes all entries.
func ClearHistory(stateDir string) error {
	if err := os.Remove(HistoryPath(stateDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing history file: %w", err)
	}
	return nil
}

// Filter returns the entries for module (all when empty), keeping only the
// last limit entries when limit > 0.
func Filter(entries []HistoryEntry, module string, limit int) []HistoryEntry {
	var result []HistoryEntry
	for _, entry := range entries {
		if module == "" || entry.Module == module {
			result = append(result, entry)
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
