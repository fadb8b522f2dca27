package verifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// executable is swapped in tests.
var executable = os.Executable

// DefaultOutputDir returns the directory holding the running executable.
// Artifacts land there regardless of the working directory.
func DefaultOutputDir() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locating running executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolveOutputPath maps a configured output path to the artifact location:
//
//	"" or blank  -> <DefaultOutputDir>/VerifiedAssembly.dll
//	absolute     -> unchanged
//	relative     -> <DefaultOutputDir>/<configured>
func ResolveOutputPath(configured string) (string, error) {
	blank := strings.TrimSpace(configured) == ""
	if !blank && filepath.IsAbs(configured) {
		return configured, nil
	}

	dir, err := DefaultOutputDir()
	if err != nil {
		return "", err
	}
	if blank {
		return filepath.Join(dir, DefaultModuleName+DefaultExtension), nil
	}
	return filepath.Join(dir, configured), nil
}
