package verifier

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/exec"
	"golang.org/x/mod/semver"
)

const (
	// DotnetCommand is the .NET host used to discover installed runtimes.
	DotnetCommand = "dotnet"
	// sharedFramework is the runtime that holds the core library.
	sharedFramework = "Microsoft.NETCore.App"
)

// Runtime is one entry of "dotnet --list-runtimes".
type Runtime struct {
	Name    string
	Version string
	// Dir is the directory holding the runtime's binaries.
	Dir string
}

// ParseRuntimes parses "dotnet --list-runtimes" output, whose lines look like
//
//	Microsoft.NETCore.App 8.0.1 [/usr/share/dotnet/shared/Microsoft.NETCore.App]
//
// Malformed lines are skipped.
func ParseRuntimes(output string) []Runtime {
	var runtimes []Runtime
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		open := strings.Index(line, "[")
		if open < 0 || !strings.HasSuffix(line, "]") {
			continue
		}
		fields := strings.Fields(line[:open])
		if len(fields) != 2 {
			continue
		}
		base := line[open+1 : len(line)-1]
		runtimes = append(runtimes, Runtime{
			Name:    fields[0],
			Version: fields[1],
			Dir:     filepath.Join(base, fields[1]),
		})
	}
	return runtimes
}

// LatestSharedFramework picks the highest Microsoft.NETCore.App version.
func LatestSharedFramework(runtimes []Runtime) (Runtime, bool) {
	var best Runtime
	found := false
	for _, rt := range runtimes {
		if rt.Name != sharedFramework || !semver.IsValid("v"+rt.Version) {
			continue
		}
		if !found || semver.Compare("v"+rt.Version, "v"+best.Version) > 0 {
			best = rt
			found = true
		}
	}
	return best, found
}

// DiscoverFrameworkDir asks the dotnet host for the newest shared framework
// directory.
func DiscoverFrameworkDir(ctx context.Context, runner exec.Runner) (string, error) {
	res, err := runner.Run(ctx, DotnetCommand, "--list-runtimes")
	if err != nil {
		return "", fmt.Errorf("listing .NET runtimes: %w", err)
	}
	if !res.Success() {
		return "", fmt.Errorf("listing .NET runtimes: %s exited with %d: %s",
			DotnetCommand, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	rt, ok := LatestSharedFramework(ParseRuntimes(res.Stdout))
	if !ok {
		return "", fmt.Errorf("no %s runtime found in %q output", sharedFramework, DotnetCommand+" --list-runtimes")
	}
	return rt.Dir, nil
}
