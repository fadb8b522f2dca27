package verifier

import (
	"fmt"
	"path/filepath"
	"strings"
)

// frameworkGlob is the pattern ilverify expands inside the framework directory.
const frameworkGlob = "*.dll"

// CommandLine renders the ilverify arguments for display:
//
//	"<module>" -r "<frameworkDir>/*.dll"  -r "<ref>"... <flags>
//
// Every path is wrapped in double quotes and nothing is escaped. The process
// itself receives Args, never this string.
func CommandLine(modulePath, frameworkDir string, refs []ReferencePath, v Verbosity) string {
	var sb strings.Builder
	for _, ref := range refs {
		sb.WriteString(" -r ")
		sb.WriteString(quote(string(ref)))
	}
	return fmt.Sprintf("%s -r %s %s %s",
		quote(modulePath),
		quote(filepath.Join(frameworkDir, frameworkGlob)),
		sb.String(),
		strings.Join(v.Flags(), " "))
}

// Args builds the argv passed to ilverify, in the same order as
// CommandLine. Paths are passed verbatim; no quoting or escaping applies.
func Args(modulePath, frameworkDir string, refs []ReferencePath, v Verbosity) []string {
	args := make([]string, 0, 3+2*len(refs)+len(v.Flags()))
	args = append(args, modulePath, "-r", filepath.Join(frameworkDir, frameworkGlob))
	for _, ref := range refs {
		args = append(args, "-r", string(ref))
	}
	return append(args, v.Flags()...)
}

func quote(value string) string {
	return `"` + value + `"`
}
