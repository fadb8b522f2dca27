package verifier

import (
	"fmt"
	"strings"
)

// Verbosity controls how much of the external verifier's report is forwarded
// to the output writer. Levels are ordered: each includes everything the
// lower levels report.
type Verbosity int

const (
	// Quiet writes nothing.
	Quiet Verbosity = iota
	// Normal forwards the default ilverify output.
	Normal
	// Detailed adds the --statistics option.
	Detailed
	// Diagnostics adds both --verbose and --statistics.
	Diagnostics
)

var verbosityNames = map[Verbosity]string{
	Quiet:       "quiet",
	Normal:      "normal",
	Detailed:    "detailed",
	Diagnostics: "diagnostics",
}

// String returns the lower-case level name.
func (v Verbosity) String() string {
	if name, ok := verbosityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("verbosity(%d)", int(v))
}

// Flags returns the ilverify options selected by the level.
func (v Verbosity) Flags() []string {
	switch v {
	case Detailed:
		return []string{"--statistics"}
	case Diagnostics:
		return []string{"--verbose", "--statistics"}
	default:
		return nil
	}
}

// ParseVerbosity parses a level name, case-insensitively.
func ParseVerbosity(s string) (Verbosity, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for v, name := range verbosityNames {
		if name == needle {
			return v, nil
		}
	}
	return Quiet, fmt.Errorf("invalid verbosity %q: valid values are %s", s, strings.Join(VerbosityNames(), ", "))
}

// VerbosityNames returns the level names in ascending order.
func VerbosityNames() []string {
	return []string{Quiet.String(), Normal.String(), Detailed.String(), Diagnostics.String()}
}
