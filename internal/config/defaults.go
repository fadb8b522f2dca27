package config

import "github.com/ariel-frischer/ilverify/internal/verifier"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# ilverify Configuration
# See 'ilverify-go config keys' for all options

# Verifier settings
verifier_path: ilverify               # ilverify executable (PATH lookup when bare)
verbosity: quiet                      # quiet | normal | detailed | diagnostics
framework_dir: ""                     # .NET shared framework dir (empty = dotnet --list-runtimes)
references: []                        # Extra dependency modules passed with -r

# Output settings
output_path: ""                       # Serialized module path (empty = VerifiedAssembly.dll next to the binary)

# Execution settings
timeout: 0s                           # Per-verification timeout, e.g. 2m (0 = no timeout)
parallel: 4                           # Modules verified at once in batch mode (1-64)

# History settings
state_dir: ~/.ilverify/state          # Directory for history.yaml
max_history_entries: 500              # Max verification history entries to retain
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"verifier_path": verifier.DefaultVerifierCommand,
		"verbosity":     verifier.Quiet.String(),
		"output_path":   "",
		"framework_dir": "",
		"references":    []string{},
		// timeout: "0s" disables the per-verification deadline.
		"timeout":   "0s",
		"parallel":  4,
		"state_dir": "~/.ilverify/state",
		// max_history_entries: Oldest entries are pruned when this limit is exceeded.
		"max_history_entries": 500,
	}
}
