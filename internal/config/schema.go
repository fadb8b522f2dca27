package config

import (
	"fmt"
	"sort"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeInt ConfigValueType = iota
	TypeDuration
	TypeString
	TypeStringList
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeStringList:
		return "list"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type.
type ConfigKeySchema struct {
	Path          string          // Key name (e.g., "verbosity")
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"verifier_path": {
		Path:        "verifier_path",
		Type:        TypeString,
		Description: "ilverify executable, resolved through PATH when bare",
	},
	"verbosity": {
		Path:          "verbosity",
		Type:          TypeEnum,
		AllowedValues: []string{"quiet", "normal", "detailed", "diagnostics"},
		Description:   "How much verifier output is shown on success",
	},
	"output_path": {
		Path:        "output_path",
		Type:        TypeString,
		Description: "Where modules are serialized before verification",
	},
	"framework_dir": {
		Path:        "framework_dir",
		Type:        TypeString,
		Description: ".NET shared framework directory (empty = discover with dotnet)",
	},
	"references": {
		Path:        "references",
		Type:        TypeStringList,
		Description: "Dependency modules passed to ilverify with -r",
	},
	"timeout": {
		Path:        "timeout",
		Type:        TypeDuration,
		Description: "Per-verification timeout (0 = none)",
	},
	"parallel": {
		Path:        "parallel",
		Type:        TypeInt,
		Description: "Modules verified at once in batch mode",
	},
	"state_dir": {
		Path:        "state_dir",
		Type:        TypeString,
		Description: "Directory for history.yaml",
	},
	"max_history_entries": {
		Path:        "max_history_entries",
		Type:        TypeInt,
		Description: "Maximum verification history entries to retain",
	},
}

// ErrUnknownKey is returned when a key is not in the KnownKeys registry.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return fmt.Sprintf("unknown configuration key: %s", e.Key)
}

// GetKeySchema returns the schema for a known key.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known key names in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
