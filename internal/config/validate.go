package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/verifier"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError locates a problem in a config file. Line is 0 when the
// problem has no position, e.g. an out-of-range value after merging.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// ValidateYAMLSyntax checks a config file parses and only uses known keys.
// A missing or blank file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, fs.ErrPermission):
		return &ValidationError{FilePath: filePath, Message: "permission denied"}
	case err != nil:
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}
	return ValidateYAMLSyntaxFromBytes(data, filePath)
}

// ValidateYAMLSyntaxFromBytes is ValidateYAMLSyntax for in-memory data.
func ValidateYAMLSyntaxFromBytes(data []byte, filePath string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line, column := yamlErrorPosition(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  yamlErrorMessage(err.Error()),
		}
	}
	return checkTopLevelKeys(&doc, filePath)
}

// checkTopLevelKeys rejects a document that is not a mapping or that names
// a key outside KnownKeys, pointing at the offending node.
func checkTopLevelKeys(doc *yaml.Node, filePath string) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ValidationError{
			FilePath: filePath,
			Line:     root.Line,
			Column:   root.Column,
			Message:  "config must be a mapping of keys to values",
		}
	}
	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i]
		if _, ok := KnownKeys[key.Value]; !ok {
			return &ValidationError{
				FilePath: filePath,
				Line:     key.Line,
				Column:   key.Column,
				Field:    key.Value,
				Message:  fmt.Sprintf("unknown key %q (see 'ilverify-go config keys')", key.Value),
			}
		}
	}
	return nil
}

// ValidateConfigValues runs the struct tag rules on a merged configuration
// and reports the first violation by its config key.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			FilePath: filePath,
			Field:    toSnakeCase(fe.StructField()),
			Message:  describeRule(fe),
		}
	}
	return &ValidationError{FilePath: filePath, Message: err.Error()}
}

// newValidator returns a validator that also knows the "verbosity" tag.
func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("verbosity", func(fl validator.FieldLevel) bool {
		_, err := verifier.ParseVerbosity(fl.Field().String())
		return err == nil
	})
	return validate
}

// yaml.v3 reports syntax errors as "yaml: line 5: did not find expected key".
var yamlLinePattern = regexp.MustCompile(`^yaml: line (\d+): `)

func yamlErrorPosition(msg string) (line, column int) {
	m := yamlLinePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, 0
	}
	line, _ = strconv.Atoi(m[1])
	return line, 1
}

func yamlErrorMessage(msg string) string {
	if loc := yamlLinePattern.FindStringIndex(msg); loc != nil {
		return msg[loc[1]:]
	}
	return strings.TrimPrefix(msg, "yaml: ")
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "verbosity":
		return "must be one of " + strings.Join(verifier.VerbosityNames(), ", ")
	default:
		return "failed validation: " + fe.Tag()
	}
}

// toSnakeCase maps a Configuration field name to its config key.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
