package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAMLSyntax(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content  string
		missing  bool
		wantErr  bool
		wantLine int
	}{
		"valid":         {content: "verbosity: normal\n"},
		"empty":         {content: "   \n"},
		"missing file":  {missing: true},
		"bad indent":    {content: "verbosity: normal\n  parallel: 2\n", wantErr: true, wantLine: 2},
		"unclosed flow": {content: "references: [a\n", wantErr: true},
		"unknown key":   {content: "verbosity: normal\nparalel: 2\n", wantErr: true, wantLine: 2},
		"not a mapping": {content: "- verbosity\n", wantErr: true, wantLine: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.yml")
			if !tt.missing {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			err := ValidateYAMLSyntax(path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, path, vErr.FilePath)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, vErr.Line)
			}
		})
	}
}

func TestValidateYAMLSyntaxFromBytes_UnknownKey(t *testing.T) {
	t.Parallel()

	err := ValidateYAMLSyntaxFromBytes([]byte("verbosity: normal\n  \ntimeot: 2m\n"), "c.yml")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "timeot", vErr.Field)
	assert.Equal(t, 3, vErr.Line)
	assert.Equal(t, 1, vErr.Column)
	assert.Contains(t, vErr.Message, `unknown key "timeot"`)
}

func TestYAMLErrorPosition(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		"with line":    {msg: "yaml: line 5: did not find expected key", wantLine: 5, wantMsg: "did not find expected key"},
		"without line": {msg: "yaml: control characters are not allowed", wantMsg: "control characters are not allowed"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			line, _ := yamlErrorPosition(tt.msg)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantMsg, yamlErrorMessage(tt.msg))
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c.yml:3:1: bad", (&ValidationError{FilePath: "c.yml", Line: 3, Column: 1, Message: "bad"}).Error())
	assert.Equal(t, "c.yml: field 'parallel': bad", (&ValidationError{FilePath: "c.yml", Field: "parallel", Message: "bad"}).Error())
	assert.Equal(t, "c.yml: bad", (&ValidationError{FilePath: "c.yml", Message: "bad"}).Error())
}

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "max_history_entries", toSnakeCase("MaxHistoryEntries"))
	assert.Equal(t, "parallel", toSnakeCase("Parallel"))
}
