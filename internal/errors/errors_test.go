package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategory_String(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		category ErrorCategory
		want     string
	}{
		"argument":      {category: Argument, want: "Argument Error"},
		"configuration": {category: Configuration, want: "Configuration Error"},
		"prerequisite":  {category: Prerequisite, want: "Prerequisite Error"},
		"runtime":       {category: Runtime, want: "Runtime Error"},
		"verification":  {category: Verification, want: "Verification Failed"},
		"unknown":       {category: ErrorCategory(42), want: "Error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("deadline: %w", context.DeadlineExceeded)

	wrapped := Wrap(cause, Runtime, "try again")
	assert.Equal(t, cause.Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)

	withMsg := WrapWithMessage(cause, Configuration, "loading")
	assert.Equal(t, "loading: deadline: context deadline exceeded", withMsg.Error())
	assert.ErrorIs(t, withMsg, context.DeadlineExceeded)

	assert.Nil(t, Wrap(nil, Runtime))
	assert.Nil(t, WrapWithMessage(nil, Runtime, "x"))
}

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	cliErr := NewConfigError("bad")
	outer := fmt.Errorf("command failed: %w", cliErr)

	assert.Same(t, cliErr, AsCLIError(outer))
	assert.True(t, IsCLIError(outer))
	assert.Nil(t, AsCLIError(stderrors.New("plain")))
	assert.False(t, IsCLIError(nil))
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err          *CLIError
		wantContains []string
		wantMissing  []string
	}{
		"message and remediation": {
			err: NewPrerequisiteError("ilverify not found", "install it", "run doctor"),
			wantContains: []string{
				"Error [Prerequisite Error]: ilverify not found\n",
				"To fix this:\n",
				"  • install it\n",
				"  • run doctor\n",
			},
			wantMissing: []string{"Usage:"},
		},
		"usage shown for argument errors": {
			err:          MissingModuleArgument(),
			wantContains: []string{"Usage: ilverify-go verify <module.dll>..."},
		},
		"detail printed verbatim": {
			err: &CLIError{
				Category: Verification,
				Message:  "module failed IL verification",
				Detail:   "[IL]: Error [StackUnderflow]",
			},
			wantContains: []string{"\n[IL]: Error [StackUnderflow]\n"},
			wantMissing:  []string{"To fix this:"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := FormatErrorPlain(tt.err)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, got, missing)
			}
		})
	}

	assert.Empty(t, FormatErrorPlain(nil))
	assert.Empty(t, FormatError(nil))
}
