package verifier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  *Error
		want error
		kind Kind
	}{
		"tool missing":  {err: toolMissing(DefaultVerifierCommand, errors.New("nope")), want: ErrToolMissing, kind: KindToolMissing},
		"runtime":       {err: runtimeMissing(errors.New("nope")), want: ErrToolMissing, kind: KindToolMissing},
		"serialization": {err: serializationFailed("/x.dll", errors.New("nope")), want: ErrSerializationFailed, kind: KindSerializationFailed},
		"verification":  {err: verificationFailed("[IL]: Error", "", 1), want: ErrVerificationFailed, kind: KindVerificationFailed},
		"execution":     {err: toolExecution("ilverify", errors.New("nope")), want: ErrToolExecution, kind: KindToolExecution},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.want)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			for _, other := range []error{ErrToolMissing, ErrSerializationFailed, ErrVerificationFailed, ErrToolExecution} {
				if other != tt.want {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestToolMissing_Message(t *testing.T) {
	t.Parallel()

	err := toolMissing(DefaultVerifierCommand, errors.New("not found"))
	assert.Contains(t, err.Error(), "Unable to execute 'ilverify'")
	assert.Contains(t, err.Error(), InstallHint)
	assert.NotContains(t, err.Error(), "configured path")

	custom := toolMissing("/opt/bin/ilverify", errors.New("not found"))
	assert.Contains(t, custom.Error(), "configured path: /opt/bin/ilverify")
}

func TestVerificationFailed_Message(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stdout string
		stderr string
		want   string
	}{
		"report is the message": {
			stdout: "[IL]: Error [StackUnexpected]\n1 Error(s) Verifying M.dll\n",
			want:   "[IL]: Error [StackUnexpected]\n1 Error(s) Verifying M.dll\n",
		},
		"empty report falls back to exit code": {
			want: "ilverify exited with code 3",
		},
		"empty report includes stderr": {
			stderr: "Unhandled exception\n",
			want:   "ilverify exited with code 3: Unhandled exception",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := verificationFailed(tt.stdout, tt.stderr, 3)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.stdout, err.Output)
		})
	}
}

func TestKindOf_Foreign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, "unknown", Kind(0).String())
}
