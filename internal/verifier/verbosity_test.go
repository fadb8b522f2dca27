package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosity_Flags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		level Verbosity
		want  []string
	}{
		"quiet":       {level: Quiet, want: nil},
		"normal":      {level: Normal, want: nil},
		"detailed":    {level: Detailed, want: []string{"--statistics"}},
		"diagnostics": {level: Diagnostics, want: []string{"--verbose", "--statistics"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.level.Flags())
		})
	}
}

func TestVerbosity_Ordering(t *testing.T) {
	t.Parallel()

	assert.Less(t, Quiet, Normal)
	assert.Less(t, Normal, Detailed)
	assert.Less(t, Detailed, Diagnostics)
}

func TestParseVerbosity(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    Verbosity
		wantErr bool
	}{
		"quiet":         {input: "quiet", want: Quiet},
		"upper case":    {input: "NORMAL", want: Normal},
		"padded":        {input: "  detailed ", want: Detailed},
		"diagnostics":   {input: "Diagnostics", want: Diagnostics},
		"unknown level": {input: "loud", wantErr: true},
		"empty":         {input: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVerbosity(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "quiet, normal, detailed, diagnostics")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerbosity_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "detailed", Detailed.String())
	assert.Equal(t, "verbosity(9)", Verbosity(9).String())
	assert.Equal(t, []string{"quiet", "normal", "detailed", "diagnostics"}, VerbosityNames())
}
