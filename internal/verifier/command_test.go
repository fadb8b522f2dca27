package verifier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandLine(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		refs  []ReferencePath
		level Verbosity
		want  string
	}{
		"no references quiet": {
			level: Quiet,
			want:  `"/out/M.dll" -r "/fx/*.dll"  `,
		},
		"one reference detailed": {
			refs:  []ReferencePath{"/refs/Dep.dll"},
			level: Detailed,
			want:  `"/out/M.dll" -r "/fx/*.dll"  -r "/refs/Dep.dll" --statistics`,
		},
		"references keep order": {
			refs:  []ReferencePath{"/b.dll", "/a.dll"},
			level: Normal,
			want:  `"/out/M.dll" -r "/fx/*.dll"  -r "/b.dll" -r "/a.dll" `,
		},
		"diagnostics": {
			level: Diagnostics,
			want:  `"/out/M.dll" -r "/fx/*.dll"  --verbose --statistics`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CommandLine("/out/M.dll", "/fx", tt.refs, tt.level))
		})
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		module string
		fx     string
		refs   []ReferencePath
		level  Verbosity
		want   []string
	}{
		"paths with spaces": {
			module: "/my out/M.dll",
			fx:     "/fx dir",
			refs:   []ReferencePath{"/my refs/Dep.dll"},
			level:  Diagnostics,
			want: []string{
				"/my out/M.dll",
				"-r", filepath.Join("/fx dir", "*.dll"),
				"-r", "/my refs/Dep.dll",
				"--verbose", "--statistics",
			},
		},
		"no flags below detailed": {
			module: "/out/M.dll",
			fx:     "/fx",
			level:  Normal,
			want:   []string{"/out/M.dll", "-r", filepath.Join("/fx", "*.dll")},
		},
		"backslashes kept": {
			module: `C:\out\VerifiedAssembly.dll`,
			fx:     `C:\Program Files\dotnet\shared\Microsoft.NETCore.App\8.0.1`,
			refs:   []ReferencePath{`/tmp/a\b.dll`},
			level:  Quiet,
			want: []string{
				`C:\out\VerifiedAssembly.dll`,
				"-r", filepath.Join(`C:\Program Files\dotnet\shared\Microsoft.NETCore.App\8.0.1`, "*.dll"),
				"-r", `/tmp/a\b.dll`,
			},
		},
		"embedded quote passed verbatim": {
			module: `/out/"M.dll`,
			fx:     "/fx",
			level:  Quiet,
			want:   []string{`/out/"M.dll`, "-r", filepath.Join("/fx", "*.dll")},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Args(tt.module, tt.fx, tt.refs, tt.level))
		})
	}
}
