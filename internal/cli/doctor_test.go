package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/health"
	"github.com/ariel-frischer/ilverify/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameworkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "System.Runtime.dll"), []byte("MZ"), 0o644))
	return dir
}

func TestExecuteDoctor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		runner    *testutil.FakeRunner
		configErr error
		wantCode  int
		wantOut   []string
	}{
		"all checks pass": {
			runner:  testutil.NewFakeRunner().When("--version", testutil.FakeResponse{Stdout: "8.0.0\n"}),
			wantOut: []string{"✓ ilverify: installed (v8.0.0)", "✓ Configuration: loaded"},
		},
		"verifier missing": {
			runner:   testutil.NewFakeRunner().When("--version", testutil.FakeResponse{Err: errors.New("not found")}),
			wantCode: shared.ExitMissingDependency,
			wantOut:  []string{"✗ ilverify: cannot execute"},
		},
		"config error wins": {
			runner:    testutil.NewFakeRunner(),
			configErr: clierrors.ConfigInvalid(errors.New("parallel must be at least 1")),
			wantCode:  shared.ExitInvalidArguments,
			wantOut:   []string{"✗ Configuration"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			opts := health.Options{
				VerifierPath: "ilverify",
				FrameworkDir: frameworkDir(t),
				OutputPath:   filepath.Join(t.TempDir(), "VerifiedAssembly.dll"),
				ConfigErr:    tt.configErr,
				Runner:       tt.runner,
			}

			err := executeDoctor(context.Background(), &out, opts)
			assert.Equal(t, tt.wantCode, shared.ExitCode(err))
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
