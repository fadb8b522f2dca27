package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/exec"
	"github.com/ariel-frischer/ilverify/internal/health"
	"github.com/ariel-frischer/ilverify/internal/verifier"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that ilverify and the .NET runtime are available",
	Long: `Run the checks verify depends on: configuration, the ilverify global tool,
the .NET shared framework and a writable artifact directory.`,
	Example: `  # Check dependencies
  ilverify-go doctor

  # Check against a specific config file
  ilverify-go doctor --config ci/ilverify.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := health.Options{Runner: exec.NewRunner()}
		loaded, err := shared.LoadConfig(cmd)
		if err != nil {
			opts.ConfigErr = err
		} else {
			opts.VerifierPath = loaded.Config.VerifierPath
			opts.FrameworkDir = loaded.Config.FrameworkDir
			opts.OutputPath = loaded.Config.OutputPath
		}
		return executeDoctor(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	doctorCmd.GroupID = shared.GroupGettingStarted
	rootCmd.AddCommand(doctorCmd)
}

// executeDoctor prints the report. A configuration failure is returned as
// is; any other failed check is a missing prerequisite.
func executeDoctor(ctx context.Context, out io.Writer, opts health.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report := health.RunHealthChecks(ctx, opts)
	fmt.Fprint(out, health.FormatReport(report))

	if report.Passed {
		return nil
	}
	if opts.ConfigErr != nil {
		return opts.ConfigErr
	}
	return clierrors.NewPrerequisiteError("one or more dependency checks failed",
		"Install the verifier: "+verifier.InstallHint,
		"Install the .NET runtime from https://dot.net",
		"Or set framework_dir to an existing shared framework directory",
	)
}
