package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View verification history",
	Long:  `View a log of past verifications with timestamp, module, verdict, exit code, duration and commit.`,
	Example: `  # Show all history
  ilverify-go history

  # Last 10 verifications of one module
  ilverify-go history -m bin/Generated.dll -n 10

  # Clear history
  ilverify-go history --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := shared.LoadConfig(cmd)
		if err != nil {
			return err
		}
		return runHistoryWithStateDir(cmd, loaded.Config.StateDir)
	},
}

func init() {
	historyCmd.GroupID = shared.GroupConfiguration
	rootCmd.AddCommand(historyCmd)
	addHistoryFlags(historyCmd)
}

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("module", "m", "", "Filter by module path")
	cmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	cmd.Flags().BoolP("clear", "c", false, "Clear all history")
}

// runHistoryWithStateDir runs the history command against stateDir.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	moduleFilter, _ := cmd.Flags().GetString("module")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return clierrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", limit))
	}

	if clearFlag && (moduleFilter != "" || limit > 0) {
		return clierrors.InvalidFlagCombination("--clear with --module or --limit",
			"--clear removes the whole history")
	}

	if clearFlag {
		if err := history.ClearHistory(stateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	histFile, err := history.LoadHistory(stateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	entries := history.Filter(histFile.Entries, moduleFilter, limit)
	if len(entries) == 0 {
		if moduleFilter != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching entries for module '%s'.\n", moduleFilter)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		}
		return nil
	}

	displayEntries(cmd.OutOrStdout(), entries)
	return nil
}

// displayEntries prints one line per entry, oldest first.
func displayEntries(out io.Writer, entries []history.HistoryEntry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")

		verdict := fmt.Sprintf("%-8s", entry.Verdict)
		exitCode := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			verdict, exitCode = green(verdict), green(exitCode)
		} else {
			verdict, exitCode = red(verdict), red(exitCode)
		}

		commit := entry.Commit
		if commit == "" {
			commit = "-"
		}

		fmt.Fprintf(out, "%s  %s  %s  exit=%s  %-8s  %s\n",
			cyan(timestamp),
			verdict,
			entry.Module,
			exitCode,
			entry.Duration,
			commit,
		)
	}
}
