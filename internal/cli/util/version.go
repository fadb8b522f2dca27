// Package util holds utility commands of the ilverify-go CLI.
package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/output"
	"github.com/ariel-frischer/ilverify/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	boxHorizontal = "─"
	boxVertical   = "│"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for ilverify-go",
	Example: `  # Show version info
  ilverify-go version

  # Plain output (for scripts)
  ilverify-go version --plain`,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		if plain {
			printPlainVersion(cmd.OutOrStdout(), version.Get())
			return
		}
		printPrettyVersion(cmd.OutOrStdout(), version.Get(), output.GetTerminalWidth())
	},
}

// Register adds the utility commands to root.
func Register(root *cobra.Command) {
	versionCmd.GroupID = shared.GroupGettingStarted
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
	root.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer, info version.Info) {
	fmt.Fprint(out, info.Plain())
}

// printPrettyVersion prints the build information in a box centered in termWidth.
func printPrettyVersion(out io.Writer, info version.Info, termWidth int) {
	yellow := color.New(color.FgYellow).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	rows := []struct {
		label string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.ShortCommit()},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}

	boxWidth := 44
	if termWidth < 50 {
		boxWidth = max(termWidth-6, 30)
	}
	contentWidth := boxWidth - 4
	pad := strings.Repeat(" ", max((termWidth-boxWidth)/2, 0))

	fmt.Fprintln(out)
	fmt.Fprintln(out, pad+cyan("ilverify-go"))
	fmt.Fprintln(out, pad+"┌"+strings.Repeat(boxHorizontal, boxWidth-2)+"┐")
	for _, row := range rows {
		line := fmt.Sprintf("  %s    %s", yellow(fmt.Sprintf("%10s", row.label)), white(row.value))
		if n := 10 + 4 + len(row.value) + 2; n < contentWidth {
			line += strings.Repeat(" ", contentWidth-n)
		}
		fmt.Fprintln(out, pad+boxVertical+" "+line+" "+boxVertical)
	}
	fmt.Fprintln(out, pad+"└"+strings.Repeat(boxHorizontal, boxWidth-2)+"┘")
	fmt.Fprintln(out)
}
