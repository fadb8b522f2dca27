// Package output provides terminal output formatting for ilverify-go.
// It depends on no other internal package.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// separator builds a centered "── label ──" line of the given width.
func separator(width int, label string) string {
	label = " " + label + " "
	lineLen := (width - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}
	line := strings.Repeat("─", lineLen)
	return line + label + line
}

// PrintReportHeader prints a dim separator naming the module whose verifier
// report follows.
func PrintReportHeader(out io.Writer, module string) {
	magenta := color.New(color.FgMagenta, color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s\n", magenta(separator(GetTerminalWidth(), module)))
}

// PrintModuleHeader prints "[i/n] Verifying <module>...".
func PrintModuleHeader(out io.Writer, index, total int, module string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(fmt.Sprintf("[%d/%d]", index, total)), white("Verifying "+module+"..."))
}

// PrintSuccess prints a green checkmark followed by message.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintSummary prints "<passed>/<total> modules verified", red when any failed.
func PrintSummary(out io.Writer, passed, total int) {
	paint := color.New(color.FgGreen, color.Bold)
	if passed < total {
		paint = color.New(color.FgRed, color.Bold)
	}
	fmt.Fprintln(out, paint.Sprintf("%d/%d modules verified", passed, total))
}

// PrintExecutingCommand prints the verifier command line being executed.
func PrintExecutingCommand(out io.Writer, command string) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", magenta("→ Executing:"), dim(command))
}
