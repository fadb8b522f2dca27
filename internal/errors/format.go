package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette styles the parts of a rendered error.
type palette struct {
	label, message, category, usage, fix, bullet func(a ...any) string
}

// colored falls back to plain text on its own when color.NoColor is set.
var colored = palette{
	label:    color.New(color.FgRed, color.Bold).SprintFunc(),
	message:  color.New(color.FgRed).SprintFunc(),
	category: color.New(color.FgYellow).SprintFunc(),
	usage:    color.New(color.FgCyan).SprintFunc(),
	fix:      color.New(color.FgGreen, color.Bold).SprintFunc(),
	bullet:   color.New(color.FgGreen).SprintFunc(),
}

var plain = palette{
	label: fmt.Sprint, message: fmt.Sprint, category: fmt.Sprint,
	usage: fmt.Sprint, fix: fmt.Sprint, bullet: fmt.Sprint,
}

// FormatError renders err for the terminal, colored when supported.
func FormatError(err *CLIError) string {
	return render(err, colored)
}

// FormatErrorPlain renders err without colors.
func FormatErrorPlain(err *CLIError) string {
	return render(err, plain)
}

// render lays out:
//
//	Error [<category>]: <message>
//	<detail>
//	Usage: <usage>
//	To fix this:
//	  • <step>
//
// with a blank line between sections and empty sections left out.
func render(err *CLIError, p palette) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category.String()), p.message(err.Message))

	if err.Detail != "" {
		// the verifier report stays uncolored so it can be copied
		sb.WriteString("\n" + err.Detail)
		if !strings.HasSuffix(err.Detail, "\n") {
			sb.WriteString("\n")
		}
	}

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", p.usage("Usage: "), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}
	return sb.String()
}

// FprintError writes the rendered err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// Fprint prints any error: CLIErrors keep their category and remediation,
// verifier errors are converted with FromVerifier, anything else is a Runtime error.
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = FromVerifier(err)
	}
	FprintError(w, cliErr)
}
