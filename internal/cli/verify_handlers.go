package cli

import (
	"io"
	"time"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/config"
	"github.com/ariel-frischer/ilverify/internal/git"
	"github.com/ariel-frischer/ilverify/internal/history"
	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/ariel-frischer/ilverify/internal/output"
	"github.com/ariel-frischer/ilverify/internal/verifier"
	"go.uber.org/zap"
)

// historyRecorder appends one history entry per module, stamped with the
// HEAD commit of the working directory when it is a git repository.
func historyRecorder(cfg *config.Configuration, level verifier.Verbosity, warnings io.Writer, log *zap.Logger) lifecycle.Handler {
	w := history.NewWriter(cfg.StateDir, cfg.MaxHistoryEntries)
	w.Warnings = warnings

	var commit string
	if head, err := git.Head(""); err == nil {
		commit = head.ShortCommit()
	} else {
		log.Debug("no commit for history", zap.Error(err))
	}

	return lifecycle.HandlerFunc(func(e lifecycle.Event) {
		entry := history.HistoryEntry{
			Timestamp: time.Now(),
			Module:    e.Module,
			Verdict:   e.Verdict(),
			ExitCode:  shared.ExitCode(e.Err),
			Duration:  e.Duration.Round(time.Millisecond).String(),
			Verbosity: level.String(),
			Commit:    commit,
		}
		if e.Outcome != nil {
			entry.ToolVersion = e.Outcome.ToolVersion
		}
		w.LogEntry(entry)
	})
}

// commandEcho prints the verifier command line of each run (--debug).
func commandEcho(out io.Writer) lifecycle.Handler {
	return lifecycle.HandlerFunc(func(e lifecycle.Event) {
		if e.Outcome != nil {
			output.PrintExecutingCommand(out, e.Outcome.CommandLine)
		}
	})
}
