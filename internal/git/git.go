// Package git provides Git repository lookups for ilverify. It uses the go-git
// library so history entries can be stamped with the current commit without a
// git CLI installed.
package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return repo, nil
}

// HeadInfo describes the checked-out revision.
type HeadInfo struct {
	// Commit is the full hash of HEAD.
	Commit string
	// Branch is the short branch name, empty when HEAD is detached.
	Branch string
}

// ShortCommit returns the first 12 characters of the commit hash.
func (h HeadInfo) ShortCommit() string {
	if len(h.Commit) > 12 {
		return h.Commit[:12]
	}
	return h.Commit
}

// ErrNoCommits is returned for a repository whose HEAD has no commit yet.
var ErrNoCommits = errors.New("repository has no commits")

// Head returns the HEAD revision of the repository containing path
// (the working directory when empty).
func Head(path string) (HeadInfo, error) {
	repo, err := openRepo(path)
	if err != nil {
		return HeadInfo{}, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return HeadInfo{}, ErrNoCommits
		}
		return HeadInfo{}, fmt.Errorf("getting HEAD reference: %w", err)
	}

	info := HeadInfo{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	logDebug("[git] HEAD %s (branch %q)", info.ShortCommit(), info.Branch)
	return info, nil
}

// IsGitRepository checks if path is within a git repository.
func IsGitRepository(path string) bool {
	_, err := openRepo(path)
	result := err == nil
	logDebug("[git] IsGitRepository: %v", result)
	return result
}
