// Package vcs finds the files a working tree has touched so a run can be
// limited to them.
package vcs

import "context"

// Repository provides the git queries stepdown needs.
type Repository interface {
	// Root returns the worktree root.
	Root() string
	// Changed returns absolute paths of files that differ from HEAD in the
	// worktree or index, untracked files included.
	Changed(ctx context.Context) ([]string, error)
	// ChangedSince returns absolute paths of files changed between rev and
	// HEAD, plus everything Changed reports.
	ChangedSince(ctx context.Context, rev string) ([]string, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
