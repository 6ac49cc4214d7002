package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/member"
)

// ErrStale is returned when a unit was parsed from different content than
// the working copy holds.
var ErrStale = errors.New("unit does not match working copy")

// WorkingCopy holds the content of one file between reading and writing it
// back. Nothing reaches disk until Commit.
type WorkingCopy struct {
	path     string
	perm     os.FileMode
	original []byte
	current  []byte
}

// Begin reads path into a new working copy.
func Begin(path string) (*WorkingCopy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &WorkingCopy{
		path:     path,
		perm:     info.Mode().Perm(),
		original: src,
		current:  slices.Clone(src),
	}, nil
}

// Path returns the file the working copy belongs to.
func (w *WorkingCopy) Path() string {
	return w.path
}

// Source returns the current content.
func (w *WorkingCopy) Source() []byte {
	return w.current
}

// Changed reports whether the content differs from the file as read.
func (w *WorkingCopy) Changed() bool {
	return !bytes.Equal(w.original, w.current)
}

// Edit reorders the unit's members. The unit must have been parsed from
// the current content.
func (w *WorkingCopy) Edit(unit *ast.Unit, order *member.Comparator) (bool, error) {
	if !bytes.Equal(unit.Source, w.current) {
		return false, fmt.Errorf("%s: %w", w.path, ErrStale)
	}
	out, changed, err := Reorder(unit, order)
	if err != nil {
		return false, err
	}
	if changed {
		w.current = out
	}
	return changed, nil
}

// Discard drops all edits.
func (w *WorkingCopy) Discard() {
	w.current = slices.Clone(w.original)
}

// Commit writes the content back if it changed. The file is replaced
// atomically through a temporary file in the same directory.
func (w *WorkingCopy) Commit() error {
	if !w.Changed() {
		return nil
	}
	if nonBlankLines(w.current) != nonBlankLines(w.original) {
		return fmt.Errorf("%s: %w", w.path, ErrContentLoss)
	}

	dir, base := filepath.Split(w.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".stepdown-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(w.current); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(w.perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}
	w.original = slices.Clone(w.current)
	return nil
}

// Apply runs fn on a working copy of path and commits the result unless fn
// fails. It reports whether the file changed.
func Apply(path string, fn func(*WorkingCopy) error) (bool, error) {
	w, err := Begin(path)
	if err != nil {
		return false, err
	}
	if err := fn(w); err != nil {
		w.Discard()
		return false, err
	}
	changed := w.Changed()
	if err := w.Commit(); err != nil {
		return false, err
	}
	return changed, nil
}

// Mode selects what a Rewriter does with a changed unit.
type Mode int

const (
	// ModeWrite writes changed units back to their files.
	ModeWrite Mode = iota
	// ModeCheck only records which units would change.
	ModeCheck
)

// Rewriter writes sorted units back to disk. It records every path that
// changed, or would change in ModeCheck. Safe for concurrent use.
type Rewriter struct {
	mode    Mode
	mu      sync.Mutex
	changed []string
}

// NewRewriter creates a Rewriter.
func NewRewriter(mode Mode) *Rewriter {
	return &Rewriter{mode: mode}
}

func (r *Rewriter) Rewrite(ctx context.Context, unit *ast.Unit, order *member.Comparator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var changed bool
	var err error
	if r.mode == ModeCheck {
		_, changed, err = Reorder(unit, order)
	} else {
		changed, err = Apply(unit.Path, func(w *WorkingCopy) error {
			_, err := w.Edit(unit, order)
			return err
		})
	}
	if err != nil {
		return err
	}
	if changed {
		r.mu.Lock()
		r.changed = append(r.changed, unit.Path)
		r.mu.Unlock()
	}
	return nil
}

// Changed returns the recorded paths in sorted order.
func (r *Rewriter) Changed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.changed)
	slices.Sort(out)
	return out
}
