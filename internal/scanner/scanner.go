// Package scanner finds the Java sources a run should sort.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/panbanda/stepdown/pkg/parser"
)

// Scanner finds Java source files in a directory.
type Scanner struct {
	config *config.Config

	// configured patterns, matched relative to the scan root
	excludes gitignore.Matcher
	// .gitignore patterns, matched relative to gitRoot
	ignores gitignore.Matcher
	gitRoot string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from both config and .gitignore files.
// Config patterns and directories are parsed as gitignore syntax.
func (s *Scanner) loadExcludePatterns(absRoot string) {
	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	s.excludes = gitignore.NewMatcher(patterns)

	s.ignores, s.gitRoot = nil, ""
	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(absRoot)
	if gitRoot == "" {
		return
	}
	// ReadPatterns walks every .gitignore below the git root
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(gitPatterns) == 0 {
		return
	}
	s.ignores = gitignore.NewMatcher(gitPatterns)
	s.gitRoot = gitRoot
}

// isExcluded checks if an absolute path matches any exclusion pattern.
func (s *Scanner) isExcluded(absRoot, path string, isDir bool) bool {
	if rel, err := filepath.Rel(absRoot, path); err == nil && rel != "." {
		if s.excludes != nil && s.excludes.Match(split(rel), isDir) {
			return true
		}
	}
	if s.ignores != nil {
		if rel, err := filepath.Rel(s.gitRoot, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return s.ignores.Match(split(rel), isDir)
		}
	}
	return false
}

func split(rel string) []string {
	return strings.Split(rel, string(filepath.Separator))
}

// ScanDir recursively scans a directory for Java source files.
// Uses filepath.WalkDir for better performance (avoids stat calls).
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(absRoot, path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(absRoot, path, false) {
			return nil
		}
		if parser.DetectLanguage(path) == parser.LangJava {
			files = append(files, path)
		}

		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	if !strings.HasPrefix(absPath, root+string(filepath.Separator)) && absPath != root {
		return false
	}

	return true
}

// ScanFile checks if a single file should be sorted.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if parser.DetectLanguage(path) != parser.LangJava {
		return false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	dir := filepath.Dir(abs)
	s.loadExcludePatterns(dir)
	return !s.isExcluded(dir, abs, false), nil
}

// ScanPaths expands files and directories into a sorted, duplicate-free
// list of Java files. Files named explicitly are only subject to the
// Java and exclusion checks of ScanFile.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := s.ScanDir(p)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		ok, err := s.ScanFile(p)
		if err != nil {
			return nil, err
		}
		if ok {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				abs = resolved
			}
			files = append(files, abs)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
