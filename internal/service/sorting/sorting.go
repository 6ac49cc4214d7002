// Package sorting runs the stepdown sorter over files: it parses, plans,
// rewrites and caches, and builds the reports the CLI and MCP server print.
package sorting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/panbanda/stepdown/internal/cache"
	"github.com/panbanda/stepdown/internal/fileproc"
	"github.com/panbanda/stepdown/internal/rewrite"
	"github.com/panbanda/stepdown/internal/vcs"
	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/ast/treesitter"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/panbanda/stepdown/pkg/sorter"
)

// Status describes what a run did with one file.
type Status string

const (
	// StatusSorted means the file was already in stepdown order.
	StatusSorted Status = "sorted"
	// StatusReordered means the file was rewritten.
	StatusReordered Status = "reordered"
	// StatusUnsorted means the file would change; reported in check mode.
	StatusUnsorted Status = "unsorted"
	// StatusCached means an earlier run found the same content sorted.
	StatusCached Status = "cached"
	// StatusSkipped means the file has no sortable type.
	StatusSkipped Status = "skipped"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string `json:"path" yaml:"path" toon:"path"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty" toon:"type"`
	Status  Status `json:"status" yaml:"status" toon:"status"`
	Methods int    `json:"methods" yaml:"methods" toon:"methods"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty" toon:"reason"`
}

// Service orchestrates sorting runs.
type Service struct {
	config      *config.Config
	sorter      *sorter.Sorter
	cache       *cache.Cache
	fingerprint string
	opener      vcs.Opener
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the verdict cache. Without one nothing is cached.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithLogger sets the logger handed to the sorter.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sorting service. The sorter preferences come from the
// config's sorter and members sections.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		opener: vcs.DefaultOpener(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.cache == nil {
		s.cache, _ = cache.New("", 0, false)
	}

	prefs, err := s.config.Preferences()
	if err != nil {
		return nil, err
	}
	srt, err := sorter.New(prefs, sorter.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.sorter = srt
	s.fingerprint = cache.Fingerprint(prefs.Encode())
	return s, nil
}

// Preferences returns the preferences the service sorts with.
func (s *Service) Preferences() sorter.Preferences {
	return s.sorter.Preferences()
}

// ChangedFiles lists files the git worktree around path has modified, or
// changed since rev when rev is not empty.
func (s *Service) ChangedFiles(ctx context.Context, path, rev string) ([]string, error) {
	repo, err := s.opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, err
	}
	if rev != "" {
		return repo.ChangedSince(ctx, rev)
	}
	return repo.Changed(ctx)
}

// RunOptions configures a batch run.
type RunOptions struct {
	Mode       rewrite.Mode
	Workers    int
	OnProgress func()
}

// Run sorts files in parallel. Files that cannot be read, parsed or
// rewritten are reported in the returned errors; the rest of the batch
// continues.
func (s *Service) Run(ctx context.Context, files []string, opts RunOptions) (*Summary, *fileproc.ProcessingErrors) {
	workers := opts.Workers
	if workers <= 0 {
		workers = s.config.Sorter.Workers
	}

	rw := rewrite.NewRewriter(opts.Mode)
	results, errs := fileproc.MapFiles(ctx, files, workers, func(p *treesitter.Provider, path string) (FileResult, error) {
		return s.sortFile(ctx, p, rw, path)
	}, opts.OnProgress)

	changed := make(map[string]bool)
	for _, path := range rw.Changed() {
		changed[path] = true
	}

	summary := &Summary{Mode: modeName(opts.Mode)}
	for _, r := range results {
		if r.Status == StatusSorted {
			if changed[r.Path] {
				r.Status = StatusReordered
				if opts.Mode == rewrite.ModeCheck {
					r.Status = StatusUnsorted
				}
			} else if err := s.remember(r); err != nil {
				s.logger.Debug("cache write failed", "path", r.Path, "error", err)
			}
		}
		summary.add(r)
	}
	if errs != nil {
		summary.Failed = len(errs.Errors)
	}
	return summary, errs
}

func (s *Service) sortFile(ctx context.Context, p *treesitter.Provider, rw sorter.Rewriter, path string) (FileResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read file: %w", err)
	}
	if v, ok := s.cache.Lookup(path, source, s.fingerprint); ok && v.Sorted {
		return FileResult{Path: path, Status: StatusCached, Methods: v.Methods}, nil
	}

	unit, err := p.ParseSource(ctx, path, source)
	if err != nil {
		return FileResult{}, err
	}
	plan, err := s.sorter.Sort(ctx, unit, rw)
	if skipped(err) {
		return FileResult{Path: path, Status: StatusSkipped, Reason: reason(err)}, nil
	}
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{
		Path:    path,
		Type:    plan.Type.Name,
		Status:  StatusSorted,
		Methods: len(plan.Order),
	}, nil
}

// remember caches a file found in order at its current content.
func (s *Service) remember(r FileResult) error {
	source, err := os.ReadFile(r.Path)
	if err != nil {
		return err
	}
	return s.cache.Store(r.Path, source, s.fingerprint, cache.Verdict{Sorted: true, Methods: r.Methods})
}

func skipped(err error) bool {
	return errors.Is(err, sorter.ErrMalformed) || errors.Is(err, ast.ErrNoTopLevelType)
}

func reason(err error) string {
	if errors.Is(err, sorter.ErrMalformed) {
		return "syntax errors"
	}
	return "no top-level type"
}

func modeName(m rewrite.Mode) string {
	if m == rewrite.ModeCheck {
		return "check"
	}
	return "write"
}

// Plan parses path and computes its order without touching the file.
func (s *Service) Plan(ctx context.Context, path string) (*sorter.Plan, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return s.PlanSource(ctx, path, source)
}

// PlanSource computes the order of in-memory source attributed to path.
func (s *Service) PlanSource(ctx context.Context, path string, source []byte) (*sorter.Plan, error) {
	p := treesitter.New()
	defer p.Close()

	unit, err := p.ParseSource(ctx, path, source)
	if err != nil {
		return nil, err
	}
	return s.sorter.Plan(unit)
}

// Preview returns the sorted text of a plan's unit and whether it differs
// from the input.
func Preview(plan *sorter.Plan) ([]byte, bool, error) {
	return rewrite.Reorder(plan.Unit, plan.Members)
}
