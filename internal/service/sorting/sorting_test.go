package sorting

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/stepdown/internal/cache"
	"github.com/panbanda/stepdown/internal/rewrite"
	"github.com/panbanda/stepdown/internal/vcs"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unsorted = `package demo;

public class Demo {
    // helper comment
    private void helper() {
    }

    int count; // trailing

    public void run() {
        helper();
    }
}
`

const sorted = `package demo;

public class Demo {
    int count; // trailing

    public void run() {
        helper();
    }

    // helper comment
    private void helper() {
    }
}
`

func writeJava(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(append([]Option{WithConfig(config.DefaultConfig())}, opts...)...)
	require.NoError(t, err)
	return svc
}

func byPath(s *Summary) map[string]FileResult {
	m := make(map[string]FileResult)
	for _, f := range s.Files {
		m[filepath.Base(f.Path)] = f
	}
	return m
}

func TestRunWritesReorderedFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeJava(t, dir, "Demo.java", unsorted),
		writeJava(t, dir, "Sorted.java", sorted),
		writeJava(t, dir, "Broken.java", "class Broken { void a() {} ) }\n"),
		writeJava(t, dir, "Empty.java", "package demo;\n"),
		filepath.Join(dir, "Missing.java"),
	}

	summary, errs := newService(t).Run(context.Background(), files, RunOptions{Mode: rewrite.ModeWrite, Workers: 2})
	require.NotNil(t, errs)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, files[4], errs.Errors[0].Path)

	results := byPath(summary)
	assert.Equal(t, StatusReordered, results["Demo.java"].Status)
	assert.Equal(t, "Demo", results["Demo.java"].Type)
	assert.Equal(t, StatusSorted, results["Sorted.java"].Status)
	assert.Equal(t, StatusSkipped, results["Broken.java"].Status)
	assert.Equal(t, "syntax errors", results["Broken.java"].Reason)
	assert.Equal(t, StatusSkipped, results["Empty.java"].Status)
	assert.Equal(t, "no top-level type", results["Empty.java"].Reason)

	assert.Equal(t, 1, summary.Reordered)
	assert.Equal(t, 1, summary.Sorted)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Units())
	assert.Equal(t, "sorted 2 units: 1 reordered", summary.Line())

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, sorted, string(content))

	broken, err := os.ReadFile(files[2])
	require.NoError(t, err)
	assert.Equal(t, "class Broken { void a() {} ) }\n", string(broken), "malformed files stay untouched")
}

func TestRunCheckModeLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "Demo.java", unsorted)

	summary, errs := newService(t).Run(context.Background(), []string{path}, RunOptions{Mode: rewrite.ModeCheck})
	assert.Nil(t, errs)
	assert.Equal(t, StatusUnsorted, summary.Files[0].Status)
	assert.False(t, summary.Clean())
	assert.Equal(t, "checked 1 units: 1 out of order", summary.Line())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unsorted, string(content))
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "Demo.java", sorted)

	c, err := cache.New(filepath.Join(dir, ".stepdown", "cache"), 24, true)
	require.NoError(t, err)
	svc := newService(t, WithCache(c))

	first, errs := svc.Run(context.Background(), []string{path}, RunOptions{Mode: rewrite.ModeCheck})
	require.Nil(t, errs)
	assert.Equal(t, StatusSorted, first.Files[0].Status)

	second, errs := svc.Run(context.Background(), []string{path}, RunOptions{Mode: rewrite.ModeCheck})
	require.Nil(t, errs)
	assert.Equal(t, StatusCached, second.Files[0].Status)
	assert.Equal(t, first.Files[0].Methods, second.Files[0].Methods)
	assert.True(t, second.Clean())

	// Different preferences miss the cached verdict.
	cfg := config.DefaultConfig()
	cfg.Sorter.Priorities = []string{"LEXICAL"}
	other, err := New(WithConfig(cfg), WithCache(c))
	require.NoError(t, err)
	third, errs := other.Run(context.Background(), []string{path}, RunOptions{Mode: rewrite.ModeCheck})
	require.Nil(t, errs)
	assert.NotEqual(t, StatusCached, third.Files[0].Status)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "Demo.java", unsorted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, errs := newService(t).Run(ctx, []string{path}, RunOptions{})
	require.NotNil(t, errs)
	assert.ErrorIs(t, errs, context.Canceled)
	assert.Empty(t, summary.Files)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unsorted, string(content))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sorter.Priorities = []string{"SIDEWAYS"}
	_, err := New(WithConfig(cfg))
	assert.Error(t, err)
}

func TestOrder(t *testing.T) {
	plan, err := newService(t).PlanSource(context.Background(), "Demo.java", []byte(unsorted))
	require.NoError(t, err)

	res, err := Order(plan)
	require.NoError(t, err)
	assert.Equal(t, "Demo", res.Type)
	assert.False(t, res.Sorted)
	assert.Equal(t, sorted, res.Source)

	var methods []string
	for _, m := range res.Methods {
		if !strings.HasPrefix(m.Signature, "#") {
			methods = append(methods, m.Signature)
		}
	}
	assert.Equal(t, []string{"run()", "helper()"}, methods)

	for _, m := range res.Methods {
		if m.Signature == "helper()" {
			assert.Equal(t, "private", m.Access)
			assert.Equal(t, 5, m.Line)
			assert.Equal(t, 1, m.Callers)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, res.Report().RenderText(&buf, false))
	assert.Contains(t, buf.String(), "run()")
	assert.Contains(t, buf.String(), "Demo (Demo.java)")
}

func TestOrderOfSortedSourceHasNoSource(t *testing.T) {
	plan, err := newService(t).PlanSource(context.Background(), "Demo.java", []byte(sorted))
	require.NoError(t, err)

	res, err := Order(plan)
	require.NoError(t, err)
	assert.True(t, res.Sorted)
	assert.Empty(t, res.Source)
}

func TestOrderListsClusters(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sorter.ClusterOverloaded = true
	svc, err := New(WithConfig(cfg))
	require.NoError(t, err)

	plan, err := svc.PlanSource(context.Background(), "Demo.java", []byte(`class Demo {
    void foo() {}
    void bar() {}
    void foo(int x) {}
}
`))
	require.NoError(t, err)

	res, err := Order(plan)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"foo()", "foo(int)"}}, res.Clusters)
}

func TestGraph(t *testing.T) {
	plan, err := newService(t).PlanSource(context.Background(), "Loop.java", []byte(`class Loop {
    void a() { b(); }
    void b() { a(); }
    void c() {}
}
`))
	require.NoError(t, err)

	g := Graph(plan)
	assert.Equal(t, []string{"a()", "b()", "c()"}, g.Nodes)
	assert.Equal(t, []Edge{{"a()", "b()"}, {"b()", "a()"}}, g.Edges)
	assert.Equal(t, [][]string{{"a()", "b()"}}, g.Cycles)

	mermaid := g.Mermaid()
	assert.True(t, strings.HasPrefix(mermaid, "graph TD\n"))
	assert.Contains(t, mermaid, "n0 --> n1")
	assert.Contains(t, mermaid, `n2["c()"]`)

	var buf bytes.Buffer
	require.NoError(t, g.Report().RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "## Cycles")
}

type fakeRepo struct {
	changed []string
	since   string
}

func (f *fakeRepo) Root() string { return "/repo" }

func (f *fakeRepo) Changed(context.Context) ([]string, error) { return f.changed, nil }

func (f *fakeRepo) ChangedSince(_ context.Context, rev string) ([]string, error) {
	f.since = rev
	return append(f.changed, "/repo/Old.java"), nil
}

type fakeOpener struct{ repo *fakeRepo }

func (o fakeOpener) PlainOpenWithDetect(string) (vcs.Repository, error) { return o.repo, nil }

func TestChangedFiles(t *testing.T) {
	repo := &fakeRepo{changed: []string{"/repo/A.java"}}
	svc := newService(t, WithOpener(fakeOpener{repo}))

	files, err := svc.ChangedFiles(context.Background(), ".", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/A.java"}, files)

	files, err = svc.ChangedFiles(context.Background(), ".", "main")
	require.NoError(t, err)
	assert.Equal(t, "main", repo.since)
	assert.Len(t, files, 2)
}

func TestSummaryRendering(t *testing.T) {
	s := &Summary{Mode: "write"}
	s.add(FileResult{Path: "/src/A.java", Type: "A", Status: StatusReordered, Methods: 3})
	s.add(FileResult{Path: "/src/B.java", Type: "B", Status: StatusSorted, Methods: 1})

	var buf bytes.Buffer
	require.NoError(t, s.RenderText(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "A.java")
	assert.NotContains(t, out, "B.java", "files already in order are not listed")
	assert.Contains(t, out, "sorted 2 units: 1 reordered")

	assert.Len(t, s.Table("/src", true).Rows, 2)
	assert.Equal(t, "A.java", s.Table("/src", true).Rows[0][0])
	assert.Same(t, s, s.RenderData())
}
