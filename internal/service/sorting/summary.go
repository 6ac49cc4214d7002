package sorting

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/stepdown/internal/output"
)

// Summary aggregates a batch run.
type Summary struct {
	Mode      string       `json:"mode" yaml:"mode" toon:"mode"`
	Files     []FileResult `json:"files" yaml:"files" toon:"files"`
	Sorted    int          `json:"sorted" yaml:"sorted" toon:"sorted"`
	Reordered int          `json:"reordered" yaml:"reordered" toon:"reordered"`
	Unsorted  int          `json:"unsorted" yaml:"unsorted" toon:"unsorted"`
	Cached    int          `json:"cached" yaml:"cached" toon:"cached"`
	Skipped   int          `json:"skipped" yaml:"skipped" toon:"skipped"`
	Failed    int          `json:"failed" yaml:"failed" toon:"failed"`
}

func (s *Summary) add(r FileResult) {
	s.Files = append(s.Files, r)
	switch r.Status {
	case StatusSorted:
		s.Sorted++
	case StatusReordered:
		s.Reordered++
	case StatusUnsorted:
		s.Unsorted++
	case StatusCached:
		s.Cached++
	case StatusSkipped:
		s.Skipped++
	}
}

// Units counts the files whose type went through the sorter, cached
// verdicts included.
func (s *Summary) Units() int {
	return s.Sorted + s.Reordered + s.Unsorted + s.Cached
}

// Clean reports whether a check run found nothing to reorder.
func (s *Summary) Clean() bool {
	return s.Unsorted == 0
}

// Line is the one-line wrap-up printed after a run.
func (s *Summary) Line() string {
	switch s.Mode {
	case "check":
		return fmt.Sprintf("checked %d units: %d out of order", s.Units(), s.Unsorted)
	default:
		return fmt.Sprintf("sorted %d units: %d reordered", s.Units(), s.Reordered)
	}
}

// Table lists the files a run touched. Unless verbose, files already in
// order are left out.
func (s *Summary) Table(root string, verbose bool) *output.Table {
	var rows [][]string
	for _, f := range s.Files {
		if !verbose && (f.Status == StatusSorted || f.Status == StatusCached) {
			continue
		}
		rows = append(rows, []string{relPath(root, f.Path), f.Type, strconv.Itoa(f.Methods), string(f.Status), f.Reason})
	}
	return output.NewTable("", []string{"File", "Type", "Methods", "Status", "Reason"}, rows, nil, s)
}

// RenderText writes the table of touched files and the wrap-up line.
func (s *Summary) RenderText(w io.Writer, colored bool) error {
	t := s.Table("", false)
	if len(t.Rows) > 0 {
		if colored {
			for _, row := range t.Rows {
				row[3] = output.StatusColor(row[3])
			}
		}
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}
	if colored {
		color.New(color.FgGreen).Fprintln(w, s.Line())
	} else {
		fmt.Fprintln(w, s.Line())
	}
	return nil
}

func (s *Summary) RenderMarkdown(w io.Writer) error {
	t := s.Table("", false)
	t.Title = "Stepdown " + s.Mode
	if err := t.RenderMarkdown(w); err != nil {
		return err
	}
	fmt.Fprintln(w, s.Line())
	return nil
}

func (s *Summary) RenderData() any {
	return s
}

func relPath(root, path string) string {
	if root == "" {
		if wd, err := filepath.Abs("."); err == nil {
			root = wd
		}
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
