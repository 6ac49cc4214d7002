package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type methodRow struct {
	Signature string `json:"signature" yaml:"signature"`
	Line      int    `json:"line" yaml:"line"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"toon", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructured(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOON} {
		if !f.Structured() {
			t.Errorf("%s should be structured", f)
		}
	}
	for _, f := range []Format{FormatText, FormatMarkdown} {
		if f.Structured() {
			t.Errorf("%s should not be structured", f)
		}
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "order.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output should never be colored")
	}
	if err := f.Output([]methodRow{{"run()", 3}}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var rows []methodRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	if len(rows) != 1 || rows[0].Signature != "run()" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, "/nonexistent/dir/out.txt", false); err == nil {
		t.Error("NewFormatter() should fail for an unwritable path")
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable(
		"Method Order",
		[]string{"Rank", "Signature", "Line"},
		[][]string{
			{"1", "run()", "3"},
			{"2", "helper(int)", "9"},
		},
		[]string{"", "2 methods", ""},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Method Order", "RANK", "SIGNATURE", "run()", "helper(int)", "2 METHODS"} {
		if !strings.Contains(out, want) && !strings.Contains(strings.ToUpper(out), want) {
			t.Errorf("RenderText() missing %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "run()") > strings.Index(out, "helper(int)") {
		t.Error("rows should keep their order")
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Clusters", []string{"Kind", "Members"},
		[][]string{{"overloaded", "foo() | foo(int)"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	want := "## Clusters\n\n| Kind | Members |\n| --- | --- |\n| overloaded | foo() \\| foo(int) |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}, {"3"}}, nil, nil)
	rows, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() type = %T", table.RenderData())
	}
	if rows[0]["A"] != "1" || rows[0]["B"] != "2" {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if _, ok := rows[1]["B"]; ok {
		t.Error("short rows should not invent cells")
	}

	data := []methodRow{{"a()", 1}}
	if got := NewTable("", nil, nil, nil, data).RenderData(); got == nil {
		t.Error("explicit data should be returned")
	}
}

func TestSectionRendering(t *testing.T) {
	s := &Section{
		Title:   "Cycles",
		Content: "a() -> b() -> a()",
		Sections: []Section{
			{Title: "Detail", Content: "2 methods"},
		},
	}

	var text bytes.Buffer
	if err := s.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	for _, want := range []string{"Cycles\n======", "Detail\n------", "2 methods"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("RenderText() missing %q in:\n%s", want, text.String())
		}
	}

	var md bytes.Buffer
	if err := s.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.Contains(md.String(), "## Cycles") || !strings.Contains(md.String(), "### Detail") {
		t.Errorf("RenderMarkdown() levels wrong:\n%s", md.String())
	}
	if s.RenderData() != s {
		t.Error("section without data should serialize itself")
	}
}

func TestReportRendering(t *testing.T) {
	r := &Report{
		Title: "Demo.java",
		Sections: []Renderable{
			NewTable("Order", []string{"Signature"}, [][]string{{"a()"}}, nil, nil),
			&Section{Title: "Cycles", Content: "none"},
		},
	}

	var text bytes.Buffer
	if err := r.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := text.String()
	if !strings.HasPrefix(out, "Demo.java\n=========") {
		t.Errorf("report title missing:\n%s", out)
	}
	if strings.Index(out, "Order") > strings.Index(out, "Cycles") {
		t.Error("sections should keep their order")
	}

	var md bytes.Buffer
	if err := r.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if !strings.HasPrefix(md.String(), "# Demo.java") {
		t.Errorf("markdown title missing:\n%s", md.String())
	}

	data, ok := r.RenderData().(map[string]any)
	if !ok || data["title"] != "Demo.java" {
		t.Errorf("RenderData() = %v", r.RenderData())
	}
}

func TestFormatterStructuredFormats(t *testing.T) {
	rows := []methodRow{{"run()", 3}, {"helper()", 9}}
	table := NewTable("Order", []string{"Signature", "Line"}, nil, nil, rows)

	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatYAML, &buf, false).Output(table); err != nil {
		t.Fatalf("Output(yaml) error: %v", err)
	}
	var decoded []methodRow
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || decoded[1].Signature != "helper()" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := NewWriterFormatter(FormatTOON, &buf, false).Output(table); err != nil {
		t.Fatalf("Output(toon) error: %v", err)
	}
	if !strings.Contains(buf.String(), "helper()") {
		t.Errorf("TOON output missing data:\n%s", buf.String())
	}
}

func TestFormatterOutputRawMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output(map[string]int{"methods": 2}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	want := "```json\n{\n  \"methods\": 2\n}\n```\n"
	if buf.String() != want {
		t.Errorf("Output() = %q, want %q", buf.String(), want)
	}
}

func TestEncode(t *testing.T) {
	out, err := Encode(map[string]string{"order": "a()"}, FormatJSON)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(out) != "{\n  \"order\": \"a()\"\n}\n" {
		t.Errorf("Encode(json) = %q", out)
	}

	out, err = Encode(map[string]string{"order": "a()"}, FormatText)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !strings.Contains(string(out), "order") {
		t.Errorf("Encode(text) should fall back to TOON, got %q", out)
	}
}

func TestFormatterMessageMethods(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)

	f.Success("sorted %d files", 2)
	f.Warning("%s has no top-level type", "Empty.java")
	f.Error("failed")
	f.Info("cache hit")

	want := "sorted 2 files\nWARNING: Empty.java has no top-level type\nERROR: failed\ncache hit\n"
	if buf.String() != want {
		t.Errorf("messages = %q, want %q", buf.String(), want)
	}
}

func TestStatusColor(t *testing.T) {
	for _, s := range []string{"error", "reordered", "sorted", "other"} {
		if !strings.Contains(StatusColor(s), s) {
			t.Errorf("StatusColor(%q) lost its text", s)
		}
	}
}
