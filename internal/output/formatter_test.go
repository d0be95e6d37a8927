package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vestigehq/vestige/pkg/models"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json":     FormatJSON,
		"JSON":     FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"yaml":     FormatYAML,
		"yml":      FormatYAML,
		"toon":     FormatTOON,
		"text":     FormatText,
		"bogus":    FormatText,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func sampleTable() *Table {
	return NewTable("Findings",
		[]string{"File", "Kind"},
		[][]string{
			{"a.ts", "unused-import"},
			{"b.ts", "dead-function"},
		},
		nil, nil)
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Findings") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "a.ts") || !strings.Contains(out, "unused-import") {
		t.Errorf("missing row content:\n%s", out)
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "## Findings") {
		t.Errorf("missing markdown heading:\n%s", out)
	}
	if !strings.Contains(out, "| a.ts | unused-import |") {
		t.Errorf("missing markdown row:\n%s", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Errorf("missing separator row:\n%s", out)
	}
}

func TestTableRenderDataFallsBackToRows(t *testing.T) {
	data := sampleTable().RenderData()
	rows, ok := data.([]map[string]string)
	if !ok {
		t.Fatalf("RenderData returned %T, want []map[string]string", data)
	}
	if len(rows) != 2 || rows[0]["File"] != "a.ts" {
		t.Errorf("unexpected rows: %#v", rows)
	}
}

// formatToFile runs a Formatter against a temp file and returns the output.
func formatToFile(t *testing.T, format Format, data any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	f, err := NewFormatter(format, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Output(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestFormatterFileOutputDisablesColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	f, err := NewFormatter(FormatText, path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.Colored() {
		t.Error("file output should disable color")
	}
}

func TestFormatterStructuredFormats(t *testing.T) {
	stats := models.CacheStats{Hits: 3, Misses: 1, HitRate: 0.75, TotalEntries: 2}

	jsonOut := formatToFile(t, FormatJSON, stats)
	if !strings.Contains(jsonOut, `"hits": 3`) {
		t.Errorf("json output missing hits:\n%s", jsonOut)
	}

	yamlOut := formatToFile(t, FormatYAML, stats)
	if !strings.Contains(yamlOut, "hits: 3") {
		t.Errorf("yaml output missing hits:\n%s", yamlOut)
	}

	toonOut := formatToFile(t, FormatTOON, stats)
	if !strings.Contains(toonOut, "3") {
		t.Errorf("toon output missing hit count:\n%s", toonOut)
	}
}

func TestFindingsTable(t *testing.T) {
	summary := models.NewWorkspaceAnalysisResult()
	summary.Add(models.FileAnalysisResult{
		Path:    "a.ts",
		Success: true,
		Findings: []models.Finding{{
			ID:               "0000000000000001",
			Kind:             models.KindUnusedImport,
			Certainty:        models.CertaintyHigh,
			Locations:        []models.Location{{File: "a.ts", StartLine: 1}},
			SymbolName:       "x",
			SafeFixAvailable: true,
		}},
	})

	tbl := FindingsTable(summary, false)
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	if row[0] != "a.ts" || row[2] != "unused-import" || row[5] != "safe" {
		t.Errorf("unexpected row: %v", row)
	}
	if tbl.RenderData() != summary {
		t.Error("RenderData should return the summary")
	}
}

func TestCyclesTable(t *testing.T) {
	tbl := CyclesTable([]models.Cycle{
		{Nodes: []string{"a.ts", "b.ts"}, IsDirect: true},
		{Nodes: []string{"x.ts", "y.ts", "z.ts"}},
	})
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][1] != "direct" || tbl.Rows[1][1] != "indirect" {
		t.Errorf("unexpected kinds: %v", tbl.Rows)
	}
	if tbl.Rows[1][2] != "x.ts -> y.ts -> z.ts" {
		t.Errorf("unexpected members: %q", tbl.Rows[1][2])
	}
}

func TestSectionRenderText(t *testing.T) {
	s := &Section{
		Title:   "Cache",
		Content: "hits: 3",
		Sections: []Section{
			{Title: "Detail", Content: "entries: 2"},
		},
	}
	var buf bytes.Buffer
	if err := s.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Cache\n=====") {
		t.Errorf("missing top-level underline:\n%s", out)
	}
	if !strings.Contains(out, "Detail\n------") {
		t.Errorf("missing nested underline:\n%s", out)
	}
}
