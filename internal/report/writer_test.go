package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

const (
	url1 = "http://example.com/a?x=1&y=2"
	url2 = "http://example.com/b"
)

func distinctComparison() *model.Comparison {
	first := model.NewPage(url1)
	first.Raw, first.Cleaned = []byte("<p>one</p>\n"), []byte("<p>one</p>\n")
	second := model.NewPage(url2)
	second.Raw, second.Cleaned = []byte("<p>two!</p>\n"), []byte("<p>two</p>\n")

	return model.NewComparison(
		model.Summarize(first, "aaaaaaaaaaaaaaaaaaaaaaaa"),
		model.Summarize(second, "bbbbbbbbbbbbbbbbbbbbbbbb"),
		[]string{
			"--- " + url1 + "\n",
			"+++ " + url2 + "\n",
			"@@ -1 +1 @@\n",
			"-<p>one</p>\n",
			"+<p>two</p>\n",
		},
	)
}

func duplicateComparison() *model.Comparison {
	first := model.NewPage(url1)
	first.Raw, first.Cleaned = []byte("same\n"), []byte("same\n")
	second := model.NewPage(url2)
	second.Raw, second.Cleaned = []byte("same\n"), []byte("same\n")
	return model.NewComparison(model.Summarize(first, "f"), model.Summarize(second, "f"), nil)
}

func testSummary() *model.CorpusSummary {
	return model.NewCorpusSummary("tests", []model.CorpusResult{
		{Name: "alpha", Comparison: duplicateComparison()},
		{Name: "beta", Comparison: distinctComparison()},
		{Name: "gamma", Error: "malformed pair: gamma has 1 bodies, want 2"},
	}, 1500*time.Millisecond)
}

func TestSimpleWriterComparison(t *testing.T) {
	t.Parallel()

	t.Run("distinct pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(distinctComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.URLKey(url1) + ` == md5("` + url1 + `")` + "\n" +
			model.URLKey(url2) + ` == md5("` + url2 + `")` + "\n" +
			"After processing,\n" +
			`len(body("` + url1 + `")) == 11` + "\n" +
			`len(body("` + url2 + `")) == 11` + "\n" +
			"--- " + url1 + "\n" +
			"+++ " + url2 + "\n" +
			"@@ -1 +1 @@\n" +
			"-<p>one</p>\n" +
			"+<p>two</p>\n"
		if got := buf.String(); got != want {
			t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("duplicate pages end after lengths", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteComparison(duplicateComparison())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, wrote %d", n, buf.Len())
		}
		if !strings.HasSuffix(buf.String(), `len(body("`+url2+`")) == 5`+"\n") {
			t.Errorf("unexpected tail: %q", buf.String())
		}
	})

	t.Run("quotes urls", func(t *testing.T) {
		t.Parallel()

		c := duplicateComparison()
		c.First.URL = `http://example.com/"q"`
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `md5("http://example.com/\"q\"")`) {
			t.Errorf("url not quoted: %s", buf.String())
		}
	})
}

func TestSimpleWriterCorpus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).WriteCorpus(testSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"alpha\n\nbeta\n--- ",
		"+<p>two</p>\n\ngamma\nerror: malformed pair",
		"3 pairs: 1 passed, 1 failed, 1 errored\n",
		"Done in 1.500000 seconds\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewJSONWriter(&buf).WriteComparison(distinctComparison())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, wrote %d", n, buf.Len())
		}

		var got model.Comparison
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Verdict != model.VerdictDistinct || got.Hunks != 1 || got.First.URL != url1 {
			t.Errorf("decoded = %+v", got)
		}
		if !strings.Contains(buf.String(), "<p>one</p>") || !strings.Contains(buf.String(), "&y=2") {
			t.Errorf("HTML was escaped: %s", buf.String())
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact single-line output")
		}
	})

	t.Run("pretty printed corpus", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteCorpus(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"dir\": \"tests\"") {
			t.Errorf("expected indented output: %s", buf.String())
		}

		var got model.CorpusSummary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Total != 3 || len(got.Results) != 3 || got.Results[2].Error == "" {
			t.Errorf("decoded = %+v", got)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("distinct comparison has a diff block", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(distinctComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Duplicate Check", "```diff", "+<p>two</p>", "**Distinct**", "[!WARNING]"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("duplicate comparison has no diff block", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(duplicateComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "```diff") {
			t.Error("unexpected diff block")
		}
		if !strings.Contains(out, "**Duplicate**") || !strings.Contains(out, "[!TIP]") {
			t.Errorf("missing verdict:\n%s", out)
		}
	})

	t.Run("corpus report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteCorpus(testSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Corpus Report",
			"```mermaid",
			"Pair Outcomes",
			"## Pairs",
			"### beta",
			"[!CAUTION]",
			"<summary>gamma</summary>",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "### alpha") {
			t.Error("passing pair should not get a diff section")
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := model.NewCorpusSummary("empty", nil, 0)
		if _, err := NewMarkdownWriter(&buf).WriteCorpus(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("empty corpus should have no chart")
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "*report.SimpleWriter"},
		{FormatJSON, "*report.JSONWriter"},
		{FormatMarkdown, "*report.MarkdownWriter"},
		{Format("bogus"), "*report.SimpleWriter"},
	}
	for _, tt := range tests {
		got := New(tt.format, &buf)
		var name string
		switch got.(type) {
		case *SimpleWriter:
			name = "*report.SimpleWriter"
		case *JSONWriter:
			name = "*report.JSONWriter"
		case *MarkdownWriter:
			name = "*report.MarkdownWriter"
		}
		if name != tt.want {
			t.Errorf("New(%q) = %s, want %s", tt.format, name, tt.want)
		}
	}
}

func TestVerdictLabel(t *testing.T) {
	t.Parallel()

	if got := verdictLabel(model.VerdictDuplicate); got != "Duplicate" {
		t.Errorf("verdictLabel(duplicate) = %q", got)
	}
	if got := resultLabel(model.CorpusResult{Error: "x"}); got != "Error" {
		t.Errorf("resultLabel(error) = %q", got)
	}
}
