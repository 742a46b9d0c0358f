package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ArchiveTeam/dupespotter/internal/model"
	"github.com/ArchiveTeam/dupespotter/internal/noise"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mapSource struct {
	bodies map[string]string
	calls  []string
}

func (s *mapSource) Get(_ context.Context, rawURL string) ([]byte, error) {
	s.calls = append(s.calls, rawURL)
	body, ok := s.bodies[rawURL]
	if !ok {
		return nil, errors.New("no such page")
	}
	return []byte(body), nil
}

func TestFetchStep(t *testing.T) {
	t.Parallel()

	t.Run("fetches both pages", func(t *testing.T) {
		t.Parallel()

		src := &mapSource{bodies: map[string]string{
			"http://example.com/a": "A",
			"http://example.com/b": "",
		}}
		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		if err := NewFetchStep(src, quietLogger()).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if string(job.First.Raw) != "A" {
			t.Errorf("First.Raw = %q", job.First.Raw)
		}
		if !job.Second.IsFetched() {
			t.Error("empty body should still count as fetched")
		}
	})

	t.Run("skips preloaded pages", func(t *testing.T) {
		t.Parallel()

		src := &mapSource{bodies: map[string]string{"http://example.com/b": "B"}}
		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		job.First.Raw = []byte("preloaded")

		if err := NewFetchStep(src, quietLogger()).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if len(src.calls) != 1 || src.calls[0] != "http://example.com/b" {
			t.Errorf("calls = %v", src.calls)
		}
		if string(job.First.Raw) != "preloaded" {
			t.Errorf("First.Raw = %q", job.First.Raw)
		}
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()

		src := &mapSource{bodies: map[string]string{}}
		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		err := NewFetchStep(src, quietLogger()).Do(context.Background(), job)
		if err == nil || !strings.Contains(err.Error(), "http://example.com/a") {
			t.Errorf("Do() error = %v", err)
		}
		if len(src.calls) != 1 {
			t.Errorf("second page fetched after the first failed: %v", src.calls)
		}
	})
}

func TestNormalizeStep(t *testing.T) {
	t.Parallel()

	t.Run("cleans both bodies", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://example.com/articles/1", "http://example.com/articles/2")
		job.First.Raw = []byte("x articles/1 y")
		job.Second.Raw = []byte("x articles/2 y")

		if err := NewNormalizeStep(noise.New()).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if string(job.First.Cleaned) != "x  y" || string(job.Second.Cleaned) != "x  y" {
			t.Errorf("Cleaned = %q, %q", job.First.Cleaned, job.Second.Cleaned)
		}
	})

	t.Run("requires raw bodies", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		if err := NewNormalizeStep(noise.New()).Do(context.Background(), job); !errors.Is(err, ErrNotReady) {
			t.Errorf("Do() error = %v, want ErrNotReady", err)
		}
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://[::1/x", "http://example.com/b")
		job.First.Raw = []byte("a")
		job.Second.Raw = []byte("b")
		if err := NewNormalizeStep(noise.New()).Do(context.Background(), job); !errors.Is(err, noise.ErrInvalidURL) {
			t.Errorf("Do() error = %v, want ErrInvalidURL", err)
		}
	})
}

func TestDiffStep(t *testing.T) {
	t.Parallel()

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		job.First.Raw, job.First.Cleaned = []byte("same\n"), []byte("same\n")
		job.Second.Raw, job.Second.Cleaned = []byte("same!\n"), []byte("same\n")

		if err := NewDiffStep().Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		c := job.Comparison
		if !c.IsDuplicate() || len(c.Diff) != 0 {
			t.Errorf("Comparison = %+v", c)
		}
		if c.First.Fingerprint != c.Second.Fingerprint {
			t.Error("equal cleaned bodies should share a fingerprint")
		}
		if c.Second.RawBytes != 6 || c.Second.CleanedBytes != 5 {
			t.Errorf("Second = %+v", c.Second)
		}
	})

	t.Run("distinct", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		job.First.Raw, job.First.Cleaned = []byte("one\n"), []byte("one\n")
		job.Second.Raw, job.Second.Cleaned = []byte("two\n"), []byte("two\n")

		if err := NewDiffStep().Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		want := []string{
			"--- http://example.com/a\n",
			"+++ http://example.com/b\n",
			"@@ -1 +1 @@\n",
			"-one\n",
			"+two\n",
		}
		got := job.Comparison.Diff
		if strings.Join(got, "") != strings.Join(want, "") {
			t.Errorf("Diff = %q, want %q", got, want)
		}
		if job.Comparison.Hunks != 1 || job.Comparison.IsDuplicate() {
			t.Errorf("Comparison = %+v", job.Comparison)
		}
	})

	t.Run("requires cleaned bodies", func(t *testing.T) {
		t.Parallel()

		job := model.NewJob("", "http://example.com/a", "http://example.com/b")
		if err := NewDiffStep().Do(context.Background(), job); !errors.Is(err, ErrNotReady) {
			t.Errorf("Do() error = %v, want ErrNotReady", err)
		}
	})
}

func TestNewComparePipeline(t *testing.T) {
	t.Parallel()

	src := &mapSource{bodies: map[string]string{
		"http://example.com/story/111": "<p>story/111</p>\n<!-- 1 -->\n",
		"http://example.com/story/222": "<p>story/222</p>\n<!-- 2 -->\n",
	}}
	p := NewComparePipeline(src, noise.New(), quietLogger())
	if got := p.StepNames(); strings.Join(got, ",") != "fetch,normalize,diff" {
		t.Errorf("StepNames() = %v", got)
	}

	job := model.NewJob("", "http://example.com/story/111", "http://example.com/story/222")
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !job.Comparison.IsDuplicate() {
		t.Errorf("expected duplicate, diff = %q", job.Comparison.Diff)
	}
}
