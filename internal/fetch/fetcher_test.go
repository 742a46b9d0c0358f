package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>hello</html>")
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), WithLogger(quietLogger()))
		resp, err := f.Fetch(context.Background(), srv.URL+"/page")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
		}
		if string(resp.Body) != "<html>hello</html>" {
			t.Errorf("Body = %q", resp.Body)
		}
		if resp.Truncated {
			t.Error("Truncated = true, want false")
		}
	})

	t.Run("error status bodies are kept", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "not here")
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), WithLogger(quietLogger()))
		body, err := f.Get(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(body) != "not here" {
			t.Errorf("Get() = %q, want %q", body, "not here")
		}
	})

	t.Run("sends user agent and site headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCookie string
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCookie = r.Header.Get("Cookie")
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(),
			WithLogger(quietLogger()),
			WithUserAgent("test-agent/1.0"),
			WithHeaders(func(host string) http.Header {
				if host != "127.0.0.1" {
					return nil
				}
				return http.Header{"Cookie": []string{"session=abc"}}
			}),
		)
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if gotUA != "test-agent/1.0" {
			t.Errorf("User-Agent = %q", gotUA)
		}
		if gotCookie != "session=abc" {
			t.Errorf("Cookie = %q", gotCookie)
		}
	})

	t.Run("default user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), WithLogger(quietLogger()), WithUserAgent(""))
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if gotUA != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
		}
	})

	t.Run("truncates large bodies", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, strings.Repeat("x", 100))
		}))
		defer srv.Close()

		f := NewFetcher(srv.Client(), WithLogger(quietLogger()), WithMaxBodySize(10))
		resp, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(resp.Body) != 10 {
			t.Errorf("len(Body) = %d, want 10", len(resp.Body))
		}
		if !resp.Truncated {
			t.Error("Truncated = false, want true")
		}
	})

	t.Run("follows redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusFound)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "moved")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		f := NewFetcher(srv.Client(), WithLogger(quietLogger()))
		resp, err := f.Fetch(context.Background(), srv.URL+"/old")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(resp.Body) != "moved" {
			t.Errorf("Body = %q", resp.Body)
		}
		if resp.FinalURL != srv.URL+"/new" {
			t.Errorf("FinalURL = %q", resp.FinalURL)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		addr := srv.URL
		srv.Close()

		f := NewFetcher(http.DefaultClient, WithLogger(quietLogger()))
		_, err := f.Fetch(context.Background(), addr)
		if !errors.Is(err, ErrTransport) {
			t.Errorf("Fetch() error = %v, want ErrTransport", err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(http.DefaultClient, WithLogger(quietLogger()))
		_, err := f.Fetch(context.Background(), "http://exa mple.com/%zz")
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Fetch() error = %v, want ErrInvalidRequest", err)
		}
	})
}

// doerFunc adapts a function to Doer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestFetcherFetchWithoutRequestOnResponse(t *testing.T) {
	t.Parallel()

	client := doerFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("canned")),
		}, nil
	})

	f := NewFetcher(client, WithLogger(quietLogger()))
	resp, err := f.Fetch(context.Background(), "http://example.com/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.FinalURL != "http://example.com/page" {
		t.Errorf("FinalURL = %q, want the requested URL", resp.FinalURL)
	}
	if string(resp.Body) != "canned" {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestFetcherGetLogs(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/big", http.StatusFound)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := NewFetcher(srv.Client(), WithLogger(logger), WithMaxBodySize(10))
	body, err := f.Get(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(body) != 10 {
		t.Errorf("len(body) = %d, want 10", len(body))
	}

	out := logs.String()
	for _, want := range []string{
		`msg="response body truncated"`,
		"limit=10",
		`msg="keeping error response body"`,
		"status=503",
		"final_url=" + srv.URL + "/big",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in logs:\n%s", want, out)
		}
	}
}
