package noise

import (
	"errors"
	"testing"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawURL   string
		want     Target
		wantPath string
	}{
		{
			name:     "path query and fragment",
			rawURL:   "http://example.com/foo/bar/?a=1#frag",
			want:     Target{Scheme: "http", Host: "example.com", Path: "/foo/bar/", Query: "a=1", Fragment: "frag"},
			wantPath: "foo/bar",
		},
		{
			name:     "fragment is cut before the query",
			rawURL:   "http://example.com/a?b#c?d",
			want:     Target{Scheme: "http", Host: "example.com", Path: "/a", Query: "b", Fragment: "c?d"},
			wantPath: "a",
		},
		{
			name:     "all trailing slashes and one leading slash removed",
			rawURL:   "http://example.com//a/b///",
			want:     Target{Scheme: "http", Host: "example.com", Path: "//a/b///"},
			wantPath: "/a/b",
		},
		{
			name:     "path keeps its escaping",
			rawURL:   "https://example.com/caf%C3%A9/menu?q=a%20b",
			want:     Target{Scheme: "https", Host: "example.com", Path: "/caf%C3%A9/menu", Query: "q=a%20b"},
			wantPath: "caf%C3%A9/menu",
		},
		{
			name:     "host only",
			rawURL:   "http://example.com",
			want:     Target{Scheme: "http", Host: "example.com"},
			wantPath: "",
		},
		{
			name:     "upper-case scheme",
			rawURL:   "HTTP://example.com/index.html",
			want:     Target{Scheme: "http", Host: "example.com", Path: "/index.html"},
			wantPath: "index.html",
		},
		{
			name:     "stray percent signs are kept",
			rawURL:   "http://example.com/sale/100%-cotton/%zz",
			want:     Target{Scheme: "http", Host: "example.com", Path: "/sale/100%-cotton/%zz"},
			wantPath: "sale/100%-cotton/%zz",
		},
		{
			name:     "bracketed IPv6 host",
			rawURL:   "http://[::1]:8080/index.html",
			want:     Target{Scheme: "http", Host: "[::1]:8080", Path: "/index.html"},
			wantPath: "index.html",
		},
		{
			name:     "leading colon is not a scheme",
			rawURL:   ":no-scheme/page",
			want:     Target{Path: ":no-scheme/page"},
			wantPath: ":no-scheme/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTarget(tt.rawURL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.want.Raw = tt.rawURL
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.rawURL, got, tt.want)
			}
			if p := got.NormalizedPath(); p != tt.wantPath {
				t.Errorf("NormalizedPath() = %q, want %q", p, tt.wantPath)
			}
		})
	}
}

func TestParseTargetMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"http://[::1", "http://::1]/x", "http://]::1[/x", "http://[zz]/x", "http://[127.0.0.1]/x"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			_, err := ParseTarget(raw)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL, got %v", err)
			}
		})
	}
}

func TestTargetThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawURL    string
		wantPath  bool
		wantQuery bool
	}{
		{"http://example.com/abcd", false, false},
		{"http://example.com/abcd/", false, false},
		{"http://example.com/abcde", true, false},
		{"http://example.com/ab/cd", true, false},
		{"http://example.com/?ab", false, false},
		{"http://example.com/?abc", false, true},
		{"http://example.com/caf%C3", true, false},
		{"http://example.com/日本語ab", true, false},
		{"http://example.com/日本語a", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			t.Parallel()

			target, err := ParseTarget(tt.rawURL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := target.HasUsablePath(); got != tt.wantPath {
				t.Errorf("HasUsablePath() = %v, want %v", got, tt.wantPath)
			}
			if got := target.HasUsableQuery(); got != tt.wantQuery {
				t.Errorf("HasUsableQuery() = %v, want %v", got, tt.wantQuery)
			}
		})
	}
}
