package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"
)

const infoSuffix = ".info.json"

// FileStore keeps each body in its own file under a directory.
//
// The layout is the one the original Python tool wrote: the body in a file
// named by the md5 hex of the URL, and the URL itself in "<key>.info.json".
// Existing cache directories from that tool can be reused unchanged.
//
// Design decision: the sidecar is written first and both files are renamed
// into place. A reader that finds the body can therefore always find its
// URL, and a crash never leaves a half-written body behind.
type FileStore struct {
	dir    string
	logger *slog.Logger

	// mu guards locks, which serializes writers per key.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating the directory
// if it does not exist.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	o := buildOptions(opts)
	return &FileStore{
		dir:    dir,
		logger: o.logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that holds the body for rawURL.
func (s *FileStore) Path(rawURL string) string {
	return filepath.Join(s.dir, Key(rawURL))
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(s.Path(rawURL))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached body: %w", err)
	}
	return body, nil
}

// Put implements Store. The sidecar is written before the body, and both
// are written to a temporary file and renamed into place.
func (s *FileStore) Put(ctx context.Context, rawURL string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := Key(rawURL)
	unlock := s.lock(key)
	defer unlock()

	// First body wins.
	path := s.Path(rawURL)
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("body already cached", "url", rawURL, "key", key)
		return nil
	}

	info, err := encodeInfo(Info{URL: rawURL})
	if err != nil {
		return fmt.Errorf("failed to encode cache sidecar: %w", err)
	}
	if err := writeFileAtomic(path+infoSuffix, info); err != nil {
		return fmt.Errorf("failed to write cache sidecar: %w", err)
	}
	if err := writeFileAtomic(path, body); err != nil {
		return fmt.Errorf("failed to write cached body: %w", err)
	}

	s.logger.Debug("cached body", "url", rawURL, "key", key, "bytes", len(body))
	return nil
}

// List implements Store. Bodies without a readable sidecar are skipped.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*"+infoSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}
	slices.Sort(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := ReadInfo(name)
		if err != nil {
			s.logger.Warn("skipping unreadable sidecar", "path", name, "error", err)
			continue
		}
		bodyPath := strings.TrimSuffix(name, infoSuffix)
		st, err := os.Stat(bodyPath)
		if err != nil {
			// Sidecar without a body: an interrupted Put.
			continue
		}
		entries = append(entries, Entry{
			Key:      filepath.Base(bodyPath),
			URL:      info.URL,
			Size:     st.Size(),
			StoredAt: st.ModTime(),
		})
	}
	return entries, nil
}

// Close implements Store. It is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// ReadInfo reads a "<key>.info.json" sidecar.
func ReadInfo(path string) (Info, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the cache directory
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("invalid sidecar %s: %w", path, err)
	}
	return info, nil
}

// encodeInfo writes the sidecar byte for byte as the Python tool did with
// json.dumps: a space after the colon, non-ASCII escaped as \uXXXX, and
// '&', '<' and '>' left alone.
func encodeInfo(info Info) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(info.URL); err != nil {
		return nil, err
	}
	quoted := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	out := make([]byte, 0, len(quoted)+16)
	out = append(out, `{"url": `...)
	out = appendASCII(out, quoted)
	out = append(out, '}')
	return out, nil
}

// appendASCII appends s with every non-ASCII rune written as a \uXXXX
// escape, astral runes as a surrogate pair.
func appendASCII(dst, s []byte) []byte {
	const hex = "0123456789abcdef"
	for len(s) > 0 {
		r, size := utf8.DecodeRune(s)
		s = s[size:]
		if r < utf8.RuneSelf {
			dst = append(dst, byte(r))
			continue
		}
		units := []rune{r}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			units = []rune{r1, r2}
		}
		for _, u := range units {
			dst = append(dst, '\\', 'u', hex[u>>12&0xf], hex[u>>8&0xf], hex[u>>4&0xf], hex[u&0xf])
		}
	}
	return dst
}

// lock serializes writers of one key.
func (s *FileStore) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// writeFileAtomic writes data to a temporary file in the same directory
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
