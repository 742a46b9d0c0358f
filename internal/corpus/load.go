package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ArchiveTeam/dupespotter/internal/cache"
	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// DefaultDir is the corpus directory used when none is given.
const DefaultDir = "tests"

// infoSuffix marks the sidecar holding a body's URL. It matches the file
// cache layout, so a cache entry can be copied into a pair directory as is.
const infoSuffix = ".info.json"

// Load reads every pair under dir, sorted by pair name. A malformed pair
// does not fail the load; its job comes back with Error set.
func Load(dir string) ([]*model.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read corpus %s: %w", dir, err)
	}

	jobs := make([]*model.Job, 0, len(entries))
	for _, e := range entries {
		// Stray files and hidden directories (.git, editor state) are not pairs.
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		job, err := LoadPair(filepath.Join(dir, e.Name()))
		if err != nil {
			// Keep the pair in the results so the summary counts it as errored.
			job = &model.Job{Name: e.Name(), First: &model.Page{}, Second: &model.Page{}, Error: err.Error()}
		}
		jobs = append(jobs, job)
	}
	slices.SortFunc(jobs, func(a, b *model.Job) int { return strings.Compare(a.Name, b.Name) })
	return jobs, nil
}

// LoadPair reads one pair directory into a job whose pages already carry
// their raw bodies.
func LoadPair(dir string) (*model.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPair, dir, err)
	}

	var bodies []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), infoSuffix) {
			continue
		}
		bodies = append(bodies, e.Name())
	}
	if len(bodies) != 2 {
		return nil, fmt.Errorf("%w: %s has %d bodies, want 2", ErrMalformedPair, dir, len(bodies))
	}
	// Body files are named by cache key, so sorting gives a stable order.
	slices.Sort(bodies)

	pages := make([]*model.Page, 2)
	for i, name := range bodies {
		page, err := loadPage(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pages[i] = page
	}

	return &model.Job{Name: filepath.Base(dir), First: pages[0], Second: pages[1]}, nil
}

// loadPage reads a body and the URL from its sidecar. The URL is needed
// because the normalizer strips echoes of it from the body.
func loadPage(path string) (*model.Page, error) {
	info, err := cache.ReadInfo(path + infoSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPair, err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("%w: %s%s has no url", ErrMalformedPair, path, infoSuffix)
	}
	body, err := os.ReadFile(path) //nolint:gosec // corpus paths come from the operator
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPair, err)
	}
	page := model.NewPage(info.URL)
	page.Raw = body
	return page, nil
}
