package search

import (
	"context"
	"fmt"
	"os"
)

// ctxCheckInterval is how many lines are scanned between cancellation checks.
const ctxCheckInterval = 8192

// FileSearcher streams the reference file from disk on every query.
// Always-current results at O(file size) per query; no state persists
// between calls, so it is trivially safe for concurrent use.
type FileSearcher struct {
	path string
}

// NewFileSearcher returns a reread-on-query searcher over path.
func NewFileSearcher(path string) *FileSearcher {
	return &FileSearcher{path: path}
}

// Contains scans the file line by line and returns on the first exact match.
func (s *FileSearcher) Contains(ctx context.Context, term string) (bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	sc := newScanner(f)
	for n := 0; sc.Scan(); n++ {
		if sc.Text() == term {
			return true, nil
		}
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("failed to read reference file %s: %w", s.path, err)
	}
	return false, nil
}
