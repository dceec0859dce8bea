package search

import (
	"context"
	"sync"
)

// CachedSearcher serves queries from an in-memory set of the file's lines.
// The set is built once at construction and only ever replaced wholesale by
// Reload, under the write lock, so readers never observe a partially
// populated set.
type CachedSearcher struct {
	path string

	mu    sync.RWMutex
	lines map[string]struct{}
}

// NewCachedSearcher loads path into memory. A load failure here is returned
// to the caller; the server treats it as fatal at startup.
func NewCachedSearcher(path string) (*CachedSearcher, error) {
	lines, err := loadSet(path)
	if err != nil {
		return nil, err
	}
	return &CachedSearcher{path: path, lines: lines}, nil
}

// Contains looks the term up in the cached set.
func (c *CachedSearcher) Contains(ctx context.Context, term string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.RLock()
	_, ok := c.lines[term]
	c.mu.RUnlock()
	return ok, nil
}

// Reload re-reads the file and atomically swaps in the new set. On read
// failure the previous set stays in place and keeps serving.
func (c *CachedSearcher) Reload() error {
	lines, err := loadSet(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()
	return nil
}

// Len reports the number of distinct cached lines.
func (c *CachedSearcher) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}
