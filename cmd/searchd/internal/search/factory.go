package search

import (
	"github.com/searchbox/linesearchd/cmd/searchd/internal/config"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/core"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
)

// New creates the searcher for the configured mode. In cached mode the
// concrete CachedSearcher is also returned so the caller can wire the file
// watcher to it; it is nil in reread mode.
func New(cfg *config.Config) (core.Searcher, *CachedSearcher, error) {
	if cfg.Search.RereadOnQuery {
		logger.Info("Creating reread-on-query searcher", "path", cfg.File.Path)
		return NewFileSearcher(cfg.File.Path), nil, nil
	}

	logger.Info("Creating cached searcher", "path", cfg.File.Path)
	cached, err := NewCachedSearcher(cfg.File.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Reference file loaded", "path", cfg.File.Path, "lines", cached.Len())
	return cached, cached, nil
}
