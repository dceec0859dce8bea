package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnChange(t *testing.T) {
	path := writeRefFile(t, "apple\n")
	s, err := NewCachedSearcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, s))

	require.NoError(t, os.WriteFile(path, []byte("apple\ncherry\n"), 0644))

	require.Eventually(t, func() bool {
		found, err := s.Contains(context.Background(), "cherry")
		return err == nil && found
	}, 5*time.Second, 20*time.Millisecond, "watcher should reload the cache after a write")
}

func TestWatchMissingDirectory(t *testing.T) {
	s := &CachedSearcher{path: "/nonexistent-dir-for-watch/reference.txt", lines: map[string]struct{}{}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Error(t, Watch(ctx, s))
}
