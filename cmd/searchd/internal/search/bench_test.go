package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Benchmarks comparing the two served modes against a sorted-slice binary
// search baseline over the same fixture.

const benchLines = 100000

func benchFixture(b *testing.B) (path string, present, absent string) {
	b.Helper()
	var sb strings.Builder
	for i := 0; i < benchLines; i++ {
		fmt.Fprintf(&sb, "line-%06d;with;some;payload\n", i)
	}
	path = filepath.Join(b.TempDir(), "bench.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		b.Fatal(err)
	}
	present = fmt.Sprintf("line-%06d;with;some;payload", benchLines-1)
	absent = "line-that-is-not-there"
	return path, present, absent
}

func BenchmarkRereadSearch(b *testing.B) {
	path, present, _ := benchFixture(b)
	s := NewFileSearcher(path)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if found, err := s.Contains(ctx, present); err != nil || !found {
			b.Fatalf("found=%v err=%v", found, err)
		}
	}
}

func BenchmarkCachedSearch(b *testing.B) {
	path, present, _ := benchFixture(b)
	s, err := NewCachedSearcher(path)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if found, err := s.Contains(ctx, present); err != nil || !found {
			b.Fatalf("found=%v err=%v", found, err)
		}
	}
}

func BenchmarkCachedSearchMiss(b *testing.B) {
	path, _, absent := benchFixture(b)
	s, err := NewCachedSearcher(path)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if found, err := s.Contains(ctx, absent); err != nil || found {
			b.Fatalf("found=%v err=%v", found, err)
		}
	}
}

// BenchmarkSortedSliceSearch measures the binary-search alternative that
// lost out to the set: comparable lookup cost but O(n log n) load and no
// cheap wholesale swap.
func BenchmarkSortedSliceSearch(b *testing.B) {
	path, present, _ := benchFixture(b)
	lines, err := loadSet(path)
	if err != nil {
		b.Fatal(err)
	}
	sorted := make([]string, 0, len(lines))
	for line := range lines {
		sorted = append(sorted, line)
	}
	sort.Strings(sorted)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx := sort.SearchStrings(sorted, present)
		if idx >= len(sorted) || sorted[idx] != present {
			b.Fatal("not found")
		}
	}
}

func BenchmarkCachedSearchParallel(b *testing.B) {
	path, present, _ := benchFixture(b)
	s, err := NewCachedSearcher(path)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if found, err := s.Contains(ctx, present); err != nil || !found {
				b.Fatalf("found=%v err=%v", found, err)
			}
		}
	})
}
