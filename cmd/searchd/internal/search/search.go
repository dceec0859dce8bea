// Package search implements the exact-match line search engines.
//
// Two engines exist: FileSearcher re-reads the reference file from disk on
// every query, CachedSearcher loads it once into an in-memory set. Matching
// is exact full-line equality: a term matches iff it is byte-identical to a
// line of the file after line terminators are stripped on both sides (lines
// are split on '\n', a trailing '\r' is removed).
package search

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single reference file line during scanning.
const maxLineSize = 1024 * 1024

// TrimLineEnding strips one trailing line terminator ("\n" or "\r\n") from s.
// Interior terminators are untouched; they cannot occur in line-framed input.
func TrimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// loadSet reads the whole file into a set keyed by line content.
func loadSet(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	lines := make(map[string]struct{})
	sc := newScanner(f)
	for sc.Scan() {
		lines[sc.Text()] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	return lines, nil
}
