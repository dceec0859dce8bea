package core

import (
	"context"
	"net"
	"sync/atomic"
)

// Searcher answers exact-match line queries against the reference file.
// Implementations must be safe for concurrent use by many handlers.
type Searcher interface {
	// Contains reports whether term is present verbatim as a full line of
	// the reference file. It returns an error when the backing file cannot
	// be read.
	Contains(ctx context.Context, term string) (bool, error)
}

// Gate authenticates a raw query line and yields the search term.
type Gate interface {
	// Authenticate checks the raw query against the configured credential.
	// On success it returns the search term with any credential prefix
	// removed and ok = true. On failure ok is false and term is unusable.
	Authenticate(raw string) (term string, ok bool)
}

// ConnectionHandler owns the entire lifecycle of one accepted connection,
// including closing it.
type ConnectionHandler interface {
	HandleConnection(conn net.Conn)
}

// Stats holds process-wide counters fed by handlers and exposed over the
// health API. All fields are updated atomically.
type Stats struct {
	Connections  atomic.Int64
	Queries      atomic.Int64
	Hits         atomic.Int64
	Misses       atomic.Int64
	AuthFailures atomic.Int64
	Errors       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats, suitable for JSON encoding.
type StatsSnapshot struct {
	Connections  int64 `json:"connections"`
	Queries      int64 `json:"queries"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	AuthFailures int64 `json:"auth_failures"`
	Errors       int64 `json:"errors"`
}

// Snapshot returns a consistent-enough copy for reporting.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Connections:  s.Connections.Load(),
		Queries:      s.Queries.Load(),
		Hits:         s.Hits.Load(),
		Misses:       s.Misses.Load(),
		AuthFailures: s.AuthFailures.Load(),
		Errors:       s.Errors.Load(),
	}
}
