// Package protocol implements the line-oriented query protocol served to
// clients. One request line yields exactly one response line; the connection
// persists across queries until the client disconnects or sends input the
// server cannot frame.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/core"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/search"
)

// MaxQueryBytes bounds one query line, terminator included.
const MaxQueryBytes = 1024

// Response literals on the wire.
const (
	ResponseExists     = "STRING EXISTS\n"
	ResponseNotFound   = "STRING NOT FOUND\n"
	ResponseAuthFailed = "Authentication failed - PSK mismatch.\n"
	ResponseError      = "Could not handle your request. Please try again later.\n"
)

// Handler serves the query protocol on one connection at a time.
// A single Handler is shared by all connections; it holds no per-connection
// state.
type Handler struct {
	searcher    core.Searcher
	gate        core.Gate
	readTimeout time.Duration
	stats       *core.Stats
}

// NewHandler builds a connection handler. readTimeout of 0 disables the
// per-read deadline. A nil stats gets a private, unexported sink.
func NewHandler(searcher core.Searcher, gate core.Gate, readTimeout time.Duration, stats *core.Stats) *Handler {
	if stats == nil {
		stats = &core.Stats{}
	}
	return &Handler{
		searcher:    searcher,
		gate:        gate,
		readTimeout: readTimeout,
		stats:       stats,
	}
}

// HandleConnection implements core.ConnectionHandler.
// It takes full ownership of the connection lifecycle.
func (h *Handler) HandleConnection(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	h.stats.Connections.Add(1)
	logger.Debug("Connection established", "remote_addr", remote)

	// The buffer size doubles as the framing limit: a line that does not fit
	// surfaces as bufio.ErrBufferFull instead of unbounded buffering.
	reader := bufio.NewReaderSize(conn, MaxQueryBytes)

	for {
		if h.readTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
				logger.Warn("Failed to set read deadline", "remote_addr", remote, "error", err)
				return
			}
		}

		line, err := reader.ReadSlice('\n')
		lastQuery := false
		if err != nil {
			switch {
			case errors.Is(err, bufio.ErrBufferFull):
				h.stats.Errors.Add(1)
				logger.Warn("Query exceeds maximum length, closing connection",
					"remote_addr", remote, "limit", MaxQueryBytes)
				return
			case errors.Is(err, io.EOF) && len(line) > 0:
				// The peer sent a final query without a terminator and shut
				// down its write side. Serve it, then close.
				lastQuery = true
			case errors.Is(err, io.EOF):
				logger.Debug("Connection closed by peer", "remote_addr", remote)
				return
			default:
				logger.Debug("Read failed, closing connection", "remote_addr", remote, "error", err)
				return
			}
		}

		start := time.Now()

		raw := string(line)
		if !utf8.ValidString(raw) {
			h.stats.Errors.Add(1)
			logger.Warn("Query is not valid UTF-8, closing connection", "remote_addr", remote)
			return
		}
		raw = search.TrimLineEnding(raw)
		// Some clients pad with NULs up to their send buffer.
		raw = strings.TrimRight(raw, "\x00")

		term, ok := h.gate.Authenticate(raw)
		if !ok {
			h.stats.AuthFailures.Add(1)
			logger.Warn("PSK authentication failed", "remote_addr", remote)
			if !h.respond(conn, remote, ResponseAuthFailed) || lastQuery {
				return
			}
			continue
		}

		found, err := h.searcher.Contains(context.Background(), term)
		elapsed := time.Since(start)
		if err != nil {
			h.stats.Errors.Add(1)
			logger.Error("Search failed", "remote_addr", remote, "query", term, "error", err)
			if !h.respond(conn, remote, ResponseError) || lastQuery {
				return
			}
			continue
		}

		h.stats.Queries.Add(1)
		response := ResponseNotFound
		if found {
			response = ResponseExists
			h.stats.Hits.Add(1)
		} else {
			h.stats.Misses.Add(1)
		}

		if !h.respond(conn, remote, response) {
			return
		}

		logger.Debug("Query served",
			"remote_addr", remote,
			"query", term,
			"response", strings.TrimSpace(response),
			"elapsed", elapsed)

		if lastQuery {
			return
		}
	}
}

// respond writes one response line; false means the connection is unusable.
func (h *Handler) respond(conn net.Conn, remote, response string) bool {
	if _, err := conn.Write([]byte(response)); err != nil {
		logger.Debug("Write failed, closing connection", "remote_addr", remote, "error", err)
		return false
	}
	return true
}
