package core

import (
	"context"
	"errors"
	"net"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
)

// Server is the generic TCP accept loop.
// It depends ONLY on interfaces, not concrete implementations.
type Server struct {
	Listener          net.Listener
	ConnectionHandler ConnectionHandler

	// MaxConnections bounds concurrently served connections; 0 means no cap.
	MaxConnections int

	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	closed sync.Once
}

// Serve accepts connections until the listener is closed, spawning one
// goroutine per connection. With a connection cap configured, Accept is
// paused while the cap is saturated so the kernel backlog applies
// backpressure instead of the process.
func (s *Server) Serve() error {
	if s.MaxConnections > 0 && s.sem == nil {
		s.sem = semaphore.NewWeighted(int64(s.MaxConnections))
	}

	for {
		if s.sem != nil {
			if err := s.sem.Acquire(context.Background(), 1); err != nil {
				return err
			}
		}

		conn, err := s.Listener.Accept()
		if err != nil {
			if s.sem != nil {
				s.sem.Release(1)
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// Close stops the listener. In-flight connections are drained by Serve
// before it returns.
func (s *Server) Close() error {
	var err error
	s.closed.Do(func() {
		err = s.Listener.Close()
	})
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	if s.sem != nil {
		defer s.sem.Release(1)
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Connection handler panicked", "remote_addr", conn.RemoteAddr(), "panic", r)
			conn.Close()
		}
	}()

	// Delegate the entire lifecycle to the handler
	s.ConnectionHandler.HandleConnection(conn)
}
