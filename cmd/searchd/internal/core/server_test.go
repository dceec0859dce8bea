package core

import (
	"bufio"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler answers every received line with "ok\n".
type echoHandler struct{}

func (echoHandler) HandleConnection(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}
		if _, err := conn.Write([]byte("ok\n")); err != nil {
			return
		}
	}
}

// blockingHandler holds every connection open until release is closed.
type blockingHandler struct {
	started chan struct{}
	release chan struct{}
}

func (h *blockingHandler) HandleConnection(conn net.Conn) {
	defer conn.Close()
	h.started <- struct{}{}
	<-h.release
	conn.Write([]byte("done\n"))
}

func startServer(t *testing.T, handler ConnectionHandler, maxConns int) (*Server, string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &Server{
		Listener:          listener,
		ConnectionHandler: handler,
		MaxConnections:    maxConns,
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		srv.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after Close")
		}
	})

	return srv, listener.Addr().String()
}

func TestServerServesConcurrentConnections(t *testing.T) {
	_, addr := startServer(t, echoHandler{}, 0)

	const clients = 20
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.Dial("tcp", addr)
			if !assert.NoError(t, err) {
				return
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(5 * time.Second))

			reader := bufio.NewReader(conn)
			for j := 0; j < 10; j++ {
				if _, err := conn.Write([]byte("ping\n")); !assert.NoError(t, err) {
					return
				}
				line, err := reader.ReadString('\n')
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "ok\n", line)
			}
		}()
	}
	wg.Wait()
}

func TestServerConnectionCap(t *testing.T) {
	handler := &blockingHandler{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	_, addr := startServer(t, handler, 1)

	first, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer first.Close()

	select {
	case <-handler.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first connection was not handled")
	}

	// The cap is saturated: a second connection may sit in the backlog but
	// must not reach the handler.
	second, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer second.Close()

	select {
	case <-handler.started:
		t.Fatal("second connection handled while the cap was saturated")
	case <-time.After(200 * time.Millisecond):
	}

	close(handler.release)

	select {
	case <-handler.started:
	case <-time.After(5 * time.Second):
		t.Fatal("second connection was not handled after the cap freed up")
	}
}

func TestServerCloseUnblocksServe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &Server{Listener: listener, ConnectionHandler: echoHandler{}}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Close())

	select {
	case err := <-done:
		assert.NoError(t, err, "a closed listener is a clean shutdown, not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestStatsSnapshot(t *testing.T) {
	stats := &Stats{}
	stats.Connections.Add(2)
	stats.Queries.Add(5)
	stats.Hits.Add(3)
	stats.Misses.Add(2)

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.Connections)
	assert.Equal(t, int64(5), snap.Queries)
	assert.Equal(t, int64(3), snap.Hits)
	assert.Equal(t, int64(2), snap.Misses)
	assert.Equal(t, int64(0), snap.AuthFailures)
}
