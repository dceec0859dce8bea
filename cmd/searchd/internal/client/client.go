// Package client implements the query side of the search protocol, used by
// the "searchd query" command and by integration tests.
package client

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/auth"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/search"
)

// Options configure one query round-trip.
type Options struct {
	Addr    string
	PSK     string // empty means no auth prefix is sent
	Timeout time.Duration

	// TLS dials the server over TLS. InsecureSkipVerify accepts the
	// self-signed certificates a development server generates.
	TLS                bool
	InsecureSkipVerify bool
}

// Query sends one term and returns the server's response line with its
// terminator stripped.
func Query(opts Options, term string) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn, err := dial(opts, timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", opts.Addr, err)
	}
	defer conn.Close()

	payload := term
	if opts.PSK != "" {
		payload = auth.DigestPSK(opts.PSK) + term
	}

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	if _, err := conn.Write([]byte(payload + "\n")); err != nil {
		return "", fmt.Errorf("failed to send query: %w", err)
	}

	response, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && response == "" {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return search.TrimLineEnding(response), nil
}

func dial(opts Options, timeout time.Duration) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	if !opts.TLS {
		return dialer.Dial("tcp", opts.Addr)
	}
	return tls.DialWithDialer(dialer, "tcp", opts.Addr, &tls.Config{
		InsecureSkipVerify: opts.InsecureSkipVerify,
	})
}
