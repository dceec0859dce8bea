// Package tlsprovider supplies the server certificate for the TLS-enabled
// listener. Certificates come from PEM files on disk or, for development,
// from an in-memory store populated with a generated self-signed pair.
package tlsprovider

import (
	"context"
	"crypto/tls"
)

// Provider retrieves and stores the server certificate, abstracting the
// storage mechanism.
type Provider interface {
	GetCertificate(ctx context.Context) (*tls.Certificate, error)
	Store(ctx context.Context, certPEM, keyPEM []byte) error
}
