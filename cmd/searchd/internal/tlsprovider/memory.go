package tlsprovider

import (
	"context"
	"crypto/tls"
	"os"
	"sync"
)

// MemoryProvider is a simple in-memory implementation for development
type MemoryProvider struct {
	cert *tls.Certificate
	mu   sync.RWMutex
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (p *MemoryProvider) GetCertificate(ctx context.Context) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, os.ErrNotExist
	}
	return p.cert, nil
}

func (p *MemoryProvider) Store(ctx context.Context, certPEM, keyPEM []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return err
	}
	p.cert = &cert
	return nil
}
