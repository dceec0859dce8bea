package tlsprovider

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/config"
	"github.com/searchbox/linesearchd/cmd/searchd/internal/logger"
)

// Factory creates TLS providers based on configuration
type Factory struct {
	cfg *config.Config
}

// NewFactory creates a new TLS factory
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Create creates a TLS provider based on configuration. File paths select
// the file-backed provider; otherwise certificates live in memory only.
func (f *Factory) Create() Provider {
	if f.cfg.TLS.CertFile != "" && f.cfg.TLS.KeyFile != "" {
		logger.Info("Creating file-based TLS provider",
			"cert", f.cfg.TLS.CertFile,
			"key", f.cfg.TLS.KeyFile)
		return NewFileProvider(f.cfg.TLS.CertFile, f.cfg.TLS.KeyFile)
	}

	logger.Info("Creating in-memory TLS provider")
	return NewMemoryProvider()
}

// EnsureCertificate ensures a valid certificate exists, generating a
// self-signed one when allowed.
func (f *Factory) EnsureCertificate(ctx context.Context, provider Provider) error {
	_, err := provider.GetCertificate(ctx)
	if err == nil {
		logger.Info("Certificate loaded successfully")
		return nil
	}

	if !f.cfg.TLS.AutoGenerate {
		return fmt.Errorf("certificate not found and tls.auto_generate is false: %w", err)
	}

	logger.Info("Certificate not found. Generating new self-signed certificate...")
	certPEM, keyPEM, err := GenerateSelfSignedCert()
	if err != nil {
		return fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}

	if err := provider.Store(ctx, certPEM, keyPEM); err != nil {
		return fmt.Errorf("failed to store certificate: %w", err)
	}

	logger.Info("Successfully generated and stored self-signed certificate")
	return nil
}

// ServerConfig builds the tls.Config for the listener from the provider.
func (f *Factory) ServerConfig(ctx context.Context, provider Provider) (*tls.Config, error) {
	cert, err := provider.GetCertificate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
