package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds the TLS settings for a broker session.
type TLSConfig struct {
	// Enabled switches the session to ssl:// (MQTT) or tls:// (NATS).
	Enabled bool `yaml:"enabled"`

	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file"`

	// CertFile and KeyFile enable client certificate authentication.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// ServerName overrides the name used for certificate verification.
	// Defaults to the broker host.
	ServerName string `yaml:"server_name"`

	// InsecureSkipVerify disables certificate verification.
	// Only for testing against brokers with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// NewClientTLSConfig builds the client TLS configuration for host.
// It returns nil when TLS is disabled.
func NewClientTLSConfig(cfg TLSConfig, host string) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	serverName := cfg.ServerName
	if serverName == "" {
		serverName = host
	}

	tlsConfig := &tls.Config{
		// Most brokers still terminate TLS 1.2.
		MinVersion: tls.VersionTLS12,

		ServerName: serverName,

		// For testing only
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA file %s contains no certificates", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" || cfg.KeyFile != "" {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, fmt.Errorf("cert_file and key_file must be set together")
		}
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
