package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestCertificate creates a self-signed certificate and key in dir and
// returns their paths.
func writeTestCertificate(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "broker.test",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestNewClientTLSConfig(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		cfg, err := NewClientTLSConfig(TLSConfig{}, "broker.test")
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("SystemRoots", func(t *testing.T) {
		cfg, err := NewClientTLSConfig(TLSConfig{Enabled: true}, "broker.test")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "broker.test", cfg.ServerName)
		assert.Nil(t, cfg.RootCAs)
		assert.Empty(t, cfg.Certificates)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
		assert.False(t, cfg.InsecureSkipVerify)
	})

	t.Run("ServerNameOverride", func(t *testing.T) {
		cfg, err := NewClientTLSConfig(TLSConfig{Enabled: true, ServerName: "mqtt.example"}, "10.0.0.5")
		require.NoError(t, err)
		assert.Equal(t, "mqtt.example", cfg.ServerName)
	})

	t.Run("CustomCAAndClientCert", func(t *testing.T) {
		certFile, keyFile := writeTestCertificate(t, t.TempDir())

		cfg, err := NewClientTLSConfig(TLSConfig{
			Enabled:  true,
			CAFile:   certFile,
			CertFile: certFile,
			KeyFile:  keyFile,
		}, "broker.test")
		require.NoError(t, err)

		assert.NotNil(t, cfg.RootCAs)
		assert.Len(t, cfg.Certificates, 1)
	})

	t.Run("MissingCAFile", func(t *testing.T) {
		_, err := NewClientTLSConfig(TLSConfig{
			Enabled: true,
			CAFile:  filepath.Join(t.TempDir(), "missing.pem"),
		}, "broker.test")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("CAFileWithoutCertificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := NewClientTLSConfig(TLSConfig{Enabled: true, CAFile: path}, "broker.test")
		assert.ErrorContains(t, err, "contains no certificates")
	})

	t.Run("CertWithoutKey", func(t *testing.T) {
		certFile, _ := writeTestCertificate(t, t.TempDir())

		_, err := NewClientTLSConfig(TLSConfig{Enabled: true, CertFile: certFile}, "broker.test")
		assert.ErrorContains(t, err, "must be set together")
	})
}
