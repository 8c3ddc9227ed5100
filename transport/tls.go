package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds TLS settings for the HTTP transport.
type TLSConfig struct {
	// SkipVerify disables server certificate verification.
	// Not recommended for production.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// CAFile is the path to the CA certificate file for verifying the server.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile is the path to the client TLS certificate file (for mTLS).
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// KeyFile is the path to the client TLS key file (for mTLS).
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version (e.g., tls.VersionTLS12).
	// Defaults to TLS 1.2 if not set.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Build creates a *tls.Config from the configuration.
// Returns nil if no TLS settings are configured (all fields are zero values).
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.hasSettings() {
		return nil, nil
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("transport: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("transport: no certificates found in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("transport: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	// If one of cert/key is set, both must be set
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("transport: both cert_file and key_file must be provided together")
	}
	return nil
}

// hasSettings returns true if any TLS setting is configured.
func (c *TLSConfig) hasSettings() bool {
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.KeyFile != "" ||
		c.ServerName != "" || c.MinVersion != 0
}
