package transport

import (
	"fmt"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP transport.
type Config struct {
	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// TokenURL is the OAuth2 token endpoint used for token acquisition.
	// Required before calling AcquireToken.
	TokenURL string `yaml:"token_url" mapstructure:"token_url"`

	// Timeout is the default timeout for buffered requests. Defaults to 30s.
	// Streaming requests ignore it; their lifetime is bound to the context.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior for buffered requests.
	// Nil (the default) disables retry; streaming requests never retry.
	Retry *RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}
