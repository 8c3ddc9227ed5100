package config

import (
	"fmt"

	"github.com/kbukum/streamgate/dispatch"
	"github.com/kbukum/streamgate/logger"
	"github.com/kbukum/streamgate/transport"
)

// ClientConfig is the conventional top-level configuration for a
// process using one dispatcher identity.
type ClientConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging     logger.Config         `yaml:"logging" mapstructure:"logging"`
	Credentials transport.Credentials `yaml:"credentials" mapstructure:"credentials"`
	Transport   transport.Config      `yaml:"transport" mapstructure:"transport"`
}

// ApplyDefaults applies default values.
func (c *ClientConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Debug && c.Logging.Level == "info" {
		c.Logging.Level = "debug"
	}
	c.Transport.ApplyDefaults()
}

// Validate validates the configuration.
func (c *ClientConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Transport.Validate()
}

// DispatchConfig assembles the dispatcher configuration from the
// loaded client configuration.
func (c *ClientConfig) DispatchConfig() dispatch.Config {
	return dispatch.Config{
		Credentials: c.Credentials,
		Transport:   c.Transport,
		Logger:      logger.New(&c.Logging, c.Name),
	}
}
