package dispatch

import (
	"github.com/kbukum/streamgate/logger"
	"github.com/kbukum/streamgate/transport"
)

// Config configures a dispatcher instance.
type Config struct {
	// Credentials select the token grant: username/password for the
	// user grant, client ID/secret alone for app-only. Typically
	// populated by the caller from process configuration before Start
	// (see the config package); the dispatcher itself reads no
	// environment.
	Credentials transport.Credentials `yaml:"credentials" mapstructure:"credentials"`

	// Transport configures the underlying HTTP transport, including
	// the token endpoint.
	Transport transport.Config `yaml:"transport" mapstructure:"transport"`

	// Logger overrides the default component logger.
	Logger *logger.Logger `yaml:"-" mapstructure:"-"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Transport.TokenURL == "" {
		return transport.NewValidationError("transport.token_url is required")
	}
	c.Transport.ApplyDefaults()
	return c.Transport.Validate()
}
