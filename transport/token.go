package transport

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials carries the identity used for token acquisition.
// Username/Password select the resource-owner password grant; when both
// are empty the client-credentials (app-only) grant is used instead.
type Credentials struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	Username     string `yaml:"username" mapstructure:"username"`
	Password     string `yaml:"password" mapstructure:"password"`
	Scopes       []string `yaml:"scopes" mapstructure:"scopes"`
}

// IsUserGrant returns true if user credentials are present.
func (c Credentials) IsUserGrant() bool {
	return c.Username != "" || c.Password != ""
}

// Token is the opaque credential attached to outbound requests.
type Token struct {
	// AccessToken is the bearer value. Never log it in full; use Fingerprint.
	AccessToken string
	// TokenType is the token type reported by the token endpoint ("Bearer").
	TokenType string
	// Expiry is the expiry reported by the token endpoint; zero if unknown.
	Expiry time.Time
}

// Fingerprint returns a redacted form of the token safe for logging.
func (t *Token) Fingerprint() string {
	if t == nil || t.AccessToken == "" {
		return "<none>"
	}
	prefix := t.AccessToken
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s…(%d)", prefix, len(t.AccessToken))
}

// AcquireToken performs the token-endpoint exchange using the client's
// own HTTP stack. The grant is chosen from the credentials: password
// grant when a username/password pair is present, client-credentials
// otherwise. Errors from the token endpoint come back as
// *oauth2.RetrieveError and carry the server's error code.
func (c *Client) AcquireToken(ctx context.Context, creds Credentials) (*Token, error) {
	if c.config.TokenURL == "" {
		return nil, NewValidationError("token_url is not configured")
	}

	// Route the token exchange through this client's transport so TLS
	// settings and proxies apply to the handshake too.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var tok *oauth2.Token
	var err error
	if creds.IsUserGrant() {
		conf := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       creds.Scopes,
			Endpoint:     oauth2.Endpoint{TokenURL: c.config.TokenURL},
		}
		tok, err = conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	} else {
		conf := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       creds.Scopes,
			TokenURL:     c.config.TokenURL,
		}
		tok, err = conf.Token(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
	}, nil
}
