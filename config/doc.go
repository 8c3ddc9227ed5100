// Package config loads client configuration from YAML files,
// .env files, and environment variables, in that order of precedence
// (environment wins).
//
// The dispatcher itself reads no environment; callers load a
// ClientConfig here and pass the relevant pieces to dispatch.Start, so
// all configuration flows through one explicit object.
//
//	var cfg config.ClientConfig
//	if err := config.Load("mysvc", &cfg); err != nil {
//	    ...
//	}
//	cfg.ApplyDefaults()
//	d, err := dispatch.Start(ctx, cfg.DispatchConfig())
package config
