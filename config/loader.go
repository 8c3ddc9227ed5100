package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // explicit config file path
	EnvFile    string // explicit .env file path
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load loads configuration for a service into cfg. It resolves a YAML
// config file and a .env file from conventional locations (or explicit
// overrides), then lets environment variables override both.
func Load(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFirst(
			fmt.Sprintf("./config/%s.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		)
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFirst(
			fmt.Sprintf("./.env.%s", serviceName),
			"./.env",
		)
	}

	v := viper.New()

	// YAML config first (base configuration)
	if lc.ConfigFile != "" && exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	// .env before env binding so its variables are visible
	if lc.EnvFile != "" && exists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return fmt.Errorf("config: load %s: %w", lc.EnvFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for %s: %w", serviceName, err)
	}
	return nil
}

// bindEnvVars maps UPPER_SNAKE environment variables onto viper's
// nested keys so Unmarshal sees them. Viper's AutomaticEnv does not
// surface variables for keys absent from the config file, hence the
// explicit variant binding: CREDENTIALS_CLIENT_ID becomes
// credentials_client_id, credentials.client.id, credentials.client_id, …
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, variant := range keyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants generates the nested key spellings an env var may map to.
func keyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
