// Package config loads runtime configuration from an optional YAML
// file, environment variables and command-line flags, later sources
// overriding earlier ones.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "WORDVAULT_"

// Config holds the runtime configuration
type Config struct {
	DatabasePath string `koanf:"database_path"`
	SupabaseURL  string `koanf:"supabase_url"`
	SupabaseKey  string `koanf:"supabase_key"`
	UserID       string `koanf:"user_id"`
	AutoSync     bool   `koanf:"auto_sync"`
	DebounceMs   int    `koanf:"debounce_ms"`
	Verbose      bool   `koanf:"verbose"`
}

// DefaultConfigFile is looked up relative to the working directory
const DefaultConfigFile = "wordvault.yaml"

// Load assembles the configuration. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	cfg := &Config{
		DatabasePath: "wordvault.db",
		AutoSync:     true,
		DebounceMs:   1000,
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
