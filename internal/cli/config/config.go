// Package config loads derive.yml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/derive/internal/compiler/logic"
	"github.com/conduit-lang/derive/internal/tooling/build"
	ustrings "github.com/conduit-lang/derive/internal/util/strings"
)

// Config represents the derive configuration
type Config struct {
	Schema        string      `mapstructure:"schema"`
	Output        string      `mapstructure:"output"`
	Package       string      `mapstructure:"package"`
	Capabilities  []string    `mapstructure:"capabilities"`
	EmitTypes     bool        `mapstructure:"emit_types"`
	RuntimeImport string      `mapstructure:"runtime_import"`
	Watch         WatchConfig `mapstructure:"watch"`
	Cache         CacheConfig `mapstructure:"cache"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig represents the shared output cache configuration
type CacheConfig struct {
	// RedisURL enables the shared output cache when set
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load loads the configuration from the nearest derive.yml or derive.yaml,
// falling back to defaults relative to the current directory. Every key may
// be overridden with a DERIVE_ variable, e.g. DERIVE_WATCH_DEBOUNCE=250ms.
func Load() (*Config, error) {
	dir, err := GetProjectRoot()
	if err != nil {
		dir = "."
	}
	return LoadFrom(dir)
}

// LoadFrom loads the configuration from dir. Relative schema and output
// paths are taken relative to dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("schema", "derive.schema.yml")
	v.SetDefault("output", "")
	v.SetDefault("package", "")
	v.SetDefault("capabilities", logic.CapabilityNames())
	v.SetDefault("emit_types", true)
	v.SetDefault("runtime_import", "")
	v.SetDefault("watch.debounce", "100ms")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetConfigName("derive")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("derive")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	config.Schema = resolvePath(dir, config.Schema)
	config.Output = resolvePath(dir, config.Output)
	return &config, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "." {
		return path
	}
	return filepath.Join(dir, path)
}

// InProject checks if the current directory holds a config or schema file
func InProject() bool {
	for _, name := range []string{"derive.yml", "derive.yaml", "derive.schema.yml"} {
		if _, err := os.Stat(name); err == nil {
			return true
		}
	}
	return false
}

// GetProjectRoot finds the closest directory, starting at the current one,
// that holds derive.yml or derive.yaml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{"derive.yml", "derive.yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no derive.yml found")
		}
		dir = parent
	}
}

// BuildOptions converts the configuration into options for the build system
func (c *Config) BuildOptions() *build.BuildOptions {
	opts := build.DefaultBuildOptions()
	opts.SchemaPath = c.Schema
	opts.OutputPath = c.Output
	opts.Package = c.Package
	opts.EmitTypes = c.EmitTypes
	opts.RuntimeImport = c.RuntimeImport
	opts.Capabilities = c.ParsedCapabilities()
	return opts
}

// ParsedCapabilities returns the configured capabilities in canonical order.
// Names are assumed valid; Load rejects unknown ones.
func (c *Config) ParsedCapabilities() []logic.Capability {
	want := make(map[logic.Capability]bool)
	for _, name := range c.Capabilities {
		if c, ok := logic.ParseCapability(name); ok {
			want[c] = true
		}
	}
	var caps []logic.Capability
	for _, c := range logic.Capabilities {
		if want[c] {
			caps = append(caps, c)
		}
	}
	return caps
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Schema == "" {
		return fmt.Errorf("schema must not be empty")
	}
	if filepath.Ext(cfg.Output) != "" && filepath.Ext(cfg.Output) != ".go" {
		return fmt.Errorf("output must be a .go file, got: %s", cfg.Output)
	}

	if cfg.Package != "" {
		if problem := ustrings.IdentifierProblem(cfg.Package); problem != "" {
			return fmt.Errorf("package %q is not a valid Go identifier: %s", cfg.Package, problem)
		}
		if ustrings.IsGoKeyword(cfg.Package) {
			return fmt.Errorf("package %q is a Go keyword", cfg.Package)
		}
	}

	if len(cfg.Capabilities) == 0 {
		return fmt.Errorf("capabilities must not be empty")
	}
	for _, name := range cfg.Capabilities {
		if _, ok := logic.ParseCapability(name); !ok {
			return fmt.Errorf("unknown capability %q (expected one of %s)", name, strings.Join(logic.CapabilityNames(), ", "))
		}
	}

	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
