// Package config loads funcform settings from defaults, an optional config
// file, a .env file, FUNCFORM_* environment variables and command flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FUNCFORM"

// Config holds the process settings shared by every command.
type Config struct {
	Addr                     string        `mapstructure:"addr" yaml:"addr"`
	Registry                 string        `mapstructure:"registry" yaml:"registry"`
	Backend                  string        `mapstructure:"backend" yaml:"backend"`
	RequireNonNullableInputs bool          `mapstructure:"require_non_nullable_inputs" yaml:"require_non_nullable_inputs"`
	ValidatePayloads         bool          `mapstructure:"validate_payloads" yaml:"validate_payloads"`
	HTMLResults              bool          `mapstructure:"html_results" yaml:"html_results"`
	Watch                    bool          `mapstructure:"watch" yaml:"watch"`
	Timeout                  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxDepth                 int           `mapstructure:"max_depth" yaml:"max_depth"`
	Debug                    bool          `mapstructure:"debug" yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:     "127.0.0.1:8080",
		Registry: "functions.json",
		Backend:  "http://127.0.0.1:8000",
		Timeout:  30 * time.Second,
		MaxDepth: 32,
	}
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. Empty searches ./funcform.yaml and
	// $HOME/.funcform/funcform.yaml.
	File string
	// EnvFile is loaded into the environment when present. Empty means ".env".
	EnvFile string
	// Flags are bound by name: key "max_depth" binds flag "max-depth".
	Flags *pflag.FlagSet
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	v := viper.New()
	defaults := Default()
	for key, value := range defaults.values() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("funcform")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.funcform")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		for key := range defaults.values() {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Backend != "" {
		parsed, err := url.Parse(c.Backend)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return fmt.Errorf("config: backend must be an absolute URL, got %q", c.Backend)
		}
	}
	return nil
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	header := []byte("# funcform configuration\n# Every key can be overridden with FUNCFORM_<KEY>.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c Config) values() map[string]any {
	return map[string]any{
		"addr":                        c.Addr,
		"registry":                    c.Registry,
		"backend":                     c.Backend,
		"require_non_nullable_inputs": c.RequireNonNullableInputs,
		"validate_payloads":           c.ValidatePayloads,
		"html_results":                c.HTMLResults,
		"watch":                       c.Watch,
		"timeout":                     c.Timeout,
		"max_depth":                   c.MaxDepth,
		"debug":                       c.Debug,
	}
}
