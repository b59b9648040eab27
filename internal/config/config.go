// Package config loads CLI configuration with Viper.
//
// Precedence, highest first: command-line flags, PLACEMENT_* environment
// variables, ~/.placement/config.yaml, built-in defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/telemetry"
	"github.com/felixgeelhaar/placement/internal/version"
)

const (
	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "PLACEMENT"

	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultPollInterval   = 30 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultPageSize       = 20

	minPollInterval = time.Second
)

// Config holds the resolved CLI configuration.
type Config struct {
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	TokenFile      string        `mapstructure:"token_file" yaml:"token_file"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	PageSize       int           `mapstructure:"page_size" yaml:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Output         string        `mapstructure:"output" yaml:"output"`
	Color          bool          `mapstructure:"color" yaml:"color"`
	Log            LogConfig     `mapstructure:"log" yaml:"log"`
	Telemetry      Telemetry     `mapstructure:"telemetry" yaml:"telemetry"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Telemetry holds OpenTelemetry tracing options.
type Telemetry struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"api-url":       "api_url",
	"token-file":    "token_file",
	"poll-interval": "poll_interval",
	"page-size":     "page_size",
	"timeout":       "request_timeout",
	"output":        "output",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// Dir returns ~/.placement.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".placement"), nil
}

// Load reads configuration. path overrides the default config file location;
// flags, when non-nil, are bound so explicitly set flags win.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "cannot bind flag "+name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case stderrors.As(err, &notFound):
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "config file not found: "+path, err)
		default:
			return nil, errors.NewFileUnmarshalError(v.ConfigFileUsed(), "YAML", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "cannot decode configuration", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.TokenFile = expandHome(cfg.TokenFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	if dir, err := Dir(); err == nil {
		v.SetDefault("token_file", filepath.Join(dir, "session.json"))
	}
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("output", "text")
	v.SetDefault("color", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("api_url %q must be an absolute http(s) URL", c.APIURL))
	}
	if c.TokenFile == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "token_file must not be empty")
	}
	if c.PollInterval < minPollInterval {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("poll_interval %s is below %s", c.PollInterval, minPollInterval))
	}
	if c.PageSize <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("page_size %d must be positive", c.PageSize))
	}
	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "request_timeout must be positive")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("telemetry.sample_rate %v must be between 0 and 1", c.Telemetry.SampleRate))
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("output %q is not one of text, json, yaml", c.Output))
	}
	return nil
}

// Logging converts the log section into a logger configuration.
func (c *Config) Logging() log.Config {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(c.Log.Level)
	lc.Format = log.ParseFormat(c.Log.Format)
	return lc
}

// Tracing converts the telemetry section into a tracer configuration.
func (c *Config) Tracing() telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version.GetInfo().Short()
	tc.Enabled = c.Telemetry.Enabled
	tc.Endpoint = c.Telemetry.Endpoint
	tc.Insecure = c.Telemetry.Insecure
	tc.SampleRate = c.Telemetry.SampleRate
	return tc
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
