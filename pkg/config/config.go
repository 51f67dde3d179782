// Package config loads tauc settings from TOML or YAML files, with
// environment overrides on top.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"tauc/pkg/diag"
)

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota
	// FormatYAML represents YAML format
	FormatYAML
	// FormatAuto detects the format from the file extension
	FormatAuto
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Output formats accepted by the parse command.
const (
	OutputSexpr = "sexpr"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel     = "TAUC_LOG_LEVEL"
	EnvLogColor     = "TAUC_LOG_COLOR"
	EnvOutputFormat = "TAUC_OUTPUT_FORMAT"
	EnvCheckJobs    = "TAUC_CHECK_JOBS"
)

// Config holds the complete tool configuration
type Config struct {
	Log    LogConfig    `toml:"log" yaml:"log"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Check  CheckConfig  `toml:"check" yaml:"check"`
}

// LogConfig controls the diagnostic sink
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	Color bool   `toml:"color" yaml:"color"`
}

// OutputConfig controls how trees are printed
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
}

// CheckConfig controls batch checking. Jobs == 0 means GOMAXPROCS.
type CheckConfig struct {
	Jobs int `toml:"jobs" yaml:"jobs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Output: OutputConfig{Format: OutputSexpr},
	}
}

// Load reads path, detecting the format from its extension, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithFormat(path, FormatAuto)
}

// LoadWithFormat is Load with an explicit format.
func LoadWithFormat(path string, format Format) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if format == FormatAuto {
		format = detectFormat(path)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes data over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "parse yaml")
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown toml key %q", undecoded[0].String())
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ApplyEnv overrides fields from the TAUC_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogColor); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvLogColor)
		}
		c.Log.Color = b
	}
	if v, ok := os.LookupEnv(EnvOutputFormat); ok {
		c.Output.Format = v
	}
	if v, ok := os.LookupEnv(EnvCheckJobs); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvCheckJobs)
		}
		c.Check.Jobs = n
	}
	return nil
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	if _, err := diag.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Output.Format {
	case OutputSexpr, OutputYAML, OutputJSON:
	default:
		return errors.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if c.Check.Jobs < 0 {
		return errors.Errorf("check.jobs: must not be negative, got %d", c.Check.Jobs)
	}
	return nil
}

// MinLevel is the parsed log level. It assumes Validate passed.
func (c *Config) MinLevel() diag.Level {
	lvl, _ := diag.ParseLevel(c.Log.Level)
	return lvl
}
