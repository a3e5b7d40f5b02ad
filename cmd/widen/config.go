package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/class-widener/errors"
)

// Config is the on-disk form of a transform run. Flags given on the
// command line override values loaded from the file.
type Config struct {
	Input       string   `yaml:"input"`
	Output      string   `yaml:"output"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
	Rules       []string `yaml:"rules"`
	Parallelism int      `yaml:"parallelism"`
	Interactive bool     `yaml:"interactive"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithPath(errors.PhaseConfig, errors.KindIO, err, path)
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes YAML config data. name is used in error paths.
func ParseConfig(data []byte, name string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(name).
			Cause(err).
			Detail("decode config").
			Build()
	}
	return &cfg, nil
}

// Validate checks that a transform can run with cfg.
func (c *Config) Validate() error {
	switch {
	case c.Input == "":
		return errors.InvalidInput(errors.PhaseConfig, "input archive is required")
	case c.Output == "":
		return errors.InvalidInput(errors.PhaseConfig, "output archive is required")
	case len(c.Rules) == 0:
		return errors.InvalidInput(errors.PhaseConfig, "at least one rules file is required")
	case c.Parallelism < 0:
		return errors.InvalidInput(errors.PhaseConfig, "parallelism must not be negative")
	case c.Input == c.Output:
		return errors.InvalidInput(errors.PhaseConfig, "input and output must differ")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", formatConsole, formatJSON:
	default:
		return errors.InvalidInput(errors.PhaseConfig, "log_format must be console or json")
	}
	return nil
}
