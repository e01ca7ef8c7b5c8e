// Package config handles converter configuration loading and management.
package config

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/objpack/internal/logger"
	"github.com/Faultbox/objpack/pkg/encoding"
	"github.com/Faultbox/objpack/pkg/meshio"
)

// Config holds all converter settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds source file settings.
type InputConfig struct {
	Encoding string `yaml:"encoding"` // Text encoding of OBJ files
}

// OutputConfig holds mesh output settings.
type OutputConfig struct {
	Format      string `yaml:"format"`       // lua, yaml or glb; empty picks by extension
	DefaultPath string `yaml:"default_path"` // Used when convert gets no -o
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Encoding: encoding.UTF8,
		},
		Output: OutputConfig{
			Format:      "",
			DefaultPath: "mesh.lua",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every named encoding, format and level is supported.
func (c *Config) Validate() error {
	if _, err := encoding.Lookup(c.Input.Encoding); err != nil {
		return errors.Wrap(err, "input.encoding")
	}
	if c.Output.Format != "" {
		if _, err := meshio.ParseFormat(c.Output.Format); err != nil {
			return errors.Wrap(err, "output.format")
		}
	}
	if c.Output.DefaultPath == "" {
		return errors.New("output.default_path: must not be empty")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging.level")
	}
	return nil
}
