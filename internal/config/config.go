// Package config loads codegen, store and logging settings from YAML or
// TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete configuration.
type Config struct {
	Codegen CodegenConfig `yaml:"codegen" toml:"codegen"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// CodegenConfig controls text generation.
//
// A binary node whose rendered operands add up to at least
// MaxLineLength - LineLengthOffset characters is split across two lines.
type CodegenConfig struct {
	MaxLineLength    int `yaml:"max_line_length" toml:"max_line_length"`
	LineLengthOffset int `yaml:"line_length_offset" toml:"line_length_offset"`
}

// SplitThreshold returns the rendered length at which lines are split.
func (c CodegenConfig) SplitThreshold() int {
	return c.MaxLineLength - c.LineLengthOffset
}

// StoreConfig locates the durable statement log. An empty Path keeps the
// log in memory only.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Format is a configuration file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	default:
		return "toml"
	}
}

// Default returns the built-in configuration. The line-length constants
// match the destination format's 80000 character ceiling.
func Default() Config {
	return Config{
		Codegen: CodegenConfig{
			MaxLineLength:    80000,
			LineLengthOffset: 79000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path, overlays it onto Default and validates the result.
// The format is chosen by extension: .yaml and .yml are YAML, everything
// else is TOML.
func Load(path string) (Config, error) {
	path = os.ExpandEnv(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file not found: %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(content, DetectFormat(path))
}

// Parse decodes content in the given format on top of Default.
func Parse(content []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		md, err := toml.Decode(string(content), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("TOML parse error: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("TOML parse error: unknown key %q", undecoded[0].String())
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DetectFormat determines the configuration format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Codegen.MaxLineLength <= 0 {
		return fmt.Errorf("codegen.max_line_length must be positive, got %d", c.Codegen.MaxLineLength)
	}
	if c.Codegen.LineLengthOffset < 0 {
		return fmt.Errorf("codegen.line_length_offset must not be negative, got %d", c.Codegen.LineLengthOffset)
	}
	if c.Codegen.LineLengthOffset >= c.Codegen.MaxLineLength {
		return fmt.Errorf("codegen.line_length_offset (%d) must be less than max_line_length (%d)",
			c.Codegen.LineLengthOffset, c.Codegen.MaxLineLength)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
	}
}

// NewLogger returns a text logger writing to w at the configured level.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
