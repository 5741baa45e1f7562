// Package config loads keycalc settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"keycalc/internal/calc"
)

// Config is the whole settings file.
type Config struct {
	Engine  Engine  `yaml:"engine"`
	Display Display `yaml:"display"`
	History History `yaml:"history"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Engine mirrors calc.Options.
type Engine struct {
	MaxInput     int     `yaml:"max_input" validate:"min=1,max=4096"`
	MaxBuffer    int     `yaml:"max_buffer" validate:"gtefield=MaxInput,max=65536"`
	MaxDepth     int     `yaml:"max_depth" validate:"min=1,max=1024"`
	MaxTokens    int     `yaml:"max_tokens" validate:"min=2,max=4096"`
	Digits       int     `yaml:"digits" validate:"min=1,max=15"`
	SpliceDigits int     `yaml:"splice_digits" validate:"gtefield=Digits,max=17"`
	Step         float64 `yaml:"step" validate:"gt=0,lte=1"`
	MaxSamples   int     `yaml:"max_samples" validate:"min=2"`
}

// Display describes the character LCD the keypad UI draws.
type Display struct {
	Width int `yaml:"width" validate:"min=8,max=80"`
	Rows  int `yaml:"rows" validate:"min=2,max=4"`
	// Splash is shown until the first key; empty disables it.
	Splash string `yaml:"splash" validate:"max=80"`
}

// History controls the CSV evaluation log.
type History struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit" validate:"min=0"`
}

// Logging configures zerolog output.
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
	// Output is stdout, stderr or a file path.
	Output string `yaml:"output" validate:"required"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen" validate:"omitempty,hostname_port"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// Default returns the built-in settings: a 16x2 display and the default
// engine limits.
func Default() *Config {
	opt := calc.DefaultOptions()
	return &Config{
		Engine: Engine{
			MaxInput:     opt.MaxInput,
			MaxBuffer:    opt.MaxBuffer,
			MaxDepth:     opt.MaxDepth,
			MaxTokens:    opt.MaxTokens,
			Digits:       opt.Digits,
			SpliceDigits: opt.SpliceDigits,
			Step:         opt.Step,
			MaxSamples:   opt.MaxSamples,
		},
		Display: Display{
			Width:  16,
			Rows:   2,
			Splash: "Calculator Ready",
		},
		History: History{
			Path:  "keycalc_history.csv",
			Limit: 100,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: Metrics{
			Listen: "127.0.0.1:9464",
			Path:   "/metrics",
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("invalid config: metrics enabled without a listen address")
	}
	return nil
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected and
// an empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// EngineOptions converts the engine section for calc.New.
func (c *Config) EngineOptions() calc.Options {
	e := c.Engine
	return calc.Options{
		MaxInput:     e.MaxInput,
		MaxBuffer:    e.MaxBuffer,
		MaxDepth:     e.MaxDepth,
		MaxTokens:    e.MaxTokens,
		Digits:       e.Digits,
		SpliceDigits: e.SpliceDigits,
		Step:         e.Step,
		MaxSamples:   e.MaxSamples,
	}
}

// Marshal renders the config as YAML, e.g. for "keycalc config".
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
