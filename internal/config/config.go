package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/vmcalc/internal/model"
)

// Default values applied when the configuration file omits a field or no
// file exists at all.
const (
	DefaultPrompt        = ">> "
	DefaultPrecision     = -1
	DefaultHistory       = 50
	DefaultWatchDebounce = 100 * time.Millisecond
)

// maxPrecision is the largest number of fractional digits worth printing
// for a float64.
const maxPrecision = 17

// Config holds user preferences for every vmcalc front end.
type Config struct {
	// Prompt is printed before each REPL line.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Precision is the number of digits after the decimal point in text
	// output. -1 prints the shortest exact representation.
	Precision int `json:"precision" yaml:"precision"`

	// Output is the default output format: text, json or yaml.
	Output string `json:"output" yaml:"output"`

	// History is how many past evaluations the TUI keeps on screen.
	History int `json:"history" yaml:"history"`

	// WatchDebounce is a Go duration string ("250ms") that controls how
	// long the file watcher waits for writes to settle.
	WatchDebounce string `json:"watchDebounce" yaml:"watchDebounce"`

	// Path is the file the configuration was loaded from, empty for
	// defaults.
	Path string `json:"-" yaml:"-"`

	format   model.OutputFormat
	debounce time.Duration
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Prompt:        DefaultPrompt,
		Precision:     DefaultPrecision,
		Output:        model.FormatText.String(),
		History:       DefaultHistory,
		WatchDebounce: DefaultWatchDebounce.String(),
		format:        model.FormatText,
		debounce:      DefaultWatchDebounce,
	}
}

// Format returns the validated output format.
func (c *Config) Format() model.OutputFormat {
	return c.format
}

// Debounce returns the validated watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return c.debounce
}

// SetOutput overrides the output format, typically from a CLI flag.
func (c *Config) SetOutput(s string) error {
	f, err := model.ParseOutputFormat(s)
	if err != nil {
		return err
	}
	c.Output, c.format = f.String(), f
	return nil
}

// Validate checks field values and caches the parsed forms.
func (c *Config) Validate() error {
	f, err := model.ParseOutputFormat(c.Output)
	if err != nil {
		return err
	}
	if c.Precision < -1 || c.Precision > maxPrecision {
		return fmt.Errorf("precision %d out of range (-1-%d)", c.Precision, maxPrecision)
	}
	if c.History < 0 {
		return fmt.Errorf("history must not be negative, got %d", c.History)
	}
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil {
		return fmt.Errorf("invalid watchDebounce %q: %w", c.WatchDebounce, err)
	}
	if d < 0 {
		return fmt.Errorf("watchDebounce must not be negative, got %s", d)
	}
	c.format, c.debounce = f, d
	return nil
}

// Load reads the configuration at path. The decoder is chosen by file
// extension: .yaml and .yml are YAML, anything else is JSONC. Fields
// missing from the file keep their default values.
//
// Returns a CLIError with ExitConfigError when the file cannot be read,
// decoded or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg := Default()
	if isYAML(path) {
		err = decodeYAML(data, cfg)
	} else {
		err = decodeJSONC(data, cfg)
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadOrDefault loads the file at explicit when it is set, otherwise the
// first file Find locates in dir, otherwise the defaults.
func LoadOrDefault(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path := Find(dir)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeJSONC(data []byte, cfg *Config) error {
	// Comments and trailing commas are stripped first; the standard
	// decoder then rejects keys Config does not define.
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fileNames lists the configuration file names searched in each
// directory, in priority order.
var fileNames = []string{
	"vmcalc.jsonc",
	".vmcalc.jsonc",
	"vmcalc.json",
	".vmcalc.json",
	"vmcalc.yaml",
	".vmcalc.yaml",
	"vmcalc.yml",
	".vmcalc.yml",
}

// Find searches for a configuration file.
//
// The search order is:
//  1. <dir>/vmcalc.jsonc and the other names in fileNames
//  2. <user config dir>/vmcalc/config.jsonc, then config.yaml
//
// Returns the first existing path, or "" when none exists.
func Find(dir string) string {
	var candidates []string
	if dir != "" {
		for _, name := range fileNames {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(userDir, "vmcalc", "config.jsonc"),
			filepath.Join(userDir, "vmcalc", "config.yaml"),
		)
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
