// Package config resolves the file paths the record store operates on.
//
// Paths are passed explicitly to every operation rather than held in
// process-wide state. A YAML file can supply them; anything it leaves out
// falls back to the defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hpstore/internal/equipment"
	"github.com/roach88/hpstore/internal/timeseries"
)

// Config names the resources used by the accessor.
type Config struct {
	// Equipment is the equipment-configuration JSON document.
	Equipment string `yaml:"equipment"`

	// Timeseries is the CSV time-series table.
	Timeseries string `yaml:"timeseries"`

	// Journal is the optional SQLite write journal. Empty disables journaling.
	Journal string `yaml:"journal,omitempty"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Equipment:  equipment.DefaultPath,
		Timeseries: timeseries.DefaultPath,
	}
}

// Load reads a YAML configuration file.
// Returns an error if the file doesn't exist, is malformed, or contains
// unknown fields (typos). Relative paths resolve against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	cfg.Equipment = resolve(base, cfg.Equipment)
	cfg.Timeseries = resolve(base, cfg.Timeseries)
	cfg.Journal = resolve(base, cfg.Journal)

	return cfg.WithDefaults(), nil
}

// WithDefaults fills empty required paths from Default.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Equipment == "" {
		c.Equipment = d.Equipment
	}
	if c.Timeseries == "" {
		c.Timeseries = d.Timeseries
	}
	return c
}

// Override returns c with every non-empty field of o applied on top.
func (c Config) Override(o Config) Config {
	if o.Equipment != "" {
		c.Equipment = o.Equipment
	}
	if o.Timeseries != "" {
		c.Timeseries = o.Timeseries
	}
	if o.Journal != "" {
		c.Journal = o.Journal
	}
	return c
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
