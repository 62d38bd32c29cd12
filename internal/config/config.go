// Package config loads the optional YAML file behind the command line
// flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlitejson/internal/sqlfunc"
	"github.com/roach88/sqlitejson/internal/store"
)

// Config is the resolved configuration of one command.
type Config struct {
	Path              string `yaml:"path"`
	Table             string `yaml:"table"`
	Column            string `yaml:"column"`
	CreateTable       bool   `yaml:"create_table"`
	InstallExtensions bool   `yaml:"install_extensions"`
	BatchSize         int    `yaml:"batch_size"`

	// Seed fixes the json_array_randelem sequence. 0 means seeded from
	// the runtime.
	Seed uint64 `yaml:"seed"`
}

// Defaults returns the configuration used when neither a file nor flags
// say otherwise.
func Defaults() Config {
	return Config{
		Path:              store.MemoryPath,
		Table:             store.DefaultTable,
		Column:            store.DefaultColumn,
		CreateTable:       true,
		InstallExtensions: true,
		BatchSize:         store.DefaultBatchSize,
	}
}

// Load reads a YAML config file over Defaults. Keys absent from the file
// keep their default; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Strict field validation catches typos like "batchsize:".
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the store does not check itself.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	return nil
}

// Rand returns the random source for the configured seed.
func (c Config) Rand() sqlfunc.Rand {
	if c.Seed == 0 {
		return sqlfunc.SystemRand()
	}
	return sqlfunc.NewRand(c.Seed)
}

// StoreConfig converts c into the options store.Open takes.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Path:              c.Path,
		Table:             c.Table,
		Column:            c.Column,
		CreateTable:       store.Bool(c.CreateTable),
		InstallExtensions: store.Bool(c.InstallExtensions),
		Rand:              c.Rand(),
	}
}
