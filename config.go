// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a serializable form of the options accepted by Create,
// suitable for embedding in an application's YAML configuration.
type Config struct {
	Strategy       string        `yaml:"strategy"`
	NodeSize       uint16        `yaml:"nodeSize"`
	IndexThreshold int           `yaml:"indexThreshold"`
	MaxBytes       int64         `yaml:"maxBytes"`
	Parallelism    int           `yaml:"parallelism"`
	Logging        LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the logger built by Config.Options. An empty
// Level disables logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration equivalent to passing no
// options to Create.
func DefaultConfig() Config {
	return Config{
		Strategy:       Auto.String(),
		NodeSize:       DefaultNodeSize,
		IndexThreshold: DefaultIndexThreshold,
	}
}

// LoadConfig decodes a YAML document from r on top of DefaultConfig
// and validates the result. Fields absent from the document keep
// their default values, and an empty document yields DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, wrapErr("failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field of c, if any.
func (c Config) Validate() error {
	if _, err := ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.NodeSize < 2 {
		return fmtErr("node size must be at least 2, got %d", c.NodeSize)
	}
	if c.IndexThreshold < 0 {
		return fmtErr("negative index threshold %d", c.IndexThreshold)
	}
	if c.MaxBytes < 0 {
		return fmtErr("negative byte limit %d", c.MaxBytes)
	}
	if c.Parallelism < 0 {
		return fmtErr("negative parallelism %d", c.Parallelism)
	}
	return nil
}

// Options validates c and converts it to options for Create. If
// Logging.Level is set, the options include a logger writing to
// standard error.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s, _ := ParseStrategy(c.Strategy)
	opts := []Option{
		WithStrategy(s),
		WithNodeSize(c.NodeSize),
		WithIndexThreshold(c.IndexThreshold),
		WithMaxBytes(c.MaxBytes),
		WithParallelism(c.Parallelism),
	}
	if c.Logging.Level != "" {
		opts = append(opts, WithLogger(NewLogger(os.Stderr, ParseLevel(c.Logging.Level), c.Logging.Format)))
	}
	return opts, nil
}
