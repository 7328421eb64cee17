// Package serdegen analyzes Go types and generates serialization and
// key-extraction code for them. The pipeline is: the provider classifies
// types into descriptor graphs, the gogen backend walks the graphs and
// emits Go source, and a sink writes the output.
package serdegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/serdegen/serdegen/gogen"
)

// DefaultConfigFile is the config file name looked up by the CLI.
const DefaultConfigFile = "serdegen.toml"

// Config holds the configuration for a generation run.
type Config struct {
	// OutDir is the directory where generated files will be written.
	OutDir string `toml:"out_dir" validate:"required"`

	// Packages are the Go package paths to analyze.
	Packages []string `toml:"packages" validate:"required,min=1,dive,required"`

	// RootTypes are the type names to analyze. Each produces an
	// Encode/Decode pair in the generated output.
	RootTypes []string `toml:"root_types" validate:"required,min=1,dive,required"`

	// PackageName is the package clause of the generated file.
	// Defaults to the name of the first analyzed package.
	PackageName string `toml:"package"`

	// KeyPaths are dotted key paths to generate extractors for, e.g.
	// "User.ID" or "Order.Customer.ID". The first segment names the root
	// type. A bare root name keys the whole type.
	KeyPaths []string `toml:"key_paths" validate:"dive,required"`
}

var validate = validator.New()

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s has unknown keys: %v", path, undecoded)
	}
	return &cfg, nil
}

// Validate checks the configuration, returning a descriptive error for
// the first problem found.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: field %s failed %q validation", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.keyPaths(); err != nil {
		return err
	}
	return nil
}

// keyPaths parses the dotted key path strings into structured paths.
func (c *Config) keyPaths() ([]gogen.KeyPath, error) {
	out := make([]gogen.KeyPath, 0, len(c.KeyPaths))
	for _, raw := range c.KeyPaths {
		segs := strings.Split(raw, ".")
		for _, s := range segs {
			if s == "" {
				return nil, fmt.Errorf("invalid key path %q", raw)
			}
		}
		out = append(out, gogen.KeyPath{Root: segs[0], Path: segs[1:]})
	}
	return out, nil
}
