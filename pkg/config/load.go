package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the process looks for its configuration document
// when none is given on the command line.
const DefaultPath = "conf/config.yaml"

// Load reads and validates the YAML configuration document at path. It
// performs unmarshal + structural validation only; it never interprets a
// "*_class" string itself, leaving that to the registration tables owned
// by the packages that build real objects from the config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// DecodeParam decodes an assembly param's raw value into out, the
// statically typed analogue of the original resolving config_class into a
// constructor.
func (p AssemblyParam) DecodeParam(out any) error {
	return p.Value.Decode(out)
}
