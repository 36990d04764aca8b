// Package config loads YAML configuration files, expanding environment
// variables before decoding.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after decoding.
type Validator interface {
	Validate() error
}

// Load decodes the YAML file at path into target. Values like ${VAR} are
// expanded from the environment first. If the file does not exist the
// target is left untouched, so callers can pre-fill defaults.
func Load(path string, target any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return validate(target)
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return validate(target)
}

// Require behaves like Load but fails when the file is missing.
func Require(path string, target any) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file not found: %s", path)
	}
	return Load(path, target)
}

func validate(target any) error {
	v, ok := target.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
