// Package config provides configuration management for Sieve tooling.
package config

import (
	"fmt"

	"github.com/solatis/sieve/internal/types"
)

// Config holds compiler defaults supplied by the request-handling
// layer: nesting limit, field whitelist, indexed fields for the
// optimizer, and the render-time table qualifier.
type Config struct {
	MaxDepth       int
	AllowedFields  []string
	FieldTypes     map[string]string
	IndexedFields  []string
	TableQualifier string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		MaxDepth: types.DefaultMaxNestingDepth,
	}
}

// ParsedFieldTypes converts the configured field->type table to domain
// types, rejecting unknown type names.
func (c *Config) ParsedFieldTypes() (map[string]types.FieldType, error) {
	if len(c.FieldTypes) == 0 {
		return nil, nil
	}
	out := make(map[string]types.FieldType, len(c.FieldTypes))
	for field, name := range c.FieldTypes {
		ft, err := types.ParseFieldType(name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		out[field] = ft
	}
	return out, nil
}

// validate checks a loaded configuration. A non-positive depth limit is
// caller misconfiguration the compiler leaves undefined, so it is
// rejected here at the boundary instead.
func validate(cfg *Config) error {
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	for field := range cfg.FieldTypes {
		if len(field) > types.MaxFieldNameLength {
			return fmt.Errorf("field_types key %q exceeds maximum length", field)
		}
	}
	if _, err := cfg.ParsedFieldTypes(); err != nil {
		return err
	}
	return nil
}
