package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration with viper.
// CLI flags > environment > config file > defaults precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("filter.max_depth", defaults.MaxDepth)
	v.SetDefault("filter.allowed_fields", defaults.AllowedFields)
	v.SetDefault("filter.field_types", defaults.FieldTypes)
	v.SetDefault("filter.indexed_fields", defaults.IndexedFields)
	v.SetDefault("filter.table_qualifier", defaults.TableQualifier)

	// Bind environment variables with SIEVE_ prefix
	v.SetEnvPrefix("SIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		MaxDepth:       v.GetInt("filter.max_depth"),
		AllowedFields:  v.GetStringSlice("filter.allowed_fields"),
		FieldTypes:     v.GetStringMapString("filter.field_types"),
		IndexedFields:  v.GetStringSlice("filter.indexed_fields"),
		TableQualifier: v.GetString("filter.table_qualifier"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
