package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// Load reads, interpolates, and validates a YAML config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			"reading config file", err).WithContext("path", path)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			"unmarshaling config", err).WithContext("path", path)
	}

	interpolate(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults behaves like Load but falls back to the default
// configuration when no file exists at path.
func LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolate expands ${VAR} references from the environment in the
// string fields where secrets and endpoints usually live. Unset
// variables leave the reference untouched so the validator can flag
// the value.
func interpolate(cfg *Config) {
	interpolateBrain(&cfg.Brain)
	if cfg.Planner.Brain != nil {
		interpolateBrain(cfg.Planner.Brain)
	}
	for i := range cfg.Workers {
		if cfg.Workers[i].Brain != nil {
			interpolateBrain(cfg.Workers[i].Brain)
		}
	}
	cfg.Planner.ExampleLibrary = interpolateString(cfg.Planner.ExampleLibrary)
}

func interpolateBrain(b *BrainConfig) {
	b.APIKey = interpolateString(b.APIKey)
	b.BaseURL = interpolateString(b.BaseURL)
	b.Model = interpolateString(b.Model)
}

func interpolateString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}
