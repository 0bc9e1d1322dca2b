package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "STOREFRONT_"

// Files lists the optional sources read before the process environment.
type Files struct {
	YAML   string
	DotEnv string
}

var DefaultFiles = Files{YAML: "config.yaml", DotEnv: ".env"}

// Load merges defaults, the YAML file, the .env file and STOREFRONT_*
// environment variables, later sources winning, then validates the result.
// STOREFRONT_ORDERS_SUBMITTIMEOUT maps to orders.submittimeout.
func Load(files Files) (*Config, []string, error) {
	var warnings []string
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if files.YAML != "" {
		if err := k.Load(file.Provider(files.YAML), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("error loading YAML config file '%s': %v", files.YAML, err))
		}
	}

	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}

	if files.DotEnv != "" {
		if envFileMap, err := godotenv.Read(files.DotEnv); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
					envMap[envTransformer(key)] = value
				}
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				warnings = append(warnings, fmt.Sprintf("error loading .env config: %v", err))
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("error reading .env file: %v", err))
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		warnings = append(warnings, fmt.Sprintf("error loading system env vars: %v", err))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, warnings, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Catalog.Source = strings.ToLower(cfg.Catalog.Source)
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)

	if err := cfg.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, warnings, nil
}
