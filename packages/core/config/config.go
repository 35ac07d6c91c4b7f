package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the consumed configuration surface. The library never writes
// it; the active environment and its variables feed the environment
// provider, Timezone feeds $localDatetime.
type Config struct {
	DefaultEnvironment string                    `json:"defaultEnvironment,omitempty" yaml:"defaultEnvironment,omitempty"`
	Environments       map[string]map[string]any `json:"environments,omitempty" yaml:"environments,omitempty"`
	Headers            map[string]string         `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timezone           string                    `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	DotenvPath         string                    `json:"dotenvPath,omitempty" yaml:"dotenvPath,omitempty"`
}

// ConfigFilenames contains the file names searched, in order.
var ConfigFilenames = []string{
	".restfile.config.json",
	"restfile.config.json",
	"restfile.yaml",
	"restfile.yml",
}

func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads the given path, or searches the current directory when
// path is empty.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches dir for a known config file name, returning
// defaults when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.Timezone != "" {
		result.Timezone = other.Timezone
	}
	if other.DotenvPath != "" {
		result.DotenvPath = other.DotenvPath
	}
	if len(other.Environments) > 0 {
		envs := make(map[string]map[string]any, len(result.Environments)+len(other.Environments))
		for name, vars := range result.Environments {
			envs[name] = vars
		}
		result.Environments = envs
		for name, vars := range other.Environments {
			merged := make(map[string]any, len(vars))
			for k, v := range result.Environments[name] {
				merged[k] = v
			}
			for k, v := range vars {
				merged[k] = v
			}
			result.Environments[name] = merged
		}
	}
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// Location resolves the configured timezone, defaulting to the host's.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
