// Package config reads the project file that lists the HireHub API origins
// a checkout works against.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = "console.json"

// ErrNotFound is returned when no project file exists up the directory tree
var ErrNotFound = errors.New(ConfigFileName + " not found")

// Origin is one HireHub API the console can talk to
type Origin struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
}

// Label formats the origin for prompts and messages
func (o Origin) Label() string {
	if o.Alias == "" {
		return o.URL
	}
	return fmt.Sprintf("%s (%s)", o.Alias, o.URL)
}

// Config represents the project file
type Config struct {
	Origins []Origin `json:"origins"`

	// Path is the absolute location the file was loaded from
	Path string `json:"-"`
}

// FindConfigFile searches for console.json in dir and its parents
func FindConfigFile(dir string) (string, error) {
	start := dir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, start)
}

// Load reads the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for i := range cfg.Origins {
		cfg.Origins[i].URL = strings.TrimRight(strings.TrimSpace(cfg.Origins[i].URL), "/")
	}

	if cfg.Path, err = filepath.Abs(path); err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from the current directory or its parents
func LoadFromCurrentDir() (*Config, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath, err := FindConfigFile(currentDir)
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Add appends an origin unless its URL is already listed. It reports whether
// the config changed.
func (c *Config) Add(url, alias string) bool {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	for _, origin := range c.Origins {
		if origin.URL == url {
			return false
		}
	}

	if alias == "" {
		if len(c.Origins) == 0 {
			alias = "production"
		} else {
			alias = fmt.Sprintf("origin-%d", len(c.Origins)+1)
		}
	}

	c.Origins = append(c.Origins, Origin{URL: url, Alias: alias})
	return true
}

// Find returns the origin whose URL or alias matches urlOrAlias
func (c *Config) Find(urlOrAlias string) (*Origin, error) {
	trimmed := strings.TrimRight(urlOrAlias, "/")

	// First try by URL
	for i := range c.Origins {
		if c.Origins[i].URL == trimmed {
			return &c.Origins[i], nil
		}
	}

	// Then try by alias
	for i := range c.Origins {
		if c.Origins[i].Alias == urlOrAlias {
			return &c.Origins[i], nil
		}
	}

	return nil, fmt.Errorf("origin with URL or alias '%s' not found in %s", urlOrAlias, ConfigFileName)
}
