// Package userconfig remembers which API origin the user picked for each
// project file. Selections live in ~/.config/hirehub-console/config.json,
// keyed by the absolute path of the project's console.json, so two
// checkouts listing different origins never share a choice.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	configDirName  = "hirehub-console"
	configFileName = "config.json"
)

// Selection is the origin remembered for one project file
type Selection struct {
	Origin     string    `json:"origin"`
	SelectedAt time.Time `json:"selected_at"`
}

// UserConfig is the per-user state file
type UserConfig struct {
	Selections map[string]Selection `json:"selections"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load reads the user config. A missing file is an empty config.
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &UserConfig{Selections: make(map[string]Selection)}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}
	if cfg.Selections == nil {
		cfg.Selections = make(map[string]Selection)
	}

	return cfg, nil
}

// Save replaces the user config file. The new content is written to a
// temporary file first so a concurrent command never reads a torn file.
func (c *UserConfig) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set user config permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), configPath); err != nil {
		return fmt.Errorf("failed to replace user config file: %w", err)
	}
	return nil
}

// SelectedOrigin returns the origin remembered for projectFile, or "" when
// none is
func SelectedOrigin(projectFile string) (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Selections[projectKey(projectFile)].Origin, nil
}

// SelectOrigin remembers origin for projectFile. An empty origin forgets the
// selection.
func SelectOrigin(projectFile, origin string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	key := projectKey(projectFile)
	if origin == "" {
		delete(cfg.Selections, key)
	} else {
		cfg.Selections[key] = Selection{Origin: origin, SelectedAt: time.Now().UTC()}
	}
	return cfg.Save()
}

func projectKey(projectFile string) string {
	if projectFile == "" {
		return ""
	}
	if abs, err := filepath.Abs(projectFile); err == nil {
		return abs
	}
	return filepath.Clean(projectFile)
}
