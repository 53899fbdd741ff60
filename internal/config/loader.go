package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config,
// defaults. Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.agentcompany/config.json
// Project: .agentcompany/config.json (relative to cwd)
func LoadDefault() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".agentcompany", "config.json")
	projectPath := filepath.Join(".agentcompany", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base
// config. Missing files are silently skipped; malformed JSON is an error.
func mergeConfigFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Scalar sections override only when set
	if loaded.Company.Name != "" {
		base.Company.Name = loaded.Company.Name
	}
	if loaded.Company.Sector != "" {
		base.Company.Sector = loaded.Company.Sector
	}
	if loaded.Company.Description != "" {
		base.Company.Description = loaded.Company.Description
	}
	if loaded.LLM.BaseURL != "" {
		base.LLM.BaseURL = loaded.LLM.BaseURL
	}
	if loaded.LLM.Model != "" {
		base.LLM.Model = loaded.LLM.Model
	}
	if len(loaded.LLM.APIKeys) > 0 {
		base.LLM.APIKeys = append([]string(nil), loaded.LLM.APIKeys...)
	}
	if loaded.LLM.RequestsPerMinute > 0 {
		base.LLM.RequestsPerMinute = loaded.LLM.RequestsPerMinute
	}

	// Agents merge per department
	for key, agent := range loaded.Agents {
		base.Agents[key] = agent
	}

	return nil
}
