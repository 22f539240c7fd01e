package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/resa/internal/db"
	"github.com/evcraddock/resa/internal/tour"
)

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	// Agent is used for tour documents that leave the agent out.
	Agent     tour.AgentInfo `yaml:"agent,omitempty" json:"agent"`
	ServerURL string         `yaml:"server_url,omitempty" json:"server_url,omitempty"`
	APIKey    string         `yaml:"api_key,omitempty" json:"-"`
	DBPath    string         `yaml:"db,omitempty" json:"db,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "resa", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the remote server URL from the --server flag, env
// var or config. Empty means generate locally.
func getServerURL() string {
	if flagServer != "" {
		return flagServer
	}
	if v := os.Getenv("RESA_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.ServerURL
	}
	return ""
}

// dbPath returns the directory database path from the --db flag, env var,
// config or default.
func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if v := os.Getenv("RESA_DB"); v != "" {
		return v, nil
	}
	cfg, err := loadConfig()
	if err == nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return db.DefaultPath()
}

// getAPIKey returns the API key from env var or config.
func getAPIKey() string {
	if v := os.Getenv("RESA_API_KEY"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.APIKey
	}
	return ""
}
