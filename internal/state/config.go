package state

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default endpoints. Each can be pointed at a mirror in the config file.
const (
	DefaultManifestURL  = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	DefaultResourcesURL = "https://resources.download.minecraft.net"
	DefaultRuntimeURL   = "https://api.adoptium.net/v3/binary/latest"
)

// Config represents the user configuration for minelaunch.
type Config struct {
	Install  InstallConfig  `yaml:"install" json:"install"`
	Launcher LauncherConfig `yaml:"launcher" json:"launcher"`
	Profile  ProfileConfig  `yaml:"profile" json:"profile"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// InstallConfig holds the install root and download endpoints.
type InstallConfig struct {
	// Directory is the install root. Empty means the XDG data directory.
	Directory    string `yaml:"directory" json:"directory"`
	Concurrency  int    `yaml:"concurrency" json:"concurrency"`
	ManifestURL  string `yaml:"manifest_url" json:"manifest_url"`
	ResourcesURL string `yaml:"resources_url" json:"resources_url"`
	RuntimeURL   string `yaml:"runtime_url" json:"runtime_url"`
}

// LauncherConfig holds the brand reported to the game.
type LauncherConfig struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// ProfileConfig holds the player identity and JVM tuning.
type ProfileConfig struct {
	Username string `yaml:"username" json:"username"`
	// Memory is the maximum heap, e.g. "2G". Empty leaves the JVM default.
	Memory string `yaml:"memory" json:"memory"`
	// OnlineUUID looks the player's UUID up from the Mojang profile API
	// instead of deriving an offline one.
	OnlineUUID bool `yaml:"online_uuid" json:"online_uuid"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Install: InstallConfig{
			Directory:    "",
			Concurrency:  25,
			ManifestURL:  DefaultManifestURL,
			ResourcesURL: DefaultResourcesURL,
			RuntimeURL:   DefaultRuntimeURL,
		},
		Launcher: LauncherConfig{
			Name:    "minelaunch",
			Version: "dev",
		},
		Profile: ProfileConfig{
			Username:   "Player",
			Memory:     "",
			OnlineUUID: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// InstallDir returns the configured install root with "~" expanded,
// falling back to the XDG data directory.
func (c *Config) InstallDir() (string, error) {
	if c.Install.Directory == "" {
		return GetDataDir()
	}
	return ExpandHome(c.Install.Directory)
}

// LoadConfig loads the configuration from the default config file.
func LoadConfig(ctx context.Context) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFile(ctx, configPath)
}

// LoadConfigFile loads the configuration from configPath.
// If the file doesn't exist, it creates a new one with defaults.
// If the file is corrupted, it backs up the corrupted file and creates a fresh one.
func LoadConfigFile(ctx context.Context, configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfigFile(ctx, cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	//nolint:gosec // G304: config path comes from the user's own flags or XDG dirs
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := configPath + ".corrupted"
		if backupErr := os.Rename(configPath, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		cfg := DefaultConfig()
		if saveErr := SaveConfigFile(ctx, cfg, configPath); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}

		return cfg, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default config file.
func SaveConfig(ctx context.Context, cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigFile(ctx, cfg, configPath)
}

// SaveConfigFile saves the configuration to configPath using atomic writes.
func SaveConfigFile(_ context.Context, cfg *Config, configPath string) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := AtomicWrite(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConcurrency(cfg.Install.Concurrency); err != nil {
		return fmt.Errorf("invalid install concurrency: %w", err)
	}

	for name, url := range map[string]string{
		"manifest_url":  cfg.Install.ManifestURL,
		"resources_url": cfg.Install.ResourcesURL,
		"runtime_url":   cfg.Install.RuntimeURL,
	} {
		if err := ValidateURL(url); err != nil {
			return fmt.Errorf("invalid install %s: %w", name, err)
		}
	}

	if cfg.Launcher.Name == "" {
		return fmt.Errorf("launcher name cannot be empty")
	}

	if err := ValidatePlayerName(cfg.Profile.Username); err != nil {
		return fmt.Errorf("invalid profile username: %w", err)
	}

	if cfg.Profile.Memory != "" {
		if err := ValidateMemory(cfg.Profile.Memory); err != nil {
			return fmt.Errorf("invalid profile memory: %w", err)
		}
	}

	if err := ValidateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}

	return nil
}
