package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ToolConfig holds optional CLI flag defaults, loaded from an m3dhost.toml
// file a flag's default value falls back to when the flag itself is unset.
type ToolConfig struct {
	Port struct {
		Glob string `toml:"glob"`
	} `toml:"port"`

	Stages struct {
		Validation           bool `toml:"validation"`
		Preparation          bool `toml:"preparation"`
		Wavebonding          bool `toml:"wavebonding"`
		Thermalbonding       bool `toml:"thermalbonding"`
		Bedcompensation      bool `toml:"bedcompensation"`
		Backlashcompensation bool `toml:"backlashcompensation"`
		Feedrateconversion   bool `toml:"feedrateconversion"`
	} `toml:"stages"`

	Filament struct {
		Type        int `toml:"type"`
		Temperature int `toml:"temperature"`
	} `toml:"filament"`

	Backlash struct {
		X     float64 `toml:"x"`
		Y     float64 `toml:"y"`
		Speed float64 `toml:"speed"`
	} `toml:"backlash"`
}

// DefaultToolConfig returns the flag defaults the CLI falls back to when no
// m3dhost.toml is present.
func DefaultToolConfig() *ToolConfig {
	cfg := &ToolConfig{}
	cfg.Port.Glob = "/dev/ttyACM*"
	cfg.Stages.Validation = true
	cfg.Stages.Preparation = true
	cfg.Stages.Wavebonding = true
	cfg.Stages.Thermalbonding = true
	cfg.Stages.Bedcompensation = true
	cfg.Stages.Backlashcompensation = true
	cfg.Stages.Feedrateconversion = true
	cfg.Filament.Type = 0
	cfg.Filament.Temperature = 220
	cfg.Backlash.X = 0
	cfg.Backlash.Y = 0
	cfg.Backlash.Speed = 1500
	return cfg
}

// GetToolConfigPath returns the platform-specific m3dhost.toml location,
// creating the containing directory if necessary.
func GetToolConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "m3dhost.toml"
	}
	configDir := filepath.Join(homeDir, ".config", "m3dhost")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return "m3dhost.toml"
	}
	return filepath.Join(configDir, "m3dhost.toml")
}

// LoadToolConfig loads CLI defaults from the default m3dhost.toml path,
// falling back to DefaultToolConfig when the file is absent.
func LoadToolConfig() (*ToolConfig, error) {
	return LoadToolConfigFrom(GetToolConfigPath())
}

// LoadToolConfigFrom loads CLI defaults from the named file.
func LoadToolConfigFrom(path string) (*ToolConfig, error) {
	cfg := DefaultToolConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parse tool config file: %w", err)
	}
	return cfg, nil
}

// Save writes c to the default m3dhost.toml path.
func (c *ToolConfig) Save() error {
	return c.SaveTo(GetToolConfigPath())
}

// SaveTo writes c to the named file in TOML format.
func (c *ToolConfig) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("config: create tool config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- fixed config path under the user's config dir
	if err != nil {
		return fmt.Errorf("config: create tool config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: encode tool config: %w", err)
	}
	return nil
}
