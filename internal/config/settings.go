package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings holds the app's own knobs, separate from the shared
// dashboard contract.
type Settings struct {
	General GeneralSettings `toml:"general"`
	Display DisplaySettings `toml:"display"`
}

type GeneralSettings struct {
	Interval int    `toml:"interval"` // watch refresh seconds
	Timezone string `toml:"timezone"`
}

type DisplaySettings struct {
	BarWidth  int `toml:"bar_width"`
	MaxModels int `toml:"max_models"` // breakdown rows shown; 0 = all
}

func DefaultSettings() Settings {
	return Settings{
		General: GeneralSettings{
			Interval: 1,
			Timezone: "Local",
		},
		Display: DisplaySettings{
			BarWidth:  20,
			MaxModels: 5,
		},
	}
}

func SettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "claude-bar", "config.toml")
}

func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // use defaults
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if cfg.Display.BarWidth <= 0 {
		cfg.Display.BarWidth = 20
	}
	if cfg.General.Interval <= 0 {
		cfg.General.Interval = 1
	}
	return cfg, nil
}

func SaveSettings(cfg Settings, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open settings file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}
