// Package config loads the toolchain's on-disk settings: trace verbosity,
// output defaults, and the live-viewer's refresh behavior. Everything has a
// built-in default, so a missing config file is never an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the CLI and its subcommands consult.
type Config struct {
	Run struct {
		Trace      bool   `toml:"trace"`
		OutputFile string `toml:"output_file"`
		ModulePath string `toml:"module_path"`
	} `toml:"run"`

	Compile struct {
		OutputFile string `toml:"output_file"`
	} `toml:"compile"`

	Viewer struct {
		RefreshMillis int  `toml:"refresh_millis"`
		ShowBorder    bool `toml:"show_border"`
	} `toml:"viewer"`

	Debugger struct {
		HistorySize int  `toml:"history_size"`
		ShowStack   bool `toml:"show_stack"`
	} `toml:"debugger"`
}

// DefaultConfig returns the configuration the CLI runs with when no config
// file is found.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Run.Trace = false
	cfg.Run.OutputFile = "out.bmp"
	cfg.Run.ModulePath = "."

	cfg.Compile.OutputFile = ""

	cfg.Viewer.RefreshMillis = 50
	cfg.Viewer.ShowBorder = true

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowStack = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "dbn")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "dbn")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults when
// path does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the configuration to path in TOML form.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified config path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
