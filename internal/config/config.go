package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "h5bank"
	configFile = "config.yaml"

	// SourceEmbedded marks a Config built only from the embedded defaults.
	SourceEmbedded = "embedded"
)

//go:embed defaults/config.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	c.Source = SourceEmbedded
	return &c, nil
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/h5bank or $HOME/.config/h5bank
//   - macOS: $HOME/.config/h5bank
//   - Windows: %LOCALAPPDATA%\h5bank
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the user configuration file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration from the OS file system. See LoadFS.
func Load(path string) (*Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads the configuration at path over the embedded defaults; keys
// missing from the file keep their default values. An empty path means
// the user configuration file, and if that does not exist the defaults are
// returned unchanged. An explicit path that does not exist is an error.
func LoadFS(fs afero.Fs, path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return c, c.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Source = path

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteDefault writes the embedded defaults to path, creating parent
// directories. The write goes through a temporary file and a rename. An
// existing file is left alone unless overwrite is set.
func WriteDefault(fs afero.Fs, path string, overwrite bool) error {
	if !overwrite {
		if exists, err := afero.Exists(fs, path); err != nil {
			return fmt.Errorf("failed to check %s: %w", path, err)
		} else if exists {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(fs, tmpPath, defaultYAML, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
