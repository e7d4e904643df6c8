// Package config loads the optional defaults file for yubikey-setup.
//
// The file is entirely optional: every field has a flag or a built-in
// default, and a missing file is not an error. It exists so that a team can
// ship one config to new laptops instead of repeating flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/enableit/yubikey-setup/internal/gpg"
)

// Config holds the file-backed defaults.
type Config struct {
	// GPGKeyPath is the default public key file, used when --gpg-key is
	// not given. A leading ~/ is expanded against the home directory.
	GPGKeyPath string `yaml:"gpg_key_path"`

	// EmailDomain is the domain for the fallback recipient identifier.
	EmailDomain string `yaml:"email_domain"`

	// KnownKeyID marks the import step as already done when present in
	// the local keyring listing.
	KnownKeyID string `yaml:"known_key_id"`

	// SkipPinCheck suppresses the interactive PIN confirmation.
	SkipPinCheck bool `yaml:"skip_pin_check"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		EmailDomain: gpg.DefaultEmailDomain,
		KnownKeyID:  gpg.KnownKeyID,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "yubikey-setup", "config.yaml")
}

// Load reads the config file at path, falling back to DefaultPath when path
// is empty. A missing file yields the built-in defaults.
func Load(path, home string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath(home)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.GPGKeyPath != "" {
		cfg.GPGKeyPath = ExpandHome(cfg.GPGKeyPath, home)
	}
	return cfg, nil
}

// ExpandHome expands a leading ~/ against the home directory.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(home, path[2:])
	}
	return path
}
