package config

import (
	"fmt"
	"os"
	"path/filepath"

	"musicdl/models"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Load builds the configuration from defaults, the YAML file and the
// environment, in that order. an explicit path must exist; the default
// file in the config directory is optional.
func Load(path string) (*models.EnvConfig, error) {
	cfg := GetDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.ConfigDirectory, configFileName)
	}
	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, err
	}
	if err := LoadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *models.EnvConfig, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed reading config file: %w", err)
	}
	configDir := cfg.ConfigDirectory
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed parsing config file: %w", err)
	}
	cfg.ConfigDirectory = configDir
	return nil
}
