// Package config handles the extraction run configuration: the YAML file
// mapping network names to pretrained model directories, device settings,
// and discovery of input audio files. It performs no table I/O.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/avollmer/deepfeat/logging"
)

// ConfigError reports an invalid or incomplete configuration. It is raised
// before any table I/O begins.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// Config holds the extraction run configuration
type Config struct {
	GPU       bool              `yaml:"gpu"`
	DeviceIDs []int             `yaml:"device_ids"`
	Size      int               `yaml:"size"` // input image edge length in pixels
	Nets      map[string]string `yaml:"nets"` // network name -> model directory
}

// DefaultConfig returns the standard settings written when no configuration
// file exists yet
func DefaultConfig() *Config {
	modelDir := "caffe-master/models/bvlc_alexnet"
	if home, err := os.UserHomeDir(); err == nil {
		modelDir = filepath.Join(home, modelDir)
	}
	return &Config{
		GPU:       true,
		DeviceIDs: []int{0},
		Size:      227,
		Nets:      map[string]string{"alexnet": modelDir},
	}
}

// Load reads the configuration at path. When the file does not exist the
// default configuration is written there and returned, so a first run
// leaves a template behind for editing.
func Load(path string) (*Config, error) {
	logger := logging.WithFields(logging.Fields{"component": "config", "path": path})

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("Writing standard config")
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	logger.Info("Found config file")
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ModelDir resolves the model directory assigned to a network name
func (c *Config) ModelDir(net string) (string, error) {
	dir, ok := c.Nets[net]
	if !ok {
		return "", &ConfigError{Msg: fmt.Sprintf("no model directory defined for net %q", net)}
	}
	return dir, nil
}
