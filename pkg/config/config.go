// Package config provides configuration loading and management for roimask.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"roimask/pkg/arrayconv"
	"roimask/pkg/mask"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Codec parameters for raw buffers
	Codec struct {
		// DataType is the element type of raw volume files
		DataType arrayconv.DataType `yaml:"dataType"`

		// LittleEndian selects the byte order of raw volumes and point lists
		LittleEndian bool `yaml:"littleEndian"`
	} `yaml:"codec"`

	// Mask parameters
	Mask struct {
		// MaxBitmapPixels caps the size of a single 2D bitmap
		MaxBitmapPixels int `yaml:"maxBitmapPixels"`

		// Operation is the default operation applied to two masks
		Operation string `yaml:"operation"`
	} `yaml:"mask"`

	// Volume parameters used when thresholding raw data
	Volume struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		Depth  int `yaml:"depth"`

		// Lo and Hi bound the normalized intensity range kept by the threshold
		Lo float64 `yaml:"lo"`
		Hi float64 `yaml:"hi"`

		// NumCores specifies how many goroutines threshold Z slices
		NumCores int `yaml:"numCores"`
	} `yaml:"volume"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging of mask operations
		Verbose bool `yaml:"verbose"`

		// Descriptors prints shape descriptors of the result
		Descriptors bool `yaml:"descriptors"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Codec.DataType = arrayconv.Short
	cfg.Codec.LittleEndian = true

	cfg.Mask.MaxBitmapPixels = mask.DefaultMaxBitmapPixels
	cfg.Mask.Operation = mask.OpUnion.String()

	cfg.Volume.Lo = 0.5
	cfg.Volume.Hi = 1.0
	cfg.Volume.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Output.Verbose = false
	cfg.Output.Descriptors = true

	return cfg
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Codec.DataType.Size() == 0 {
		return fmt.Errorf("codec.dataType must be set")
	}
	if _, err := mask.ParseOp(c.Mask.Operation); err != nil {
		return fmt.Errorf("mask.operation: %w", err)
	}
	if c.Volume.Lo > c.Volume.Hi {
		return fmt.Errorf("volume.lo %v is above volume.hi %v", c.Volume.Lo, c.Volume.Hi)
	}
	if c.Volume.Width < 0 || c.Volume.Height < 0 || c.Volume.Depth < 0 {
		return fmt.Errorf("volume dimensions must be non-negative")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
