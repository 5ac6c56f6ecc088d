// Package config loads and persists the application configuration file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// OutputPath is the root directory holding downloaded videos and their
	// metadata records
	OutputPath string `yaml:"output_path"`

	// TempPath is where sampled frames and extracted audio are written
	// during analysis. If empty, a per-run directory under os.TempDir is used.
	TempPath string `yaml:"temp_path"`

	// FFmpegPath is the path to the ffmpeg binary (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// FFprobePath is the path to the ffprobe binary (default: "ffprobe")
	FFprobePath string `yaml:"ffprobe_path"`

	// ObjectDetectorPath is the external object-detection command invoked
	// per sampled frame when object detection is enabled (default: "yolo")
	ObjectDetectorPath string `yaml:"object_detector_path"`

	// DatabasePath is where the run-history database lives
	// (default: config dir + clipscan.db)
	DatabasePath string `yaml:"database_path"`

	// LogLevel is one of debug, info, warn, error (default: info)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputPath:         "videos",
		TempPath:           "",
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		ObjectDetectorPath: "yolo",
		DatabasePath:       "",
		LogLevel:           "info",
	}
}

// Load reads config from a YAML file, applying defaults for missing values.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.ObjectDetectorPath == "" {
		cfg.ObjectDetectorPath = "yolo"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Database returns the run-history database path, defaulting to
// config/clipscan.db alongside the config file.
func (c *Config) Database() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join("config", "clipscan.db")
}

// TempDir returns the directory for scratch files produced during analysis.
// Falls back to the system temp dir when unconfigured.
func (c *Config) TempDir() string {
	if c.TempPath != "" {
		return c.TempPath
	}
	return os.TempDir()
}
