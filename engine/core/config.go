package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report_caller"`
}

type AssetsConfig struct {
	// Root directory every asset path is resolved against.
	BasePath string `toml:"base_path"`
	// Directories, relative to BasePath, probed when a requested file is missing.
	SearchPaths       []string `toml:"search_paths"`
	MaxHierarchyDepth uint32   `toml:"max_hierarchy_depth"`
	Watch             bool     `toml:"watch"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type RendererConfig struct {
	MaxTextures uint32 `toml:"max_textures"`
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Assets   AssetsConfig   `toml:"assets"`
	Jobs     JobsConfig     `toml:"jobs"`
	Renderer RendererConfig `toml:"renderer"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			BasePath:          "assets",
			MaxHierarchyDepth: 64,
		},
		Jobs: JobsConfig{
			Workers:   runtime.NumCPU(),
			QueueSize: 64,
		},
		Renderer: RendererConfig{
			MaxTextures: 1024,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. A missing file is not
// an error and yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogWarn("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Assets.MaxHierarchyDepth == 0 {
		return fmt.Errorf("%w: assets.max_hierarchy_depth must be greater than 0", ErrInvalidConfig)
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("%w: jobs.workers must be greater than 0", ErrInvalidConfig)
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("%w: jobs.queue_size must not be negative", ErrInvalidConfig)
	}
	if c.Renderer.MaxTextures == 0 {
		return fmt.Errorf("%w: renderer.max_textures must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

// Marshal renders the configuration back to TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
