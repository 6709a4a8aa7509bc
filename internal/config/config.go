package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcuoli/go-lanaudit/pkg/lanaudit"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the optional YAML configuration file. Fields left empty keep
// the value from the command line.
type Config struct {
	Ports       []int  `yaml:"ports"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	Workers     int    `yaml:"workers"`
	WindowMs    int    `yaml:"window_ms"`
	Interface   string `yaml:"interface"`
	Backend     string `yaml:"backend"`
	OUIPath     string `yaml:"oui_path"`
	ProbeTarget string `yaml:"probe_target"`
	OutputDir   string `yaml:"output_dir"`
	NoCSV       bool   `yaml:"no_csv"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects values that would silently change the scan.
func (c *Config) Validate() error {
	for _, p := range c.Ports {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrInvalid, p)
		}
	}
	if c.TimeoutMs < 0 || c.WindowMs < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: negative timeout, window or workers", ErrInvalid)
	}
	switch c.Backend {
	case "", lanaudit.BackendPcap, lanaudit.BackendARPing:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// Apply copies every non-empty field onto opts.
func (c *Config) Apply(opts *lanaudit.Options) {
	if len(c.Ports) > 0 {
		opts.Ports = append([]int(nil), c.Ports...)
	}
	if c.TimeoutMs > 0 {
		opts.Timeout = c.Timeout()
	}
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	if c.WindowMs > 0 {
		opts.Window = c.Window()
	}
	if c.Interface != "" {
		opts.Interface = c.Interface
	}
	if c.Backend != "" {
		opts.Backend = c.Backend
	}
	if c.OUIPath != "" {
		opts.OUIPath = c.OUIPath
	}
	if c.ProbeTarget != "" {
		opts.ProbeTarget = c.ProbeTarget
	}
}
