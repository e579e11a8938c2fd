package smith

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jlrickert/cli-toolkit/clock"
	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/reportsmith/reportsmith/pkg/internal"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigAppName names the XDG config directory.
	ConfigAppName = "reportsmith"

	// DefaultReportsRoot is where reports live when the config does not
	// say otherwise, relative to the working directory.
	DefaultReportsRoot = "reports"

	// DefaultBaselinePath is the template folder new reports copy from.
	DefaultBaselinePath = "baseline_report"
)

// LogConfig holds the logging knobs from the config file. Flag values
// override these.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Config is the user-level config (~/.config/reportsmith/config.yaml).
type Config struct {
	Version      string    `yaml:"version,omitempty"`
	Updated      string    `yaml:"updated,omitempty"`
	ReportsRoot  string    `yaml:"reports_root,omitempty"`
	BaselinePath string    `yaml:"baseline_path,omitempty"`
	Log          LogConfig `yaml:"log,omitempty"`
}

// DefaultConfigPath returns the XDG location of the user config file.
func DefaultConfigPath() (string, error) {
	dir, err := internal.GetConfigDir(ConfigAppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns a config with every field at its default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ReadConfig loads the config file at path. A missing file is not an
// error; it yields the defaults.
func ReadConfig(ctx context.Context, path string) (*Config, error) {
	lg := mylog.LoggerFromContext(ctx)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lg.Debug("config file missing, using defaults", "path", path)
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		lg.Error("config file is not valid yaml", "path", path, "err", err)
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills the zero fields in place.
func (cfg *Config) ApplyDefaults() {
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.ReportsRoot == "" {
		cfg.ReportsRoot = DefaultReportsRoot
	}
	if cfg.BaselinePath == "" {
		cfg.BaselinePath = DefaultBaselinePath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Merge overlays the non-zero fields of other onto cfg.
func (cfg *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Version != "" {
		cfg.Version = other.Version
	}
	if other.ReportsRoot != "" {
		cfg.ReportsRoot = other.ReportsRoot
	}
	if other.BaselinePath != "" {
		cfg.BaselinePath = other.BaselinePath
	}
	if other.Log.Level != "" {
		cfg.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		cfg.Log.File = other.Log.File
	}
	cfg.Log.JSON = cfg.Log.JSON || other.Log.JSON
}

// Write stores the config at path atomically, stamping Updated. The
// temp file is written next to the target so the rename stays on one
// filesystem.
func (cfg *Config) Write(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	clk := clock.ClockFromContext(ctx)
	cfg.Updated = clk.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir %s: %w", filepath.Dir(path), err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write temp config %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config %s: %w", path, err)
	}
	return nil
}
