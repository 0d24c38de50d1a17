/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// EnvLogLevel overrides Logging.Level when set
const EnvLogLevel = "ODBCONV_LOG_LEVEL"

// Line endings for written CSV
const (
	LineEndingCRLF = "crlf"
	LineEndingLF   = "lf"
)

// Config represents the odbconv configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Logging Logging `yaml:"logging"`
	Tabular Tabular `yaml:"tabular"`
	Limits  Limits  `yaml:"limits"`
	Archive Archive `yaml:"archive"`
	Metrics Metrics `yaml:"metrics"`
	Server  Server  `yaml:"server"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // rotated log file, stderr only when empty
}

// Tabular contains delimited text options
type Tabular struct {
	Delimiter  string `yaml:"delimiter"`
	WriteBOM   bool   `yaml:"write_bom"`
	LineEnding string `yaml:"line_ending"`
}

// Limits bounds input sizes
type Limits struct {
	MaxInputBytes int64 `yaml:"max_input_bytes"`
}

// Archive contains run archive configuration
type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // relative paths resolve under DataDir
}

// Metrics contains metrics export configuration
type Metrics struct {
	Textfile string `yaml:"textfile"` // written after every CLI conversion when set
}

// Server contains HTTP service configuration
type Server struct {
	Bind         string   `yaml:"bind"`
	Port         int      `yaml:"port"`
	APIKey       string   `yaml:"api_key"`
	CORSOrigins  []string `yaml:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Logging: Logging{
			Level: "info",
		},
		Tabular: Tabular{
			Delimiter:  ",",
			WriteBOM:   true,
			LineEnding: LineEndingCRLF,
		},
		Limits: Limits{
			MaxInputBytes: 64 << 20,
		},
		Archive: Archive{
			Enabled: true,
			Dir:     "runs",
		},
		Server: Server{
			Bind:         "127.0.0.1",
			Port:         9280,
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 16 << 20,
		},
	}
}

// LoadConfig loads configuration from the specified path. Missing keys keep
// their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// api_key may be set, keep the file private
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if len([]rune(c.Tabular.Delimiter)) != 1 {
		return errors.Newf("tabular.delimiter must be a single character, got %q", c.Tabular.Delimiter)
	}
	switch c.Tabular.LineEnding {
	case LineEndingCRLF, LineEndingLF:
	default:
		return errors.Newf("tabular.line_ending must be %q or %q, got %q",
			LineEndingCRLF, LineEndingLF, c.Tabular.LineEnding)
	}
	if c.Limits.MaxInputBytes <= 0 {
		return errors.New("limits.max_input_bytes must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// ApplyEnv applies environment overrides
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

// Delimiter returns the tabular delimiter as a rune
func (c *Config) Delimiter() rune {
	for _, r := range c.Tabular.Delimiter {
		return r
	}
	return ','
}

// ArchiveDir returns the absolute or DataDir-relative archive directory
func (c *Config) ArchiveDir() string {
	if filepath.IsAbs(c.Archive.Dir) {
		return c.Archive.Dir
	}
	return filepath.Join(c.DataDir, c.Archive.Dir)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./odbconv.yaml"
	}

	// For Linux/macOS, use ~/.config/odbconv/config.yaml
	configDir := filepath.Join(homeDir, ".config", "odbconv")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(homeDir, ".local", "share", "odbconv")
}
