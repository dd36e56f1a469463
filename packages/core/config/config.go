package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name read by ApplyEnv
const EnvPrefix = "PAGEFETCH_"

var ErrParsingConfig = errors.New("failed to parse config")

// Config represents the pagefetch configuration
type Config struct {
	Timeout        int               `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"` // milliseconds
	MaxRedirects   int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty" env:"MAX_REDIRECTS"`
	UserAgent      string            `json:"userAgent,omitempty" yaml:"userAgent,omitempty" env:"USER_AGENT"`
	Proxy          string            `json:"proxy,omitempty" yaml:"proxy,omitempty" env:"PROXY"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" env:"HEADERS"` // Default headers for every hop
	DefaultCharset string            `json:"defaultCharset,omitempty" yaml:"defaultCharset,omitempty" env:"DEFAULT_CHARSET"`
	LineBreaks     *bool             `json:"lineBreaks,omitempty" yaml:"lineBreaks,omitempty" env:"LINE_BREAKS"`
	Output         string            `json:"output,omitempty" yaml:"output,omitempty" env:"OUTPUT"` // log, raw or json
	LogLevel       string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty" env:"LOG_LEVEL"`
	LogFormat      string            `json:"logFormat,omitempty" yaml:"logFormat,omitempty" env:"LOG_FORMAT"`
	Archive        string            `json:"archive,omitempty" yaml:"archive,omitempty" env:"ARCHIVE"` // sqlite://path or bolt://path
	Verbose        *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty" env:"VERBOSE"`
	NoColor        *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty" env:"NO_COLOR"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetLineBreaks returns the line breaks setting, defaulting to false
func (c *Config) GetLineBreaks() bool {
	return getBool(c.LineBreaks, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".pagefetch.yaml",
	".pagefetch.yml",
	".pagefetch.json",
	"pagefetch.config.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParsingConfig, path, err)
	}

	return config, nil
}

// LoadEnvFile exports the variables of a .env file. Variables already set in
// the process environment are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PAGEFETCH_* environment variables onto c. Fields without
// a matching variable keep their value.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DefaultCharset != "" {
		result.DefaultCharset = other.DefaultCharset
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}
	if other.Archive != "" {
		result.Archive = other.Archive
	}

	// Boolean flags - only override if explicitly set in other config
	if other.LineBreaks != nil {
		result.LineBreaks = other.LineBreaks
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file, as YAML when the extension
// says so and JSON otherwise
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
