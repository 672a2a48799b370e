package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-adoc2md/internal/dateutil"
	"github.com/alnah/go-adoc2md/internal/fileutil"
	"github.com/alnah/go-adoc2md/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAttributeNameLength  = 100
	MaxAttributeValueLength = 2048
	MaxPathLength           = 4096
	MaxAttributes           = 500
)

// Logging levels.
const (
	LogNone   = "none"
	LogNormal = "normal"
	LogDebug  = "debug"
)

// configDirName is the directory searched under the user config directory.
const configDirName = "go-adoc2md"

// Config holds all configuration for document conversion.
type Config struct {
	// Attributes are passed to every conversion. A false value unsets the
	// attribute, an empty value sets it to the empty string.
	Attributes map[string]any `yaml:"attributes"`
	Input      InputConfig    `yaml:"input"`
	Output     OutputConfig   `yaml:"output"`
	Logging    LoggingConfig  `yaml:"logging"`
	Date       DateConfig     `yaml:"date"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	HTML       bool   `yaml:"html"`       // Also write an HTML preview
}

// LoggingConfig defines diagnostic output options.
type LoggingConfig struct {
	Level string `yaml:"level"` // "none", "normal" (default), "debug"
}

// DateConfig defines how the date attributes are formatted.
type DateConfig struct {
	Format string `yaml:"format"` // Token format or preset (default: YYYY-MM-DD)
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if len(c.Attributes) > MaxAttributes {
		return fmt.Errorf("%w: attributes (%d entries, max %d)", ErrFieldTooLong, len(c.Attributes), MaxAttributes)
	}
	for name, value := range c.Attributes {
		if name == "" {
			return fmt.Errorf("%w: attributes: empty name", ErrInvalidValue)
		}
		if err := validateFieldLength("attributes name", name, MaxAttributeNameLength); err != nil {
			return err
		}
		switch value.(type) {
		case nil, string, bool, int, int64, uint64, float64:
		default:
			return fmt.Errorf("%w: attributes.%s: must be a scalar", ErrInvalidValue, name)
		}
		if err := validateFieldLength("attributes."+name, attributeValue(value), MaxAttributeValueLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", LogNone, LogNormal, LogDebug:
	default:
		return fmt.Errorf("%w: logging.level %q (must be none, normal, or debug)", ErrInvalidValue, c.Logging.Level)
	}

	if c.Date.Format != "" {
		if _, err := dateutil.ParseDateFormat(c.Date.Format); err != nil {
			return fmt.Errorf("date.format: %w", err)
		}
	}

	return nil
}

// AttributeMap returns the configured attributes as conversion overrides.
// A false value becomes an unset ("name!") entry.
func (c *Config) AttributeMap() map[string]string {
	out := make(map[string]string, len(c.Attributes))
	for name, value := range c.Attributes {
		if b, ok := value.(bool); ok && !b {
			out[name+"!"] = ""
			continue
		}
		out[name] = attributeValue(value)
	}
	return out
}

// attributeValue renders a YAML scalar as attribute text. true and null
// both mean "set", which AsciiDoc spells as the empty string.
func attributeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{
		Attributes: map[string]any{},
		Logging:    LoggingConfig{Level: LogNormal},
		Date:       DateConfig{Format: dateutil.DefaultDateFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParse, yamlutil.FormatError(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup
// order: current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing candidate of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// DatePresetNames returns the preset names accepted by date.format, sorted.
func DatePresetNames() []string {
	names := make([]string, 0, len(dateutil.DatePresets))
	for name := range dateutil.DatePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
