// Package config provides configuration management for clump collections
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for collection verbs and the
// readers and writers around them
type Config struct {
	// Join Configuration
	JoinLeftSuffix  string `json:"join_left_suffix" yaml:"join_left_suffix"`   // Suffix for colliding left keys
	JoinRightSuffix string `json:"join_right_suffix" yaml:"join_right_suffix"` // Suffix for colliding right keys

	// Reader Configuration
	NullValues  []string      `json:"null_values" yaml:"null_values"`   // CSV cells treated as missing
	KeepNulls   bool          `json:"keep_nulls" yaml:"keep_nulls"`     // Keep null cells as empty strings instead of dropping the key
	HTTPTimeout time.Duration `json:"http_timeout" yaml:"http_timeout"` // Timeout for URL sources

	// Verb Configuration
	DefaultHead int    `json:"default_head" yaml:"default_head"` // Rows shown by Head when none is given
	SampleSeed  uint64 `json:"sample_seed" yaml:"sample_seed"`   // Seed for Sample (0 = random)

	// Debugging Configuration
	VerboseLogging    bool   `json:"verbose_logging" yaml:"verbose_logging"`       // Enable debug logging
	LogFormat         string `json:"log_format" yaml:"log_format"`                 // "text" or "json"
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Enable per-verb metrics
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultJoinLeftSuffix  = ""
	DefaultJoinRightSuffix = "_joined"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultHeadRows        = 5
	DefaultLogFormat       = "text"
)

// DefaultNullValues are the CSV cells read as missing.
var DefaultNullValues = []string{"", "NA"}

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		JoinLeftSuffix:  DefaultJoinLeftSuffix,
		JoinRightSuffix: DefaultJoinRightSuffix,

		NullValues:  append([]string(nil), DefaultNullValues...),
		KeepNulls:   false,
		HTTPTimeout: DefaultHTTPTimeout,

		DefaultHead: DefaultHeadRows,
		SampleSeed:  0, // Random

		VerboseLogging:    false,
		LogFormat:         DefaultLogFormat,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.JoinLeftSuffix == c.JoinRightSuffix {
		return fmt.Errorf("JoinLeftSuffix and JoinRightSuffix must differ, both are %q", c.JoinLeftSuffix)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTPTimeout must be positive, got %s", c.HTTPTimeout)
	}

	if c.DefaultHead < 0 {
		return fmt.Errorf("DefaultHead must be non-negative, got %d", c.DefaultHead)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LogFormat must be text or json, got %q", c.LogFormat)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.JoinRightSuffix == "" {
		c.JoinRightSuffix = defaults.JoinRightSuffix
	}
	if c.NullValues == nil {
		c.NullValues = defaults.NullValues
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = defaults.HTTPTimeout
	}
	if c.DefaultHead == 0 {
		c.DefaultHead = defaults.DefaultHead
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}

	// Note: Boolean fields and the left suffix keep their zero values, which
	// are also their defaults

	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from CLUMP_* environment variables on top
// of the defaults. Values that fail to parse are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	if val, ok := os.LookupEnv("CLUMP_JOIN_LEFT_SUFFIX"); ok {
		config.JoinLeftSuffix = val
	}

	if val, ok := os.LookupEnv("CLUMP_JOIN_RIGHT_SUFFIX"); ok {
		config.JoinRightSuffix = val
	}

	if val, ok := os.LookupEnv("CLUMP_NULL_VALUES"); ok {
		config.NullValues = strings.Split(val, ",")
	}

	if val := os.Getenv("CLUMP_KEEP_NULLS"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.KeepNulls = parsed
		}
	}

	if val := os.Getenv("CLUMP_HTTP_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			config.HTTPTimeout = parsed
		}
	}

	if val := os.Getenv("CLUMP_DEFAULT_HEAD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.DefaultHead = parsed
		}
	}

	if val := os.Getenv("CLUMP_SAMPLE_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			config.SampleSeed = parsed
		}
	}

	if val := os.Getenv("CLUMP_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	if val := os.Getenv("CLUMP_LOG_FORMAT"); val != "" {
		config.LogFormat = strings.ToLower(val)
	}

	if val := os.Getenv("CLUMP_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}

// IsNull reports whether a raw cell counts as missing under c.
func (c Config) IsNull(cell string) bool {
	if c.KeepNulls {
		return false
	}
	for _, v := range c.NullValues {
		if cell == v {
			return true
		}
	}
	return false
}
