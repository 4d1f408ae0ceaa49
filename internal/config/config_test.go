package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paveg/clump/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	config := config.NewConfig()

	assert.Empty(t, config.JoinLeftSuffix)
	assert.Equal(t, "_joined", config.JoinRightSuffix)
	assert.Equal(t, []string{"", "NA"}, config.NullValues)
	assert.False(t, config.KeepNulls)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
	assert.Equal(t, 5, config.DefaultHead)
	assert.Equal(t, uint64(0), config.SampleSeed) // 0 means random
	assert.False(t, config.VerboseLogging)
	assert.Equal(t, "text", config.LogFormat)
	assert.False(t, config.MetricsCollection)
	require.NoError(t, config.Validate())
}

func TestConfig_Validation(t *testing.T) {
	valid := config.NewConfig()

	tests := []struct {
		name          string
		mutate        func(c *config.Config)
		expectedError string
	}{
		{
			name:          "valid config",
			mutate:        func(*config.Config) {},
			expectedError: "",
		},
		{
			name: "equal suffixes",
			mutate: func(c *config.Config) {
				c.JoinLeftSuffix = "_x"
				c.JoinRightSuffix = "_x"
			},
			expectedError: `JoinLeftSuffix and JoinRightSuffix must differ, both are "_x"`,
		},
		{
			name:          "zero http timeout",
			mutate:        func(c *config.Config) { c.HTTPTimeout = 0 },
			expectedError: "HTTPTimeout must be positive, got 0s",
		},
		{
			name:          "negative default head",
			mutate:        func(c *config.Config) { c.DefaultHead = -1 },
			expectedError: "DefaultHead must be non-negative, got -1",
		},
		{
			name:          "unknown log format",
			mutate:        func(c *config.Config) { c.LogFormat = "xml" },
			expectedError: `LogFormat must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedError)
			}
		})
	}
}

func TestConfig_LoadFromJSON(t *testing.T) {
	jsonData := `{
		"join_right_suffix": "_right",
		"null_values": ["-", "n/a"],
		"default_head": 10,
		"sample_seed": 42,
		"metrics_collection": true
	}`

	config, err := config.LoadFromJSON([]byte(jsonData))
	require.NoError(t, err)

	assert.Equal(t, "_right", config.JoinRightSuffix)
	assert.Equal(t, []string{"-", "n/a"}, config.NullValues)
	assert.Equal(t, 10, config.DefaultHead)
	assert.Equal(t, uint64(42), config.SampleSeed)
	assert.True(t, config.MetricsCollection)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout) // Filled in by WithDefaults
}

func TestConfig_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"verbose_logging": true, "log_format": "json"}`), 0o600))

	config, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, config.VerboseLogging)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "_joined", config.JoinRightSuffix)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
join_left_suffix: _l
join_right_suffix: _r
keep_nulls: true
http_timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	config, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "_l", config.JoinLeftSuffix)
	assert.Equal(t, "_r", config.JoinRightSuffix)
	assert.True(t, config.KeepNulls)
	assert.Equal(t, 10*time.Second, config.HTTPTimeout)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("CLUMP_JOIN_RIGHT_SUFFIX", "_other")
	t.Setenv("CLUMP_NULL_VALUES", "NULL,none")
	t.Setenv("CLUMP_DEFAULT_HEAD", "3")
	t.Setenv("CLUMP_SAMPLE_SEED", "7")
	t.Setenv("CLUMP_VERBOSE_LOGGING", "true")
	t.Setenv("CLUMP_LOG_FORMAT", "JSON")
	t.Setenv("CLUMP_HTTP_TIMEOUT", "2s")

	config := config.LoadFromEnv()

	assert.Equal(t, "_other", config.JoinRightSuffix)
	assert.Equal(t, []string{"NULL", "none"}, config.NullValues)
	assert.Equal(t, 3, config.DefaultHead)
	assert.Equal(t, uint64(7), config.SampleSeed)
	assert.True(t, config.VerboseLogging)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, 2*time.Second, config.HTTPTimeout)
}

func TestConfig_EnvironmentVariableParsing(t *testing.T) {
	t.Setenv("CLUMP_DEFAULT_HEAD", "many")
	t.Setenv("CLUMP_METRICS_COLLECTION", "maybe")

	config := config.LoadFromEnv()

	assert.Equal(t, 5, config.DefaultHead) // Invalid values keep the default
	assert.False(t, config.MetricsCollection)
}

func TestConfig_WithDefaults(t *testing.T) {
	config := config.Config{
		DefaultHead: 20,
	}

	configWithDefaults := config.WithDefaults()

	assert.Equal(t, 20, configWithDefaults.DefaultHead) // Should preserve set value
	assert.Equal(t, "_joined", configWithDefaults.JoinRightSuffix)
	assert.Equal(t, []string{"", "NA"}, configWithDefaults.NullValues)
	assert.False(t, configWithDefaults.MetricsCollection) // Booleans keep their zero values
}

func TestGlobalConfig_SetAndGet(t *testing.T) {
	originalConfig := config.GetGlobalConfig()
	defer config.SetGlobalConfig(originalConfig)

	newConfig := config.NewConfig()
	newConfig.JoinRightSuffix = "_y"
	newConfig.MetricsCollection = true

	config.SetGlobalConfig(newConfig)
	retrievedConfig := config.GetGlobalConfig()

	assert.Equal(t, "_y", retrievedConfig.JoinRightSuffix)
	assert.True(t, retrievedConfig.MetricsCollection)
}

func TestConfig_ToJSON(t *testing.T) {
	cfg := config.NewConfig()

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}

func TestConfig_IsNull(t *testing.T) {
	cfg := config.NewConfig()
	assert.True(t, cfg.IsNull(""))
	assert.True(t, cfg.IsNull("NA"))
	assert.False(t, cfg.IsNull("0"))

	cfg.KeepNulls = true
	assert.False(t, cfg.IsNull("NA"))
}

func TestConfig_UnsupportedFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

	_, err := config.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format: .toml")
}

func TestConfig_InvalidJSON(t *testing.T) {
	_, err := config.LoadFromJSON([]byte(`{"default_head": "five"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON configuration")
}

func TestConfig_LoadFromNonExistentFile(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
