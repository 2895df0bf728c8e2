package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionpulse/internal/analysis"
)

var configEnvVars = []string{
	"PULSE_SERVER_PORT", "PULSE_SERVER_READ_TIMEOUT", "PULSE_SERVER_WRITE_TIMEOUT",
	"PULSE_SECURITY_ALLOWED_ORIGINS", "PULSE_SECURITY_ENABLE_CORS",
	"PULSE_LOGGING_LEVEL", "PULSE_LOGGING_FORMAT", "PULSE_LOGGING_OUTPUT",
	"PULSE_ANALYSIS_SPLIT_STRATEGY", "PULSE_ANALYSIS_WINDOW_SIZE",
	"PULSE_PATHS_DATA_DIR", "PULSE_PATHS_LOGS_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range configEnvVars {
		if val := os.Getenv(envVar); val != "" {
			saved := val
			name := envVar
			t.Cleanup(func() { os.Setenv(name, saved) })
		}
		os.Unsetenv(envVar)
	}
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)

				assert.Equal(t, "slopechange", cfg.Analysis.SplitStrategy)
				assert.Equal(t, 10, cfg.Analysis.WindowSize)

				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, "logs", cfg.Paths.LogsDir)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				os.Setenv("PULSE_SERVER_PORT", "9090")
				os.Setenv("PULSE_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("PULSE_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("PULSE_LOGGING_LEVEL", "debug")
				os.Setenv("PULSE_LOGGING_FORMAT", "text")
				os.Setenv("PULSE_ANALYSIS_SPLIT_STRATEGY", "quantile")
				os.Setenv("PULSE_ANALYSIS_WINDOW_SIZE", "20")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() forces json
				assert.Equal(t, "quantile", cfg.Analysis.SplitStrategy)
				assert.Equal(t, 20, cfg.Analysis.WindowSize)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				os.Setenv("PULSE_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setupEnv: func() {
				os.Setenv("PULSE_SERVER_READ_TIMEOUT", "-5s")
			},
			wantErr: true,
		},
		{
			name: "empty allowed origins",
			setupEnv: func() {
				os.Setenv("PULSE_SECURITY_ALLOWED_ORIGINS", "")
			},
			wantErr: true,
		},
		{
			name: "unknown split strategy",
			setupEnv: func() {
				os.Setenv("PULSE_ANALYSIS_SPLIT_STRATEGY", "bisect")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.setupEnv != nil {
				tt.setupEnv()
				t.Cleanup(func() { clearEnv(t) })
			}

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadFromFile tests the loadFromFile function
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid YAML config",
			fileContent: `
server:
  port: 9000
  read_timeout: 25s
security:
  allowed_origins: ["http://test.com"]
  enable_cors: false
analysis:
  split_strategy: quantile
  window_size: 15
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 25*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://test.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "quantile", cfg.Analysis.SplitStrategy)
				assert.Equal(t, 15, cfg.Analysis.WindowSize)
			},
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
		{
			name: "partial config",
			fileContent: `
server:
  port: 8888
logging:
  level: error
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8888, cfg.Server.Port)
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeout)
				assert.Empty(t, cfg.Security.AllowedOrigins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configFile := filepath.Join(tempDir, "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.fileContent), 0644))

			cfg, err := loadFromFile(configFile)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		_, err := loadFromFile("/non/existent/file.yaml")
		assert.Error(t, err)
	})
}

// TestMergeConfigs tests that env values win and file values fill gaps
func TestMergeConfigs(t *testing.T) {
	fileConfig := Config{
		Server: ServerConfig{
			Port:        6060,
			ReadTimeout: 20 * time.Second,
		},
		Analysis: AnalysisConfig{
			SplitStrategy: "quantile",
			WindowSize:    25,
		},
	}

	envConfig := Config{
		Server: ServerConfig{
			Port:        7070, // overrides file
			ReadTimeout: 0,    // falls back to file
		},
		Analysis: AnalysisConfig{
			SplitStrategy: "", // falls back to file
			WindowSize:    5,  // overrides file
		},
	}

	merged := mergeConfigs(fileConfig, envConfig)

	assert.Equal(t, 7070, merged.Server.Port)
	assert.Equal(t, 20*time.Second, merged.Server.ReadTimeout)
	assert.Equal(t, "quantile", merged.Analysis.SplitStrategy)
	assert.Equal(t, 5, merged.Analysis.WindowSize)
}

// TestValidate tests the validate function
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
			errMsg:  "invalid server port: 0",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 99999 },
			wantErr: true,
			errMsg:  "invalid server port: 99999",
		},
		{
			name:    "invalid read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -1 * time.Second },
			wantErr: true,
			errMsg:  "server read timeout must be positive",
		},
		{
			name:    "invalid upload limit",
			mutate:  func(c *Config) { c.Server.MaxUploadBytes = 0 },
			wantErr: true,
			errMsg:  "max upload bytes must be positive",
		},
		{
			name:    "empty allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: true,
			errMsg:  "at least one allowed origin must be specified",
		},
		{
			name:    "unknown split strategy",
			mutate:  func(c *Config) { c.Analysis.SplitStrategy = "bisect" },
			wantErr: true,
			errMsg:  "unknown split strategy",
		},
		{
			name: "logging format auto-correction",
			mutate: func(c *Config) {
				c.Logging.Format = "text"
				c.Logging.Output = "console"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "json", cfg.Logging.Format)
			assert.Contains(t, []string{"both", "file"}, cfg.Logging.Output)
		})
	}
}

// TestAnalysisOptions checks the conversion into engine options
func TestAnalysisOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.AnalysisOptions()
	assert.Equal(t, analysis.SplitSlopeChange, opts.Strategy)
	assert.Equal(t, analysis.DefaultWindowSize, opts.WindowSize)

	cfg.Analysis.WindowSize = 500
	opts = cfg.AnalysisOptions()
	assert.Equal(t, analysis.MaxWindowSize, opts.WindowSize)
}

// TestConfigPathMethods tests path resolution helpers
func TestConfigPathMethods(t *testing.T) {
	cfg := &Config{
		Paths: PathsConfig{
			ExecutableDir: "/srv/pulse",
			DataDir:       "data",
			LogsDir:       "/var/log/pulse",
		},
	}

	assert.Equal(t, filepath.Join("/srv/pulse", "data"), cfg.GetDataDir())
	assert.Equal(t, "/var/log/pulse", cfg.GetLogsDir())
}

// TestDefault tests the Default function
func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Security.EnableCORS)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, string(analysis.SplitSlopeChange), cfg.Analysis.SplitStrategy)
	assert.Equal(t, analysis.DefaultWindowSize, cfg.Analysis.WindowSize)
	assert.NoError(t, cfg.validate())
}
