package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, 256, cfg.Session.MaxSessions)
				assert.Equal(t, 10, cfg.Session.TopN)
				assert.Equal(t, int64(32<<20), cfg.Session.MaxUploadBytes)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"DASH_SERVER_PORT":             "9191",
				"DASH_PATHS_DATA_DIR":          "/srv/data",
				"DASH_SESSION_TOP_N":           "5",
				"DASH_LOGGING_FORMAT":          "text",
				"DASH_SECURITY_RATE_LIMIT_RPS": "5",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, "/srv/data", cfg.Paths.DataDir)
				assert.Equal(t, 5, cfg.Session.TopN)
				assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "json", cfg.Logging.Format, "format is always json")
			},
		},
		{
			name: "yaml file overrides defaults",
			fileContent: `
server:
  port: 7070
paths:
  data_dir: fixtures
session:
  top_n: 3
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "fixtures", cfg.Paths.DataDir)
				assert.Equal(t, 3, cfg.Session.TopN)
			},
		},
		{
			name: "explicit env wins over yaml file",
			env:  map[string]string{"DASH_SERVER_PORT": "6060"},
			fileContent: `
server:
  port: 7070
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"DASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unsupported trace exporter",
			env:     map[string]string{"DASH_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:        "malformed yaml",
			fileContent: "server: [",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DASH_CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.fileContent != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
				t.Setenv("DASH_CONFIG_FILE", path)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	assert.Equal(t, DefaultTopN, cfg.Session.TopN)
	assert.Equal(t, DefaultDataDir, cfg.Paths.DataDir)
	assert.True(t, cfg.Session.RenderCharts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }},
		{"no view cache", func(c *Config) { c.Session.ViewCacheSize = 0 }},
		{"zero top n", func(c *Config) { c.Session.TopN = 0 }},
		{"zero upload limit", func(c *Config) { c.Session.MaxUploadBytes = 0 }},
		{"bad metric exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
