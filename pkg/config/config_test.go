package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/modverify/pkg/analyzer"
	"github.com/platinummonkey/modverify/pkg/report"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "MODVERIFY_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "MODVERIFY_TEST_VAR_NOT_SET",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"false", true, false},
		{"yes", true, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("MODVERIFY_TEST_BOOL", tt.envValue)

			got := getEnvBool("MODVERIFY_TEST_BOOL", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvInt tests the getEnvInt helper function
func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"valid", "42", 42},
		{"negative", "-1", -1},
		{"invalid falls back", "many", 7},
		{"unset falls back", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MODVERIFY_TEST_INT", tt.envValue)

			got := getEnvInt("MODVERIFY_TEST_INT", 7)
			if got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("MODVERIFY_TEST_LIST", " a/** , ,b/** ")
	assert.Equal(t, []string{"a/**", "b/**"}, getEnvList("MODVERIFY_TEST_LIST", nil))

	t.Setenv("MODVERIFY_TEST_LIST", "")
	assert.Equal(t, []string{"x"}, getEnvList("MODVERIFY_TEST_LIST", []string{"x"}))
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "modverify.yaml", `
project:
  source_root: src
  artifact_root: /abs/artifacts
  groups:
    - name: Controls
      path: controls
      depends: [Types]
    - name: Types
    - name: Env
      external: true
analysis:
  concurrency: 4
  third_party_patterns: ["vendor/**"]
  legacy_aliases:
    Old: New/path
report:
  format: github
  fail_on: warning
observability:
  log_level: debug
  log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), cfg.Project.SourceRoot)
	assert.Equal(t, "/abs/artifacts", cfg.Project.ArtifactRoot)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, analyzer.DefaultMaxSuggestDistance, cfg.Analysis.MaxSuggestDistance)
	assert.Equal(t, []string{"vendor/**"}, cfg.Analysis.ThirdPartyPatterns)
	assert.Equal(t, "github", cfg.Report.Format)
	assert.Equal(t, "warning", cfg.Report.FailOn)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, "modverify", cfg.Observability.OTelServiceName)

	assert.Equal(t, []analyzer.Group{
		{Name: "Controls", Path: "controls", Depends: []string{"Types"}},
		{Name: "Types"},
		{Name: "Env", External: true},
	}, cfg.Groups())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeConfig(t, dir, "bad.yaml", "project: [")
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := writeConfig(t, dir, "invalid.yaml", "report:\n  format: xml\n")
	_, err = Load(invalid)
	assert.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestLoadFromDir(t *testing.T) {
	t.Run("falls back to defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.Project.SourceRoot)
		assert.Equal(t, filepath.Join(dir, "build/artifacts"), cfg.Project.ArtifactRoot)
		assert.Empty(t, cfg.Project.Groups)
	})

	t.Run("prefers the first file name", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".modverify.yml", "project:\n  artifact_root: hidden\n")
		writeConfig(t, dir, "modverify.yml", "project:\n  artifact_root: visible\n")

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "visible"), cfg.Project.ArtifactRoot)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "modverify.yaml", "project:\n  artifact_root: out\nreport:\n  format: json\n")

	t.Setenv("MODVERIFY_ARTIFACT_ROOT", "/env/out")
	t.Setenv("MODVERIFY_REPORT_FORMAT", "text")
	t.Setenv("MODVERIFY_CONCURRENCY", "2")
	t.Setenv("MODVERIFY_THIRD_PARTY_PATTERNS", "a/**,b/**")
	t.Setenv("MODVERIFY_OTEL_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/out", cfg.Project.ArtifactRoot)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, []string{"a/**", "b/**"}, cfg.Analysis.ThirdPartyPatterns)
	assert.True(t, cfg.OTel("v1").Enabled)
	assert.Equal(t, "v1", cfg.OTel("v1").ServiceVersion)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"no artifact root", func(c *Config) { c.Project.ArtifactRoot = "" }, "artifact root"},
		{"no source root", func(c *Config) { c.Project.SourceRoot = "" }, "source root"},
		{"unnamed group", func(c *Config) { c.Project.Groups = []GroupConfig{{}} }, "no name"},
		{"slash in group", func(c *Config) { c.Project.Groups = []GroupConfig{{Name: "a/b"}} }, "must not contain"},
		{"duplicate group", func(c *Config) {
			c.Project.Groups = []GroupConfig{{Name: "A"}, {Name: "A"}}
		}, "declared twice"},
		{"negative concurrency", func(c *Config) { c.Analysis.Concurrency = -1 }, "concurrency"},
		{"negative distance", func(c *Config) { c.Analysis.MaxSuggestDistance = -1 }, "suggest distance"},
		{"negative cache", func(c *Config) { c.Analysis.ProbeCacheSize = -1 }, "cache size"},
		{"bad threshold", func(c *Config) { c.Report.FailOn = "sometimes" }, "fail-on"},
		{"prefix without bucket", func(c *Config) { c.Report.S3Prefix = "p" }, "s3 bucket"},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "trace" }, "log level"},
		{"bad log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "log format"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = ""
		}, "endpoint"},
		{"otel without service", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = ""
		}, "service name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.LegacyAliases = map[string]string{"Old": "New/path"}
	cfg.Analysis.ProbeCacheSize = 16

	opts := cfg.AnalyzerOptions()
	assert.Equal(t, 16, opts.ProbeCacheSize)
	assert.Equal(t, analyzer.DefaultThirdPartyPatterns, opts.ThirdPartyPatterns)
	assert.Equal(t, "New/path/x", opts.Aliases.ResolveLegacyAlias("Old/x"))
	assert.Equal(t, "WS.Core/core/x", opts.Aliases.ResolveLegacyAlias("Core/x"))
	assert.Nil(t, opts.Logger)
}

func TestS3(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report.S3Bucket = "b"
	cfg.Report.S3Region = "eu-west-1"
	cfg.Report.S3Prefix = "p"
	assert.Equal(t, report.S3Config{Bucket: "b", Region: "eu-west-1", Prefix: "p"}, cfg.S3())
}
