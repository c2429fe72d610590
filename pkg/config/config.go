package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/modverify/pkg/analyzer"
	"github.com/platinummonkey/modverify/pkg/moduleid"
	"github.com/platinummonkey/modverify/pkg/observability"
	"github.com/platinummonkey/modverify/pkg/report"
)

// FileNames are searched in order by LoadFromDir
var FileNames = []string{"modverify.yaml", "modverify.yml", ".modverify.yaml", ".modverify.yml"}

// Config holds all verification settings
type Config struct {
	Project       ProjectConfig       `yaml:"project"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Report        ReportConfig        `yaml:"report"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProjectConfig locates the build output and the group manifests
type ProjectConfig struct {
	SourceRoot   string        `yaml:"source_root"`
	ArtifactRoot string        `yaml:"artifact_root"`
	Groups       []GroupConfig `yaml:"groups"`
}

// GroupConfig is one group manifest
type GroupConfig struct {
	Name     string   `yaml:"name"`
	Path     string   `yaml:"path,omitempty"`
	Depends  []string `yaml:"depends,omitempty"`
	External bool     `yaml:"external,omitempty"`
}

// AnalysisConfig tunes the analyzer
type AnalysisConfig struct {
	Concurrency        int               `yaml:"concurrency"`
	MaxSuggestDistance int               `yaml:"max_suggest_distance"`
	ThirdPartyPatterns []string          `yaml:"third_party_patterns"`
	LegacyAliases      map[string]string `yaml:"legacy_aliases"`
	ProbeCacheSize     int               `yaml:"probe_cache_size"`
}

// ReportConfig controls report rendering and publishing
type ReportConfig struct {
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
	S3Prefix string `yaml:"s3_prefix"`
	FailOn   string `yaml:"fail_on"`
}

// ObservabilityConfig holds logging, metrics and tracing settings
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsFile string `yaml:"metrics_file"`

	OTelEnabled     bool   `yaml:"otel_enabled"`
	OTelEndpoint    string `yaml:"otel_endpoint"`
	OTelServiceName string `yaml:"otel_service_name"`
	OTelInsecure    bool   `yaml:"otel_insecure"`
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			SourceRoot:   ".",
			ArtifactRoot: "build/artifacts",
		},
		Analysis: AnalysisConfig{
			MaxSuggestDistance: analyzer.DefaultMaxSuggestDistance,
			ThirdPartyPatterns: append([]string(nil), analyzer.DefaultThirdPartyPatterns...),
			LegacyAliases:      make(map[string]string),
		},
		Report: ReportConfig{
			Format: string(report.FormatText),
			FailOn: string(report.ThresholdError),
		},
		Observability: ObservabilityConfig{
			LogLevel:        "info",
			LogFormat:       observability.FormatText,
			OTelEndpoint:    "localhost:4317",
			OTelServiceName: "modverify",
			OTelInsecure:    true,
		},
	}
}

// Load reads a YAML file over the defaults, resolves relative roots against
// the file's directory, applies MODVERIFY_* overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return finish(cfg, filepath.Dir(path))
}

// LoadFromDir searches dir for a config file, falling back to defaults
// rooted at dir.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return finish(DefaultConfig(), dir)
}

func finish(cfg *Config, base string) (*Config, error) {
	cfg.Project.SourceRoot = resolve(base, cfg.Project.SourceRoot)
	cfg.Project.ArtifactRoot = resolve(base, cfg.Project.ArtifactRoot)
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// applyEnv overrides file values from the environment
func (c *Config) applyEnv() {
	c.Project.SourceRoot = getEnv("MODVERIFY_SOURCE_ROOT", c.Project.SourceRoot)
	c.Project.ArtifactRoot = getEnv("MODVERIFY_ARTIFACT_ROOT", c.Project.ArtifactRoot)

	c.Analysis.Concurrency = getEnvInt("MODVERIFY_CONCURRENCY", c.Analysis.Concurrency)
	c.Analysis.MaxSuggestDistance = getEnvInt("MODVERIFY_MAX_SUGGEST_DISTANCE", c.Analysis.MaxSuggestDistance)
	c.Analysis.ProbeCacheSize = getEnvInt("MODVERIFY_PROBE_CACHE_SIZE", c.Analysis.ProbeCacheSize)
	c.Analysis.ThirdPartyPatterns = getEnvList("MODVERIFY_THIRD_PARTY_PATTERNS", c.Analysis.ThirdPartyPatterns)

	c.Report.Format = getEnv("MODVERIFY_REPORT_FORMAT", c.Report.Format)
	c.Report.Output = getEnv("MODVERIFY_REPORT_OUTPUT", c.Report.Output)
	c.Report.S3Bucket = getEnv("MODVERIFY_S3_BUCKET", c.Report.S3Bucket)
	c.Report.S3Region = getEnv("MODVERIFY_S3_REGION", c.Report.S3Region)
	c.Report.S3Prefix = getEnv("MODVERIFY_S3_PREFIX", c.Report.S3Prefix)
	c.Report.FailOn = getEnv("MODVERIFY_FAIL_ON", c.Report.FailOn)

	c.Observability.LogLevel = getEnv("MODVERIFY_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("MODVERIFY_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.MetricsFile = getEnv("MODVERIFY_METRICS_FILE", c.Observability.MetricsFile)
	c.Observability.OTelEnabled = getEnvBool("MODVERIFY_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("MODVERIFY_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("MODVERIFY_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelInsecure = getEnvBool("MODVERIFY_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Project.ArtifactRoot == "" {
		return fmt.Errorf("artifact root is required")
	}
	if c.Project.SourceRoot == "" {
		return fmt.Errorf("source root is required")
	}

	seen := make(map[string]bool, len(c.Project.Groups))
	for i, g := range c.Project.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d has no name", i)
		}
		if strings.Contains(g.Name, "/") {
			return fmt.Errorf("group name %q must not contain '/'", g.Name)
		}
		if seen[g.Name] {
			return fmt.Errorf("group %q is declared twice", g.Name)
		}
		seen[g.Name] = true
	}

	if c.Analysis.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.Analysis.MaxSuggestDistance < 0 {
		return fmt.Errorf("max suggest distance must not be negative")
	}
	if c.Analysis.ProbeCacheSize < 0 {
		return fmt.Errorf("probe cache size must not be negative")
	}

	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		return err
	}
	if _, err := report.ParseThreshold(c.Report.FailOn); err != nil {
		return err
	}
	if c.Report.S3Prefix != "" && c.Report.S3Bucket == "" {
		return fmt.Errorf("s3 prefix is set but no s3 bucket is configured")
	}

	if _, err := observability.ParseLogLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	switch c.Observability.LogFormat {
	case "", observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// Groups converts the manifests for the analyzer
func (c *Config) Groups() []analyzer.Group {
	groups := make([]analyzer.Group, 0, len(c.Project.Groups))
	for _, g := range c.Project.Groups {
		groups = append(groups, analyzer.Group{
			Name:     g.Name,
			Path:     g.Path,
			Depends:  append([]string(nil), g.Depends...),
			External: g.External,
		})
	}
	return groups
}

// Aliases returns the default legacy aliases extended by the configured ones
func (c *Config) Aliases() moduleid.Aliases {
	return moduleid.DefaultAliases().Merge(c.Analysis.LegacyAliases)
}

// AnalyzerOptions returns analyzer options without logger, metrics or tracer
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Concurrency:        c.Analysis.Concurrency,
		MaxSuggestDistance: c.Analysis.MaxSuggestDistance,
		ThirdPartyPatterns: c.Analysis.ThirdPartyPatterns,
		Aliases:            c.Aliases(),
		ProbeCacheSize:     c.Analysis.ProbeCacheSize,
	}
}

// OTel returns the tracing settings
func (c *Config) OTel(version string) observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: version,
		Insecure:       c.Observability.OTelInsecure,
	}
}

// S3 returns the report bucket settings
func (c *Config) S3() report.S3Config {
	return report.S3Config{
		Bucket: c.Report.S3Bucket,
		Region: c.Report.S3Region,
		Prefix: c.Report.S3Prefix,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
