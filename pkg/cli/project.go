package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/analyzer"
	"github.com/platinummonkey/modverify/pkg/config"
	"github.com/platinummonkey/modverify/pkg/observability"
)

// projectFlags locate the configuration shared by every command
type projectFlags struct {
	dir          string
	configFile   string
	artifactRoot string
	sourceRoot   string
	logLevel     string
}

func addProjectFlags(fs *flag.FlagSet) *projectFlags {
	p := &projectFlags{}
	fs.StringVar(&p.dir, "dir", ".", "Project directory searched for modverify.yaml")
	fs.StringVar(&p.configFile, "config", "", "Path to config file (overrides -dir search)")
	fs.StringVar(&p.artifactRoot, "artifacts", "", "Artifact root (overrides config)")
	fs.StringVar(&p.sourceRoot, "src", "", "Source root (overrides config)")
	fs.StringVar(&p.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return p
}

// load reads the configuration, applies flag overrides and validates the
// result.
func (p *projectFlags) load(overrides ...func(*config.Config)) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if p.configFile != "" {
		cfg, err = config.Load(p.configFile)
	} else {
		cfg, err = config.LoadFromDir(p.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if p.artifactRoot != "" {
		cfg.Project.ArtifactRoot = p.artifactRoot
	}
	if p.sourceRoot != "" {
		cfg.Project.SourceRoot = p.sourceRoot
	}
	if p.logLevel != "" {
		cfg.Observability.LogLevel = p.logLevel
	}
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	level, err := observability.ParseLogLevel(cfg.Observability.LogLevel)
	if err != nil {
		return nil, err
	}
	return observability.NewLogger(level, cfg.Observability.LogFormat, w), nil
}

// loadAnalyzer creates an analyzer for cfg and loads the artifacts
func loadAnalyzer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*analyzer.Analyzer, error) {
	opts := cfg.AnalyzerOptions()
	opts.Logger = logger
	opts.Tracer = observability.Tracer()

	a, err := analyzer.New(opts)
	if err != nil {
		return nil, err
	}
	if err := a.Load(ctx, cfg.Groups(), cfg.Project.ArtifactRoot); err != nil {
		return nil, err
	}
	return a, nil
}
