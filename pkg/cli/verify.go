package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/analyzer"
	"github.com/platinummonkey/modverify/pkg/config"
	"github.com/platinummonkey/modverify/pkg/observability"
	"github.com/platinummonkey/modverify/pkg/report"
)

// newVerifyCommand creates a new verify command
func newVerifyCommand(out, errOut io.Writer) *Command {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	project := addProjectFlags(fs)

	var (
		format      = fs.String("format", "", "Report format: text, json, github (overrides config)")
		output      = fs.String("output", "", "Also write the report to this file")
		failOn      = fs.String("fail-on", "", "Exit with code 2 on: error, warning, never")
		metricsFile = fs.String("metrics-file", "", "Write Prometheus metrics to this textfile")
		timeout     = fs.Duration("timeout", 0, "Abort a verification run after this long (0 disables)")
		watch       = fs.Bool("watch", false, "Re-run verification whenever artifacts change")
		debounce    = fs.Duration("debounce", 2*time.Second, "Quiet period before a watch re-run")
	)

	return &Command{
		Name:        "verify",
		Description: "Verify the module dependency graph of the build",
		Flags:       fs,
		Run: func(ctx context.Context, args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			cfg, err := project.load(func(c *config.Config) {
				if *format != "" {
					c.Report.Format = *format
				}
				if *output != "" {
					c.Report.Output = *output
				}
				if *failOn != "" {
					c.Report.FailOn = *failOn
				}
				if *metricsFile != "" {
					c.Observability.MetricsFile = *metricsFile
				}
			})
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg, errOut)
			if err != nil {
				return err
			}

			tp, err := observability.InitTracing(ctx, cfg.OTel(Version), logger)
			if err != nil {
				return err
			}
			defer observability.ShutdownTracing(context.Background(), tp, logger)

			v, err := newVerifier(ctx, cfg, logger, out, *timeout)
			if err != nil {
				return err
			}

			if *watch {
				return v.watch(ctx, *debounce)
			}

			rep, err := v.run(ctx)
			if err != nil {
				return err
			}
			if rep.FailsOn(v.threshold) {
				return &ExitError{
					Code: 2,
					Err:  fmt.Errorf("verification failed with %d errors and %d warnings", rep.Summary.Errors, rep.Summary.Warnings),
				}
			}
			return nil
		},
	}
}

// verifier runs verification passes with a fresh analyzer each time
type verifier struct {
	cfg        *config.Config
	logger     logrus.FieldLogger
	out        io.Writer
	timeout    time.Duration
	format     report.Format
	threshold  report.Threshold
	publishers []report.Publisher
}

func newVerifier(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, out io.Writer, timeout time.Duration) (*verifier, error) {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, err
	}
	threshold, err := report.ParseThreshold(cfg.Report.FailOn)
	if err != nil {
		return nil, err
	}

	v := &verifier{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		timeout:   timeout,
		format:    format,
		threshold: threshold,
	}

	if cfg.Report.Output != "" {
		v.publishers = append(v.publishers, &report.FilePublisher{Path: cfg.Report.Output})
	}
	if cfg.Report.S3Bucket != "" {
		p, err := report.NewS3Publisher(ctx, cfg.S3())
		if err != nil {
			return nil, err
		}
		v.publishers = append(v.publishers, p)
	}

	return v, nil
}

// run performs one verification, renders the report and publishes it. An
// error means the run was aborted; diagnostics are never errors.
func (v *verifier) run(ctx context.Context) (*report.Report, error) {
	started := time.Now()
	runID := uuid.NewString()

	ctx = observability.WithLogger(observability.WithRunID(ctx, runID), v.logger)
	log := observability.FromContext(ctx)

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	registry := prometheus.NewRegistry()
	opts := v.cfg.AnalyzerOptions()
	opts.Logger = log
	opts.Metrics = observability.NewMetrics(registry)
	opts.Tracer = observability.Tracer()

	a, err := analyzer.New(opts)
	if err != nil {
		return nil, err
	}

	diags, err := a.Verify(ctx, v.cfg.Groups(), v.cfg.Project.ArtifactRoot, v.cfg.Project.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("verification aborted: %w", err)
	}

	rep := report.New(runID, started, diags)
	if err := rep.Render(v.out, v.format); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	for _, p := range v.publishers {
		location, err := p.Publish(ctx, rep, v.format)
		if err != nil {
			return nil, err
		}
		log.WithField("location", location).Info("report published")
	}

	if path := v.cfg.Observability.MetricsFile; path != "" {
		if err := observability.WriteTextfile(path, registry); err != nil {
			return nil, err
		}
		log.WithField("path", path).Debug("metrics written")
	}

	log.WithFields(logrus.Fields{
		"errors":   rep.Summary.Errors,
		"warnings": rep.Summary.Warnings,
		"duration": rep.Duration.String(),
	}).Info("verification complete")

	return rep, nil
}
