// Package report turns analyzer diagnostics into rendered, publishable run
// reports.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/modverify/pkg/analyzer"
)

// Summary counts diagnostics by kind
type Summary struct {
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Report is the outcome of one verification run
type Report struct {
	RunID       string                `json:"run_id"`
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration_ns"`
	Diagnostics []analyzer.Diagnostic `json:"diagnostics"`
	Summary     Summary               `json:"summary"`
}

// New assembles a report for a run that started at started. An empty runID
// is replaced with a random one.
func New(runID string, started time.Time, diags []analyzer.Diagnostic) *Report {
	if runID == "" {
		runID = uuid.NewString()
	}
	if diags == nil {
		diags = []analyzer.Diagnostic{}
	}

	r := &Report{
		RunID:       runID,
		StartedAt:   started,
		Duration:    time.Since(started),
		Diagnostics: diags,
	}
	for _, d := range diags {
		switch d.Kind {
		case analyzer.KindError:
			r.Summary.Errors++
		case analyzer.KindWarning:
			r.Summary.Warnings++
		}
	}
	return r
}

// Threshold selects which diagnostics make a run fail
type Threshold string

const (
	ThresholdError   Threshold = "error"
	ThresholdWarning Threshold = "warning"
	ThresholdNever   Threshold = "never"
)

// ParseThreshold validates a fail-on value. The empty string means error.
func ParseThreshold(s string) (Threshold, error) {
	switch Threshold(s) {
	case "", ThresholdError:
		return ThresholdError, nil
	case ThresholdWarning, ThresholdNever:
		return Threshold(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownThreshold, s)
	}
}

// FailsOn reports whether the report meets threshold. A warning threshold
// also fails on errors.
func (r *Report) FailsOn(threshold Threshold) bool {
	switch threshold {
	case ThresholdNever:
		return false
	case ThresholdWarning:
		return r.Summary.Errors > 0 || r.Summary.Warnings > 0
	default:
		return r.Summary.Errors > 0
	}
}

// Groups returns the number of distinct groups with findings
func (r *Report) Groups() int {
	seen := make(map[string]struct{})
	for _, d := range r.Diagnostics {
		if d.Group != "" {
			seen[d.Group] = struct{}{}
		}
	}
	return len(seen)
}
