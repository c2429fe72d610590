package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/moduleid"
)

// TestCycles reports every module level cycle once as a warning
func (a *Analyzer) TestCycles(ctx context.Context) error {
	_, span, log, err := a.startPass(ctx, PassCycles)
	if err != nil {
		return err
	}
	defer span.End()
	defer a.metrics.ObservePass(PassCycles, time.Now())

	seen := make(map[string]struct{})
	a.cycles = a.cycles[:0]

	a.graph.TestCycles(func(path []string) {
		cycle := a.rotateToLibrary(path)
		key := strings.Join(cycle, " -> ")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		a.cycles = append(a.cycles, cycle)

		group := moduleid.Parse(cycle[0]).GroupName()
		msg := "cyclic dependency: " + key
		log.WithFields(logrus.Fields{
			"module": cycle[0],
			"group":  group,
			"file":   a.files[cycle[0]],
		}).Warn(msg)
		a.emit(PassCycles, Diagnostic{Kind: KindWarning, Message: msg, Group: group})
	})

	log.WithField("cycles", len(a.cycles)).Debug("module cycles checked")
	return nil
}

// rotateToLibrary rotates a closed path so it starts at the first library
// vertex on it. Paths without a library vertex are returned unchanged.
func (a *Analyzer) rotateToLibrary(path []string) []string {
	if len(path) < 2 {
		return path
	}
	open := path[:len(path)-1]

	start := -1
	for i, v := range open {
		if _, ok := a.libraries[v]; ok {
			start = i
			break
		}
	}
	if start <= 0 {
		return path
	}

	rotated := make([]string, 0, len(path))
	rotated = append(rotated, open[start:]...)
	rotated = append(rotated, open[:start]...)
	rotated = append(rotated, open[start])
	return rotated
}
