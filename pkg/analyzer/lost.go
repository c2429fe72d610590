package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/fsprobe"
	"github.com/platinummonkey/modverify/pkg/moduleid"
	"github.com/platinummonkey/modverify/pkg/suggest"
)

// TestLostDependencies reports every dependency that no group declared. Each
// lost vertex is registered with no children afterwards so later passes see
// a closed graph.
func (a *Analyzer) TestLostDependencies(ctx context.Context, sourceRoot string) error {
	ctx, span, log, err := a.startPass(ctx, PassLost)
	if err != nil {
		return err
	}
	defer span.End()
	defer a.metrics.ObservePass(PassLost, time.Now())

	probe, err := fsprobe.New(sourceRoot, a.probeCacheSize)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("source root: %w", err)
	}

	lost := a.graph.TestLostVertexes()
	for _, lv := range lost {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.checkLost(log, probe, lv.Vertex, lv.Parents)
	}

	for _, lv := range lost {
		if err := a.graph.Put(lv.Vertex, nil); err != nil {
			return err
		}
	}

	log.WithField("lost", len(lost)).Debug("lost dependencies checked")
	return nil
}

func (a *Analyzer) checkLost(log logrus.FieldLogger, probe *fsprobe.Prober, vertex string, parents []string) {
	id := moduleid.Parse(vertex)
	if a.isThirdPartyPath(id.Base) {
		return
	}

	parent, file, ok := a.referrer(parents)
	if !ok {
		return
	}

	group := id.GroupName()
	parentGroup := moduleid.Parse(parent).GroupName()
	log = log.WithFields(logrus.Fields{
		"module": vertex,
		"group":  parentGroup,
		"file":   file,
	})
	prefix := fmt.Sprintf("%q required by %q (%s)", vertex, parent, file)

	if a.external[group] {
		log.Debug("dependency on external group")
		return
	}

	if !a.known[group] {
		msg := fmt.Sprintf("%s: unknown group %q", prefix, group)
		if s, found := suggest.FindMostSimilar(group, a.knownNames(), a.maxSuggestDistance); found {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		log.Warn(msg)
		a.emit(PassLost, Diagnostic{Kind: KindWarning, Message: msg, Group: parentGroup})
		return
	}

	if exts, trusted := moduleid.ImpliedExtensions(id); trusted {
		if found, ok := probe.FindWithExtension(id.Base, exts); ok {
			log.WithField("path", found).Debug("dependency resolved on disk")
			return
		}
	}

	if found, ok := probe.FindWithExtension(id.Base, moduleid.SourceExtensions); ok {
		msg := fmt.Sprintf("%s: missing compiled output for %s", prefix, found)
		log.Warn(msg)
		a.emit(PassLost, Diagnostic{Kind: KindWarning, Message: msg, Group: parentGroup})
		return
	}

	msg := fmt.Sprintf("%s: file does not exist in group %q", prefix, group)
	log.Warn(msg)
	a.emit(PassLost, Diagnostic{Kind: KindWarning, Message: msg, Group: parentGroup})
}

// referrer returns the first parent with a recorded declaring file
func (a *Analyzer) referrer(parents []string) (string, string, bool) {
	for _, p := range parents {
		if file, ok := a.files[p]; ok {
			return p, file, true
		}
	}
	return "", "", false
}

func (a *Analyzer) isThirdPartyPath(base string) bool {
	for _, g := range a.thirdParty {
		if g.Match(base) || g.Match("/"+base) {
			return true
		}
	}
	return false
}

func (a *Analyzer) knownNames() []string {
	names := make([]string, 0, len(a.groups))
	for _, g := range a.groups {
		names = append(names, g.Name)
	}
	return names
}
