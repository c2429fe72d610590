package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/modverify/pkg/dependencies"
	"github.com/platinummonkey/modverify/pkg/moduleid"
)

// TestUndeclaredUIDependencies compares each loaded group's actual group
// dependencies with its manifest. Undeclared dependencies are errors;
// declared but unused ones are only logged.
func (a *Analyzer) TestUndeclaredUIDependencies(ctx context.Context) error {
	_, span, log, err := a.startPass(ctx, PassUndeclared)
	if err != nil {
		return err
	}
	defer span.End()
	defer a.metrics.ObservePass(PassUndeclared, time.Now())

	for _, g := range a.groups {
		if g.External {
			continue
		}

		actual := a.dependencyGroups(g.Name)
		declared := make(map[string]bool, len(g.Depends))
		for _, d := range g.Depends {
			declared[d] = true
		}

		glog := log.WithField("group", g.Name)
		for _, dep := range actual {
			if !a.known[dep] || declared[dep] {
				continue
			}
			msg := fmt.Sprintf("group %q depends on %q which is not declared in its manifest", g.Name, dep)
			glog.WithField("module", dep).Error(msg)
			a.emit(PassUndeclared, Diagnostic{Kind: KindError, Message: msg, Group: g.Name})
		}

		used := make(map[string]bool, len(actual))
		for _, dep := range actual {
			used[dep] = true
		}
		for _, d := range g.Depends {
			if !used[d] {
				glog.WithField("module", d).Debugf("declared dependency on %q is unused", d)
			}
		}
	}

	return nil
}

// TestUICycles builds the group graph and reports every group cycle as an
// error.
func (a *Analyzer) TestUICycles(ctx context.Context) error {
	_, span, log, err := a.startPass(ctx, PassUICycles)
	if err != nil {
		return err
	}
	defer span.End()
	defer a.metrics.ObservePass(PassUICycles, time.Now())

	gg, err := a.buildGroupGraph()
	if err != nil {
		return err
	}

	a.uiCycles = a.uiCycles[:0]
	gg.TestCycles(func(path []string) {
		a.uiCycles = append(a.uiCycles, path)

		msg := "cyclic dependency between groups: " + strings.Join(path, " -> ")
		log.WithFields(logrus.Fields{"group": path[0]}).Error(msg)
		a.emit(PassUICycles, Diagnostic{Kind: KindError, Message: msg, Group: path[0]})
	})

	log.WithField("cycles", len(a.uiCycles)).Debug("group cycles checked")
	return nil
}

// GroupGraph returns the group level graph, building it on first use
func (a *Analyzer) GroupGraph() (*dependencies.DirectedGraph, error) {
	if !a.loaded {
		return nil, ErrNotLoaded
	}
	return a.buildGroupGraph()
}

// Impact returns every group that transitively depends on group, sorted.
// Group cycles do not make it fail.
func (a *Analyzer) Impact(group string) ([]string, error) {
	gg, err := a.GroupGraph()
	if err != nil {
		return nil, err
	}
	if !gg.Has(group) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}
	return gg.Reverse().Reachable(group)
}

func (a *Analyzer) buildGroupGraph() (*dependencies.DirectedGraph, error) {
	if a.groupGraph != nil {
		return a.groupGraph, nil
	}

	gg := dependencies.NewDirectedGraph()
	for _, g := range a.groups {
		if g.External {
			continue
		}
		if err := gg.Put(g.Name, a.dependencyGroups(g.Name)); err != nil {
			return nil, err
		}
	}

	for _, lv := range gg.TestLostVertexes() {
		if err := gg.Put(lv.Vertex, nil); err != nil {
			return nil, err
		}
	}

	a.groupGraph = gg
	a.metrics.SetVertices("group", gg.Len())
	return gg, nil
}

// dependencyGroups returns the sorted groups referenced by group's modules,
// excluding group itself.
func (a *Analyzer) dependencyGroups(group string) []string {
	set := make(map[string]struct{})
	for dep := range a.groupDeps[group] {
		name := moduleid.Parse(dep).GroupName()
		if name == "" || name == group {
			continue
		}
		set[name] = struct{}{}
	}
	return sortedKeys(set)
}
