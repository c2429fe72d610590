package analyzer

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/modverify/pkg/dependencies"
	"github.com/platinummonkey/modverify/pkg/fsprobe"
	"github.com/platinummonkey/modverify/pkg/moduleid"
	"github.com/platinummonkey/modverify/pkg/observability"
)

// DefaultMaxSuggestDistance bounds "did you mean" suggestions
const DefaultMaxSuggestDistance = 3

// DefaultThirdPartyPatterns match vendored code that is never verified
var DefaultThirdPartyPatterns = []string{"**/third-party/**", "**/node_modules/**"}

// Group is one independently versioned unit of source files
type Group struct {
	Name string
	// Path is the artifact subdirectory; Name is used when empty
	Path string
	// Depends is the manifest: groups this group declares it uses
	Depends []string
	// External groups are known to exist but are not loaded
	External bool
}

// Dir returns the artifact subdirectory of the group
func (g Group) Dir() string {
	if g.Path != "" {
		return g.Path
	}
	return g.Name
}

// Options configures an Analyzer
type Options struct {
	// Logger receives the troubleshooting log; nil logs to stderr at info
	Logger  logrus.FieldLogger
	Metrics *observability.Metrics
	Tracer  trace.Tracer

	// Concurrency bounds parallel artifact reads; zero uses the CPU count
	Concurrency        int
	MaxSuggestDistance int
	ThirdPartyPatterns []string
	// Aliases rewrites legacy path prefixes; nil uses moduleid.DefaultAliases
	Aliases        moduleid.Aliases
	ProbeCacheSize int
}

// Analyzer verifies the module graph of one build run. It is single use:
// Load once, run the passes, discard.
type Analyzer struct {
	log        logrus.FieldLogger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	aliases    moduleid.Aliases
	thirdParty []glob.Glob

	concurrency        int
	maxSuggestDistance int
	probeCacheSize     int

	loaded bool
	graph  *dependencies.DirectedGraph
	// declaring file by identifier
	files map[string]string

	groups      []Group
	known       map[string]bool
	external    map[string]bool
	groupDeps   map[string]map[string]struct{}
	vendored    map[string]struct{}
	libraries   map[string]struct{}
	groupGraph  *dependencies.DirectedGraph
	cycles      [][]string
	uiCycles    [][]string
	diagnostics []Diagnostic
}

// New creates an analyzer. It fails when a third-party pattern does not
// compile.
func New(opts Options) (*Analyzer, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.Tracer()
	}

	aliases := opts.Aliases
	if aliases == nil {
		aliases = moduleid.DefaultAliases()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	maxSuggest := opts.MaxSuggestDistance
	if maxSuggest <= 0 {
		maxSuggest = DefaultMaxSuggestDistance
	}

	patterns := opts.ThirdPartyPatterns
	if patterns == nil {
		patterns = DefaultThirdPartyPatterns
	}
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid third-party pattern %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}

	return &Analyzer{
		log:                log,
		metrics:            opts.Metrics,
		tracer:             tracer,
		aliases:            aliases,
		thirdParty:         compiled,
		concurrency:        concurrency,
		maxSuggestDistance: maxSuggest,
		probeCacheSize:     opts.ProbeCacheSize,
		graph:              dependencies.NewDirectedGraph(),
		files:              make(map[string]string),
		known:              make(map[string]bool),
		external:           make(map[string]bool),
		groupDeps:          make(map[string]map[string]struct{}),
		vendored:           make(map[string]struct{}),
		libraries:          make(map[string]struct{}),
	}, nil
}

// Load reads the artifacts of every non-external group under artifactRoot and
// builds the file graph. A corrupt artifact aborts the load with an
// *ArtifactError.
func (a *Analyzer) Load(ctx context.Context, groups []Group, artifactRoot string) (err error) {
	if a.loaded {
		return ErrAlreadyLoaded
	}

	ctx, span := a.tracer.Start(ctx, "analyzer.Load",
		trace.WithAttributes(attribute.Int("groups", len(groups))))
	defer span.End()
	defer a.metrics.ObservePass(PassLoad, time.Now())
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
	}()

	log := a.log.WithField("pass", PassLoad)

	root, err := fsprobe.New(artifactRoot, a.probeCacheSize)
	if err != nil {
		return fmt.Errorf("artifact root: %w", err)
	}

	a.groups = append([]Group(nil), groups...)
	for _, g := range groups {
		a.known[g.Name] = true
		if g.External {
			a.external[g.Name] = true
		}
	}

	artifacts, err := a.readArtifacts(ctx, groups, root)
	if err != nil {
		return err
	}

	// every group must be classified before any edge is filtered
	for i, g := range groups {
		if !g.External {
			a.classify(artifacts[i])
		}
	}

	for i, g := range groups {
		if g.External {
			continue
		}
		if err := a.register(g, artifacts[i]); err != nil {
			return err
		}
	}

	a.loaded = true
	a.metrics.SetVertices("file", a.graph.Len())
	span.SetAttributes(attribute.Int("vertices", a.graph.Len()))
	log.WithFields(logrus.Fields{
		"groups":   len(groups),
		"vertices": a.graph.Len(),
	}).Info("artifacts loaded")
	return nil
}

// classify records third-party and library identifiers declared by one group
func (a *Analyzer) classify(art groupArtifacts) {
	mark := func(file, raw string) {
		id := a.canonical(raw)
		if id.GroupName() != leadingSegment(file) {
			a.vendored[id.String()] = struct{}{}
		}
	}

	for file, c := range art.components {
		if c.ComponentName == "" {
			continue
		}
		mark(file, c.ComponentName)
		if c.LibraryName != "" {
			a.libraries[a.canonical(c.ComponentName).String()] = struct{}{}
		}
	}
	for file, m := range art.markup {
		if m.NodeName != "" {
			mark(file, m.NodeName)
		}
	}
	for file := range art.less {
		mark(file, lessIdentifier(file))
	}
	if art.inputs != nil {
		for file, in := range art.inputs.Paths {
			for _, out := range in.Output {
				if id, ok := moduleid.FromOutputPath(out); ok {
					mark(file, id.String())
				}
			}
		}
	}
}

// register inserts one group's declarations into the file graph in
// deterministic order: components, markup, less, then input outputs.
func (a *Analyzer) register(g Group, art groupArtifacts) error {
	for _, file := range sortedKeys(art.components) {
		c := art.components[file]
		if c.ComponentName == "" {
			continue
		}
		if err := a.putModule(g.Name, file, c.ComponentName, c.ComponentDep); err != nil {
			return err
		}
	}

	for _, file := range sortedKeys(art.markup) {
		m := art.markup[file]
		if m.NodeName == "" {
			continue
		}
		if err := a.putModule(g.Name, file, m.NodeName, m.Dependencies); err != nil {
			return err
		}
	}

	for _, file := range sortedKeys(art.less) {
		deps := make([]string, 0, len(art.less[file]))
		for _, dep := range art.less[file] {
			deps = append(deps, lessIdentifier(dep))
		}
		if err := a.putModule(g.Name, file, lessIdentifier(file), deps); err != nil {
			return err
		}
	}

	if art.inputs != nil {
		for _, file := range sortedKeys(art.inputs.Paths) {
			for _, out := range art.inputs.Paths[file].Output {
				id, ok := moduleid.FromOutputPath(out)
				if !ok || a.graph.Has(a.canonical(id.String()).String()) {
					continue
				}
				if err := a.putModule(g.Name, file, id.String(), nil); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// putModule registers identifier declared in file with its surviving
// dependencies. Re-declaring an identifier merges the dependency lists.
func (a *Analyzer) putModule(group, file, identifier string, deps []string) error {
	id := a.canonical(identifier).String()
	if _, ok := a.files[id]; !ok {
		a.files[id] = file
	}

	children := make([]string, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, raw := range deps {
		dep := a.aliases.Resolve(moduleid.Parse(raw))
		if !a.accept(raw, dep) {
			continue
		}
		name := moduleid.Normalize(dep).String()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		children = append(children, name)
	}

	if existing, ok := a.graph.Get(id); ok {
		merged := append([]string(nil), existing...)
		for _, c := range children {
			if !containsString(existing, c) {
				merged = append(merged, c)
			}
		}
		if err := a.graph.Modify(id, merged); err != nil {
			return err
		}
	} else if err := a.graph.Put(id, children); err != nil {
		return err
	}

	if _, vendored := a.vendored[id]; vendored {
		return nil
	}

	set, ok := a.groupDeps[group]
	if !ok {
		set = make(map[string]struct{})
		a.groupDeps[group] = set
	}
	for _, c := range children {
		set[c] = struct{}{}
	}
	return nil
}

// canonical parses, aliases and normalizes a raw identifier
func (a *Analyzer) canonical(raw string) moduleid.Identifier {
	return moduleid.Normalize(a.aliases.Resolve(moduleid.Parse(raw)))
}

// Verify loads the artifacts and runs every diagnostic pass in order
func (a *Analyzer) Verify(ctx context.Context, groups []Group, artifactRoot, sourceRoot string) ([]Diagnostic, error) {
	if err := a.Load(ctx, groups, artifactRoot); err != nil {
		return nil, err
	}
	if err := a.TestLostDependencies(ctx, sourceRoot); err != nil {
		return nil, err
	}
	if err := a.TestCycles(ctx); err != nil {
		return nil, err
	}
	if err := a.TestUndeclaredUIDependencies(ctx); err != nil {
		return nil, err
	}
	if err := a.TestUICycles(ctx); err != nil {
		return nil, err
	}
	return a.Diagnostics(), nil
}

// FileGraph returns the module level graph
func (a *Analyzer) FileGraph() *dependencies.DirectedGraph {
	return a.graph
}

// DeclaringFile returns the file that declared identifier
func (a *Analyzer) DeclaringFile(identifier string) (string, bool) {
	file, ok := a.files[identifier]
	return file, ok
}

// IsThirdParty reports whether identifier was classified as third-party
func (a *Analyzer) IsThirdParty(identifier string) bool {
	_, ok := a.vendored[identifier]
	return ok
}

// Cycles returns the module level cycles found by TestCycles
func (a *Analyzer) Cycles() [][]string {
	return a.cycles
}

// UICycles returns the group level cycles found by TestUICycles
func (a *Analyzer) UICycles() [][]string {
	return a.uiCycles
}

func (a *Analyzer) startPass(ctx context.Context, pass string) (context.Context, trace.Span, logrus.FieldLogger, error) {
	if !a.loaded {
		return ctx, nil, nil, ErrNotLoaded
	}
	ctx, span := a.tracer.Start(ctx, "analyzer."+pass)
	log := observability.LoggerWithTraceContext(ctx, a.log.WithField("pass", pass))
	return ctx, span, log, nil
}

// lessIdentifier turns a LESS file path into its css! identifier
func lessIdentifier(file string) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(file, "\\", "/")), "/")
	if ext := path.Ext(p); ext == ".less" || ext == ".css" {
		p = strings.TrimSuffix(p, ext)
	}
	return "css!" + p
}

// leadingSegment returns the first path segment of a declaring file
func leadingSegment(file string) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(file, "\\", "/")), "/")
	seg, _, _ := strings.Cut(p, "/")
	return seg
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
