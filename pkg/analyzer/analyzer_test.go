package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/modverify/pkg/moduleid"
	"github.com/platinummonkey/modverify/pkg/observability"
)

func TestLoad_FiltersDependencies(t *testing.T) {
	f := newFixture(t)
	f.components("Controls", map[string][]string{
		"Controls/list": {
			"require",
			"exports",
			"module",
			"UI/base",
			"wml!Controls/list/item",
			"optional!Unknown/x",
			"optional!UI/extra",
			"i18n!Controls",
			"i18n!lang?Controls/list",
			"datasource!Controls/source",
			"css!Controls/list",
			"Types/entity.json",
			"@scope/pkg",
			"lodash",
			"node:fs",
			"cdn!Ext/jquery",
			"/cdn/jquery/3.0/jquery",
			"UI/base",
		},
	})

	a, _ := newTestAnalyzer(t, Options{})
	groups := []Group{{Name: "Controls"}, {Name: "UI"}}
	require.NoError(t, a.Load(context.Background(), groups, f.artifacts))

	children, ok := a.FileGraph().Get("Controls/list")
	require.True(t, ok)
	assert.Equal(t, []string{
		"UI/base",
		"wml!Controls/list/item",
		"UI/extra",
		"css!Controls/list",
		"json!Types/entity",
	}, children)

	file, ok := a.DeclaringFile("Controls/list")
	require.True(t, ok)
	assert.Equal(t, "Controls/list.ts", file)
}

func TestLoad_AllArtifactKinds(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact("Controls", ArtifactComponents, map[string]interface{}{
		"Controls/list/List.ts": map[string]interface{}{
			"componentName": "Controls/list",
			"componentDep":  []string{"wml!Controls/list/item"},
		},
	})
	f.writeArtifact("Controls", ArtifactMarkup, map[string]interface{}{
		"Controls/list/item.wml": map[string]interface{}{
			"nodeName":     "wml!Controls/list/item",
			"dependencies": []string{"Controls/list/helpers"},
		},
	})
	f.writeArtifact("Controls", ArtifactLess, map[string]interface{}{
		"Controls/list/List.less": []string{"Controls/_theme/vars.less"},
	})
	f.writeArtifact("Controls", ArtifactInputs, map[string]interface{}{
		"paths": map[string]interface{}{
			"Controls/list/List.ts": map[string]interface{}{
				"output": []string{"Controls/list.js", "Controls/list.min.js", "Controls/list.js.map"},
			},
			"Controls/list/helpers.ts": map[string]interface{}{
				"output": []string{"Controls/list/helpers.js"},
			},
		},
	})

	a, _ := newTestAnalyzer(t, Options{})
	require.NoError(t, a.Load(context.Background(), []Group{{Name: "Controls"}}, f.artifacts))

	assert.Equal(t, []string{
		"Controls/list",
		"wml!Controls/list/item",
		"css!Controls/list/List",
		"Controls/list/helpers",
	}, a.FileGraph().Vertices())

	less, ok := a.FileGraph().Get("css!Controls/list/List")
	require.True(t, ok)
	assert.Equal(t, []string{"css!Controls/_theme/vars"}, less)

	helpers, ok := a.FileGraph().Get("Controls/list/helpers")
	require.True(t, ok)
	assert.Empty(t, helpers)

	lost := a.FileGraph().TestLostVertexes()
	require.Len(t, lost, 1)
	assert.Equal(t, "css!Controls/_theme/vars", lost[0].Vertex)
}

func TestLoad_GroupPathAndExternal(t *testing.T) {
	f := newFixture(t)
	f.components("ui-build", map[string][]string{
		"UI/base": {"Env/Env"},
	})
	// an external group directory is never read, even if corrupt
	f.writeRaw("Env", ArtifactComponents, "{not json")

	a, _ := newTestAnalyzer(t, Options{})
	groups := []Group{
		{Name: "UI", Path: "ui-build"},
		{Name: "Env", External: true},
	}
	require.NoError(t, a.Load(context.Background(), groups, f.artifacts))
	assert.True(t, a.FileGraph().Has("UI/base"))
}

func TestLoad_MissingAndUnreadableArtifacts(t *testing.T) {
	f := newFixture(t)
	// a directory where a file is expected cannot be read
	require.NoError(t, os.MkdirAll(filepath.Join(f.artifacts, "UI", ArtifactFile(ArtifactMarkup)), 0o755))

	a, hook := newTestAnalyzer(t, Options{})
	require.NoError(t, a.Load(context.Background(), []Group{{Name: "UI"}}, f.artifacts))

	assert.Equal(t, 0, a.FileGraph().Len())
	assert.True(t, hook.has(logrus.DebugLevel, "artifact not present"))

	warnings := hook.at(logrus.WarnLevel)
	require.Len(t, warnings, 1)
	assert.Equal(t, "failed to read artifact", warnings[0].Message)
	assert.Equal(t, "UI", warnings[0].Data["group"])
	assert.Empty(t, a.Diagnostics())
}

func TestLoad_InvalidJSONIsFatal(t *testing.T) {
	f := newFixture(t)
	f.components("UI", map[string][]string{"UI/base": nil})
	f.writeRaw("Controls", ArtifactMarkup, `{"Controls/x.wml": [`)

	a, _ := newTestAnalyzer(t, Options{Concurrency: 2})
	err := a.Load(context.Background(), []Group{{Name: "UI"}, {Name: "Controls"}}, f.artifacts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactParse))

	var artErr *ArtifactError
	require.ErrorAs(t, err, &artErr)
	assert.Equal(t, "Controls", artErr.Group)
	assert.Equal(t, ArtifactMarkup, artErr.Kind)
	assert.Equal(t, "Controls/markup-dependencies.json", artErr.Path)
}

func TestLoad_MissingArtifactRoot(t *testing.T) {
	a, _ := newTestAnalyzer(t, Options{})
	err := a.Load(context.Background(), []Group{{Name: "UI"}}, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_Twice(t *testing.T) {
	f := newFixture(t)
	a, _ := newTestAnalyzer(t, Options{})
	require.NoError(t, a.Load(context.Background(), nil, f.artifacts))
	assert.ErrorIs(t, a.Load(context.Background(), nil, f.artifacts), ErrAlreadyLoaded)
}

func TestLoad_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.components("UI", map[string][]string{"UI/base": nil})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := newTestAnalyzer(t, Options{})
	err := a.Load(ctx, []Group{{Name: "UI"}}, f.artifacts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_ThirdPartyClassification(t *testing.T) {
	f := newFixture(t)
	// Controls is loaded first and must already see moment as third-party
	f.components("Controls", map[string][]string{
		"Controls/date": {"moment/locale", "Types/entity"},
	})
	f.writeArtifact("Types", ArtifactComponents, map[string]interface{}{
		"Types/third-party/moment.js": map[string]interface{}{
			"componentName": "moment/locale",
			"componentDep":  []string{"Controls/date"},
		},
		"Types/entity.ts": map[string]interface{}{
			"componentName": "Types/entity",
		},
	})

	a, _ := newTestAnalyzer(t, Options{})
	groups := []Group{{Name: "Controls"}, {Name: "Types"}}
	require.NoError(t, a.Load(context.Background(), groups, f.artifacts))

	assert.True(t, a.IsThirdParty("moment/locale"))
	assert.False(t, a.IsThirdParty("Types/entity"))

	children, _ := a.FileGraph().Get("Controls/date")
	assert.Equal(t, []string{"Types/entity"}, children)

	// third-party declarations do not contribute group dependencies
	assert.Empty(t, a.dependencyGroups("Types"))
	assert.Equal(t, []string{"Types"}, a.dependencyGroups("Controls"))
}

func TestLoad_MergesRedeclaredModules(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact("Controls", ArtifactComponents, map[string]interface{}{
		"Controls/a.ts": map[string]interface{}{
			"componentName": "Controls/list",
			"componentDep":  []string{"UI/base", "Types/entity"},
		},
		"Controls/b.ts": map[string]interface{}{
			"componentName": "js!Controls/list",
			"componentDep":  []string{"Types/entity", "Env/Env"},
		},
	})

	a, _ := newTestAnalyzer(t, Options{})
	require.NoError(t, a.Load(context.Background(), []Group{{Name: "Controls"}}, f.artifacts))

	children, ok := a.FileGraph().Get("Controls/list")
	require.True(t, ok)
	assert.Equal(t, []string{"UI/base", "Types/entity", "Env/Env"}, children)

	file, _ := a.DeclaringFile("Controls/list")
	assert.Equal(t, "Controls/a.ts", file)
}

func TestLoad_LegacyAliases(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact("WS.Core", ArtifactComponents, map[string]interface{}{
		"WS.Core/core/Abstract.js": map[string]interface{}{
			"componentName": "Core/Abstract",
			"componentDep":  []string{"Lib/Control/Control", "Old/Thing"},
		},
	})

	a, _ := newTestAnalyzer(t, Options{
		Aliases: moduleid.DefaultAliases().Merge(map[string]string{"Old": "WS.Core/old"}),
	})
	require.NoError(t, a.Load(context.Background(), []Group{{Name: "WS.Core"}}, f.artifacts))

	children, ok := a.FileGraph().Get("WS.Core/core/Abstract")
	require.True(t, ok)
	assert.Equal(t, []string{"WS.Core/lib/Control/Control", "WS.Core/old/Thing"}, children)
	assert.False(t, a.IsThirdParty("WS.Core/core/Abstract"))
}

func TestLoad_Metrics(t *testing.T) {
	f := newFixture(t)
	f.components("UI", map[string][]string{"UI/base": {"UI/other"}})

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	a, _ := newTestAnalyzer(t, Options{Metrics: metrics})
	require.NoError(t, a.Load(context.Background(), []Group{{Name: "UI"}}, f.artifacts))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsLoadedTotal.WithLabelValues("components", observability.ArtifactLoaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsLoadedTotal.WithLabelValues("markup", observability.ArtifactMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GraphVertices.WithLabelValues("file")))
}

func TestPasses_RequireLoad(t *testing.T) {
	a, _ := newTestAnalyzer(t, Options{})
	ctx := context.Background()

	assert.ErrorIs(t, a.TestLostDependencies(ctx, t.TempDir()), ErrNotLoaded)
	assert.ErrorIs(t, a.TestCycles(ctx), ErrNotLoaded)
	assert.ErrorIs(t, a.TestUndeclaredUIDependencies(ctx), ErrNotLoaded)
	assert.ErrorIs(t, a.TestUICycles(ctx), ErrNotLoaded)

	_, err := a.Impact("UI")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)

	assert.NotNil(t, a.log)
	assert.Equal(t, DefaultMaxSuggestDistance, a.maxSuggestDistance)
	assert.Len(t, a.thirdParty, len(DefaultThirdPartyPatterns))
	assert.Greater(t, a.concurrency, 0)
}

func TestGroup_Dir(t *testing.T) {
	assert.Equal(t, "UI", Group{Name: "UI"}.Dir())
	assert.Equal(t, "ui-build", Group{Name: "UI", Path: "ui-build"}.Dir())
}

func TestLessIdentifier(t *testing.T) {
	assert.Equal(t, "css!Controls/list/List", lessIdentifier("Controls/list/List.less"))
	assert.Equal(t, "css!Controls/list/List", lessIdentifier("/Controls/list/List.css"))
	assert.Equal(t, "css!Controls/list/List", lessIdentifier("Controls/list/List"))
}
