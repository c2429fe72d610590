package analyzer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t         *testing.T
	artifacts string
	sources   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		t:         t,
		artifacts: filepath.Join(root, "artifacts"),
		sources:   filepath.Join(root, "src"),
	}
	require.NoError(t, os.MkdirAll(f.artifacts, 0o755))
	require.NoError(t, os.MkdirAll(f.sources, 0o755))
	return f
}

func (f *fixture) writeArtifact(groupDir string, kind ArtifactKind, v interface{}) {
	f.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	f.writeRaw(groupDir, kind, string(data))
}

func (f *fixture) writeRaw(groupDir string, kind ArtifactKind, content string) {
	f.t.Helper()
	dir := filepath.Join(f.artifacts, groupDir)
	require.NoError(f.t, os.MkdirAll(dir, 0o755))
	require.NoError(f.t, os.WriteFile(filepath.Join(dir, ArtifactFile(kind)), []byte(content), 0o644))
}

func (f *fixture) writeSource(rel string) {
	f.t.Helper()
	full := filepath.Join(f.sources, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(f.t, os.WriteFile(full, []byte("//"), 0o644))
}

// components writes a components artifact from module -> deps pairs. The
// declaring file is derived from the module name.
func (f *fixture) components(group string, modules map[string][]string) {
	f.t.Helper()
	entries := make(map[string]componentEntry, len(modules))
	for name, deps := range modules {
		entries[name+".ts"] = componentEntry{ComponentName: name, ComponentDep: deps}
	}
	f.writeArtifact(group, ArtifactComponents, entries)
}

type testHook struct {
	*test.Hook
}

func newTestAnalyzer(t *testing.T, opts Options) (*Analyzer, *testHook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts.Logger = logger

	a, err := New(opts)
	require.NoError(t, err)
	return a, &testHook{hook}
}

// at returns the entries logged at level, in order
func (h *testHook) at(level logrus.Level) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range h.AllEntries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (h *testHook) first(level logrus.Level) *logrus.Entry {
	if entries := h.at(level); len(entries) > 0 {
		return entries[0]
	}
	return nil
}

func (h *testHook) has(level logrus.Level, substr string) bool {
	for _, e := range h.at(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
