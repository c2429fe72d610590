package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/modverify/pkg/analyzer"
)

// project is a temporary directory holding a config file, artifacts and
// sources.
type project struct {
	t   *testing.T
	dir string
}

func newProject(t *testing.T, configYAML string) *project {
	t.Helper()
	p := &project{t: t, dir: t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(p.dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(p.dir, "artifacts"), 0o755))
	p.write("modverify.yaml", configYAML)
	return p
}

func (p *project) write(rel, content string) string {
	p.t.Helper()
	full := filepath.Join(p.dir, filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(p.t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func (p *project) components(group string, modules map[string][]string) {
	p.t.Helper()
	entries := make(map[string]map[string]interface{}, len(modules))
	for name, deps := range modules {
		entries[name+".ts"] = map[string]interface{}{
			"componentName": name,
			"componentDep":  deps,
		}
	}
	data, err := json.Marshal(entries)
	require.NoError(p.t, err)
	p.write(filepath.Join("artifacts", group, analyzer.ArtifactFile(analyzer.ArtifactComponents)), string(data))
}

const cyclicConfig = `
project:
  source_root: src
  artifact_root: artifacts
  groups:
    - name: A
      depends: [B]
    - name: B
      depends: [A]
observability:
  log_level: error
`

const cleanConfig = `
project:
  source_root: src
  artifact_root: artifacts
  groups:
    - name: A
      depends: [B]
    - name: B
observability:
  log_level: error
`

// cyclicProject has a two group cycle A -> B -> A
func cyclicProject(t *testing.T) *project {
	p := newProject(t, cyclicConfig)
	p.components("A", map[string][]string{"A/a": {"B/b"}})
	p.components("B", map[string][]string{"B/b": {"A/a"}})
	return p
}

// cleanProject has A depending on B and nothing wrong
func cleanProject(t *testing.T) *project {
	p := newProject(t, cleanConfig)
	p.components("A", map[string][]string{"A/a": {"B/b"}})
	p.components("B", map[string][]string{"B/b": nil})
	return p
}
