package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/modverify/pkg/fsprobe"
	"github.com/platinummonkey/modverify/pkg/observability"
)

// ArtifactKind names one of the per-group build artifacts
type ArtifactKind string

const (
	ArtifactComponents ArtifactKind = "components"
	ArtifactMarkup     ArtifactKind = "markup"
	ArtifactInputs     ArtifactKind = "inputs"
	ArtifactLess       ArtifactKind = "less"
)

// artifactFiles maps each kind to its file name inside a group directory
var artifactFiles = map[ArtifactKind]string{
	ArtifactComponents: "components-dependencies.json",
	ArtifactMarkup:     "markup-dependencies.json",
	ArtifactInputs:     "input-paths.json",
	ArtifactLess:       "less-dependencies.json",
}

// artifactOrder is the registration order of artifact kinds within a group
var artifactOrder = []ArtifactKind{ArtifactComponents, ArtifactMarkup, ArtifactLess, ArtifactInputs}

// ArtifactFile returns the file name used for kind
func ArtifactFile(kind ArtifactKind) string {
	return artifactFiles[kind]
}

type componentEntry struct {
	ComponentName string   `json:"componentName"`
	ComponentDep  []string `json:"componentDep"`
	LibraryName   string   `json:"libraryName,omitempty"`
}

type markupEntry struct {
	NodeName     string   `json:"nodeName"`
	Dependencies []string `json:"dependencies"`
}

type inputEntry struct {
	Output []string `json:"output"`
}

type inputPaths struct {
	Paths map[string]inputEntry `json:"paths"`
}

// groupArtifacts holds the decoded artifacts of one group; a nil field means
// the artifact was absent or unreadable.
type groupArtifacts struct {
	components map[string]componentEntry
	markup     map[string]markupEntry
	inputs     *inputPaths
	less       map[string][]string
}

// readArtifacts reads every artifact of the given groups concurrently. It
// returns one entry per group in input order.
func (a *Analyzer) readArtifacts(ctx context.Context, groups []Group, root *fsprobe.Prober) ([]groupArtifacts, error) {
	results := make([]groupArtifacts, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range groups {
		group := groups[i]
		if group.External {
			continue
		}
		out := &results[i]

		for _, kind := range artifactOrder {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return a.readArtifact(group, kind, root, out)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyzer) readArtifact(group Group, kind ArtifactKind, root *fsprobe.Prober, out *groupArtifacts) error {
	rel := path.Join(group.Dir(), artifactFiles[kind])
	log := a.log.WithFields(logrus.Fields{
		"pass":  PassLoad,
		"group": group.Name,
		"file":  rel,
	})

	data, err := root.ReadFile(rel)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("artifact not present")
		a.metrics.CountArtifact(string(kind), observability.ArtifactMissing)
		return nil
	}
	if err != nil {
		log.WithError(err).Warn("failed to read artifact")
		a.metrics.CountArtifact(string(kind), observability.ArtifactFailed)
		return nil
	}

	var decodeErr error
	switch kind {
	case ArtifactComponents:
		decodeErr = json.Unmarshal(data, &out.components)
	case ArtifactMarkup:
		decodeErr = json.Unmarshal(data, &out.markup)
	case ArtifactInputs:
		var inputs inputPaths
		if decodeErr = json.Unmarshal(data, &inputs); decodeErr == nil {
			out.inputs = &inputs
		}
	case ArtifactLess:
		decodeErr = json.Unmarshal(data, &out.less)
	}

	if decodeErr != nil {
		a.metrics.CountArtifact(string(kind), observability.ArtifactInvalid)
		return &ArtifactError{Group: group.Name, Kind: kind, Path: rel, Err: decodeErr}
	}

	a.metrics.CountArtifact(string(kind), observability.ArtifactLoaded)
	log.Debug("artifact loaded")
	return nil
}
