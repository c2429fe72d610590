package moduleid

import "strings"

// resolutionNeutral lists plugins that never change which physical file an
// identifier resolves to.
var resolutionNeutral = map[string]bool{
	"browser":   true,
	"is":        true,
	"js":        true,
	"normalize": true,
	"optional":  true,
	"order":     true,
	"preload":   true,
}

const jsonExt = ".json"

// Normalize returns the canonical form of id. Resolution-neutral plugins are
// dropped, native-css is folded into css and a ".json" base is rewritten to
// an explicit json plugin. Normalize is idempotent.
func Normalize(id Identifier) Identifier {
	out := Identifier{Base: id.Base}
	seenCSS := false
	seenJSON := false

	for _, p := range id.Plugins {
		switch {
		case resolutionNeutral[p.Name]:
			continue
		case p.Name == "native-css" || p.Name == "css":
			if seenCSS {
				continue
			}
			seenCSS = true
			p.Name = "css"
		case p.Name == "json":
			if seenJSON {
				continue
			}
			seenJSON = true
		}
		out.Plugins = append(out.Plugins, p)
	}

	if strings.HasSuffix(out.Base, jsonExt) {
		for strings.HasSuffix(out.Base, jsonExt) {
			out.Base = strings.TrimSuffix(out.Base, jsonExt)
		}
		if !seenJSON {
			out.AddPlugin("json")
		}
	}

	return out
}

// NormalizeString parses, normalizes and serializes raw
func NormalizeString(raw string) string {
	return Normalize(Parse(raw)).String()
}
