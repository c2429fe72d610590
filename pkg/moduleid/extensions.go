package moduleid

import (
	"path"
	"strings"
)

// pluginExtensions are the plugins whose physical file can be derived from
// the base path alone.
var pluginExtensions = map[string][]string{
	"wml":   {".wml"},
	"tmpl":  {".tmpl"},
	"xhtml": {".xhtml"},
	"html":  {".xhtml"},
	"css":   {".less", ".css"},
	"json":  {".json"},
}

// outputPlugins maps a compiled output extension to the plugin that loads it
var outputPlugins = map[string]string{
	".js":    "",
	".wml":   "wml",
	".tmpl":  "tmpl",
	".xhtml": "xhtml",
	".css":   "css",
	".json":  "json",
}

// SourceExtensions lists uncompiled sources whose presence means a build
// step did not run.
var SourceExtensions = []string{".ts", ".tsx"}

// ImpliedExtensions returns the candidate file extensions for id, in lookup
// order. An identifier without plugins implies ".js". The second result is
// false when the plugin closest to the base is not a trusted file plugin.
func ImpliedExtensions(id Identifier) ([]string, bool) {
	if len(id.Plugins) == 0 {
		return []string{".js"}, true
	}

	last := id.Plugins[len(id.Plugins)-1]
	exts, ok := pluginExtensions[last.Name]
	return exts, ok
}

// FromOutputPath maps a build output path to the identifier that loads it.
// Minified files, source maps and unknown extensions are not module outputs.
func FromOutputPath(outputPath string) (Identifier, bool) {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(outputPath, "\\", "/")), "/")
	ext := path.Ext(p)
	if ext == ".map" {
		return Identifier{}, false
	}

	plugin, ok := outputPlugins[ext]
	if !ok {
		return Identifier{}, false
	}

	base := strings.TrimSuffix(p, ext)
	if strings.HasSuffix(base, ".min") {
		return Identifier{}, false
	}
	if base == "" || base == "." {
		return Identifier{}, false
	}

	id := Identifier{Base: base}
	if plugin != "" {
		id.AddPlugin(plugin)
	}
	return id, true
}
