package analyzer

import (
	"regexp"
	"strings"

	"github.com/platinummonkey/modverify/pkg/moduleid"
)

// reservedNames are provided by the module loader itself
var reservedNames = map[string]bool{
	"require": true,
	"module":  true,
	"exports": true,
}

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// accept decides whether a dependency becomes a graph edge. Checks run from
// strictest to most lenient; dep must already be alias-resolved but not
// normalized so the optional plugin is still visible.
func (a *Analyzer) accept(raw string, dep moduleid.Identifier) bool {
	base := dep.Base

	if reservedNames[raw] || reservedNames[base] {
		return false
	}

	if _, ok := a.vendored[moduleid.Normalize(dep).String()]; ok {
		return false
	}

	if isExternalPackage(base) {
		return false
	}

	if dep.HasPlugin("cdn") || strings.HasPrefix(base, "/cdn/") || strings.HasPrefix(base, "cdn/") {
		return false
	}

	if dep.HasPlugin("i18n") || dep.HasPlugin("datasource") {
		return false
	}

	if dep.HasPlugin("json") || strings.HasSuffix(base, ".json") {
		return true
	}

	if dep.HasPlugin("optional") {
		return a.known[dep.GroupName()]
	}

	return true
}

// isExternalPackage matches npm scopes, scheme-prefixed names and bare
// package names without a path separator.
func isExternalPackage(base string) bool {
	return strings.HasPrefix(base, "@") ||
		schemePrefix.MatchString(base) ||
		!strings.Contains(base, "/")
}
