package moduleid

import "strings"

// Aliases maps deprecated group path prefixes to their current location.
// Keys and values are slash separated paths.
type Aliases map[string]string

// DefaultAliases returns the built-in legacy prefix table
func DefaultAliases() Aliases {
	return Aliases{
		"Core":        "WS.Core/core",
		"Lib":         "WS.Core/lib",
		"Lib/Control": "WS.Core/lib/Control",
		"Ext":         "WS.Core/ext",
		"Transport":   "WS.Core/transport",
		"Helpers":     "WS.Core/core/helpers",
		"Deprecated":  "WS.Deprecated",
	}
}

// Merge returns a new table holding a's entries overridden by extra
func (a Aliases) Merge(extra map[string]string) Aliases {
	out := make(Aliases, len(a)+len(extra))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// ResolveLegacyAlias rewrites the longest aliased segment prefix of path.
// Paths with no aliased prefix are returned unchanged.
func (a Aliases) ResolveLegacyAlias(path string) string {
	if len(a) == 0 || path == "" {
		return path
	}

	segments := strings.Split(path, "/")
	for n := len(segments); n > 0; n-- {
		prefix := strings.Join(segments[:n], "/")
		if target, ok := a[prefix]; ok {
			if n == len(segments) {
				return target
			}
			return target + "/" + strings.Join(segments[n:], "/")
		}
	}
	return path
}

// Resolve applies ResolveLegacyAlias to the base of id
func (a Aliases) Resolve(id Identifier) Identifier {
	out := id.Clone()
	out.Base = a.ResolveLegacyAlias(id.Base)
	return out
}
