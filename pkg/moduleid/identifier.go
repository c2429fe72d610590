// Package moduleid parses, serializes and normalizes plugin-prefixed module
// identifiers such as "wml!Controls/list/item" or "i18n!lang?Controls/list".
package moduleid

import (
	"regexp"
	"strings"
)

// pluginPrefix matches one "name!" or "name!arg?" prefix
var pluginPrefix = regexp.MustCompile(`^([A-Za-z0-9_.-]+)!(?:([^!?/]*)\?)?`)

// Plugin is a single loader plugin in an identifier chain
type Plugin struct {
	Name   string
	Arg    string
	HasArg bool
}

// Identifier is a parsed module identifier. Plugins are kept in written
// order; the last plugin is the one closest to Base.
type Identifier struct {
	Base    string
	Plugins []Plugin
}

// Parse splits raw into its plugin chain and base path. It never fails; a
// string with no plugin prefix parses to an identifier with only a base.
func Parse(raw string) Identifier {
	var id Identifier
	rest := raw
	for {
		m := pluginPrefix.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}

		p := Plugin{Name: rest[m[2]:m[3]]}
		if m[4] >= 0 {
			p.Arg = rest[m[4]:m[5]]
			p.HasArg = true
		}
		id.Plugins = append(id.Plugins, p)
		rest = rest[m[1]:]
	}
	id.Base = rest
	return id
}

// String serializes the identifier back to its written form
func (id Identifier) String() string {
	var sb strings.Builder
	for _, p := range id.Plugins {
		sb.WriteString(p.Name)
		sb.WriteByte('!')
		if p.HasArg {
			sb.WriteString(p.Arg)
			sb.WriteByte('?')
		}
	}
	sb.WriteString(id.Base)
	return sb.String()
}

// HasPlugin reports whether the chain contains a plugin called name
func (id Identifier) HasPlugin(name string) bool {
	_, ok := id.Plugin(name)
	return ok
}

// Plugin returns the first plugin called name
func (id Identifier) Plugin(name string) (Plugin, bool) {
	for _, p := range id.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Plugin{}, false
}

// AddPlugin appends a plugin closest to the base
func (id *Identifier) AddPlugin(name string) {
	id.Plugins = append(id.Plugins, Plugin{Name: name})
}

// DeletePlugin removes every plugin called name
func (id *Identifier) DeletePlugin(name string) {
	var kept []Plugin
	for _, p := range id.Plugins {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	id.Plugins = kept
}

// GroupName returns the first path segment of the base
func (id Identifier) GroupName() string {
	group, _, _ := strings.Cut(id.Base, "/")
	return group
}

// Clone returns a copy that shares no plugin storage with id
func (id Identifier) Clone() Identifier {
	out := Identifier{Base: id.Base}
	if len(id.Plugins) > 0 {
		out.Plugins = append(make([]Plugin, 0, len(id.Plugins)), id.Plugins...)
	}
	return out
}
