package moduleid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedExtensions(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
		trusted  bool
	}{
		{"Controls/list", []string{".js"}, true},
		{"wml!Controls/item", []string{".wml"}, true},
		{"tmpl!Controls/item", []string{".tmpl"}, true},
		{"html!Controls/item", []string{".xhtml"}, true},
		{"css!Controls/list", []string{".less", ".css"}, true},
		{"json!Controls/config", []string{".json"}, true},
		{"text!Controls/readme", nil, false},
		{"i18n!Controls/list", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			exts, ok := ImpliedExtensions(Parse(tt.raw))
			assert.Equal(t, tt.trusted, ok)
			assert.Equal(t, tt.expected, exts)
		})
	}
}

func TestFromOutputPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{"Controls/list.js", "Controls/list", true},
		{"Controls/item.wml", "wml!Controls/item", true},
		{"Controls/item.tmpl", "tmpl!Controls/item", true},
		{"Controls/item.xhtml", "xhtml!Controls/item", true},
		{"Controls/list.css", "css!Controls/list", true},
		{"Controls/config.json", "json!Controls/config", true},
		{"./Controls/list.js", "Controls/list", true},
		{"/Controls/list.js", "Controls/list", true},
		{`Controls\list.js`, "Controls/list", true},
		{"Controls/list.min.js", "", false},
		{"Controls/list.js.map", "", false},
		{"Controls/logo.png", "", false},
		{"Controls/README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id, ok := FromOutputPath(tt.path)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, id.String())
			}
		})
	}
}
