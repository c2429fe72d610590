package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format is a report output format
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// ParseFormat validates an output format. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatGitHub:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension used when publishing in f
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".txt"
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Render writes the report to w in format
func (r *Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return r.renderJSON(w)
	case FormatGitHub:
		return r.renderGitHub(w)
	case FormatText, "":
		return r.renderText(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (r *Report) renderText(w io.Writer) error {
	var b strings.Builder
	for _, d := range r.Diagnostics {
		group := d.Group
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(&b, "%-7s [%s] %s\n", d.Kind, group, d.Message)
	}

	if len(r.Diagnostics) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Summary (run %s):\n", r.RunID)
	fmt.Fprintf(&b, "  Groups:   %d\n", r.Groups())
	fmt.Fprintf(&b, "  Errors:   %d\n", r.Summary.Errors)
	fmt.Fprintf(&b, "  Warnings: %d\n", r.Summary.Warnings)

	if len(r.Diagnostics) == 0 {
		b.WriteString("\n✓ No dependency problems found\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) renderJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

var (
	annotationData     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	annotationProperty = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

// renderGitHub writes workflow commands:
// ::warning title={group}::{message}
func (r *Report) renderGitHub(w io.Writer) error {
	for _, d := range r.Diagnostics {
		props := ""
		if d.Group != "" {
			props = " title=" + annotationProperty.Replace(d.Group)
		}
		if _, err := fmt.Fprintf(w, "::%s%s::%s\n", d.Kind, props, annotationData.Replace(d.Message)); err != nil {
			return err
		}
	}
	return nil
}
