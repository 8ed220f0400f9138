// Package output renders reports and records for the console.
package output

import (
	"fmt"
	"io"
	"strings"

	"plannercheck/internal/field"
	"plannercheck/internal/resource"
)

// Status markers.
const (
	MarkOK   = "✅"
	MarkWarn = "⚠️ "
	MarkFail = "❌"
)

const (
	// Rule is the heavy separator around report sections.
	Rule = "======================================================================"

	// ListSeparator separates rows inside a section.
	ListSeparator = "----------------------------------------------------------------------"

	// TimeLayout formats report timestamps.
	TimeLayout = "2006-01-02 15:04:05"
)

// TitleKeys is the priority list for a record's display title.
var TitleKeys = []string{"title", "name", "message", "_id"}

// Section writes a titled block header.
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Rule)
}

// FormatRecord formats a record line for the list command.
// Format: "{N:>4}  {TITLE}\n" (4-wide right-aligned number, two spaces, title)
func FormatRecord(w io.Writer, num int, rec field.Record) {
	title := normalizeTitle(field.First(TitleKeys, rec).Or(""))
	fmt.Fprintf(w, "%4d  %s\n", num, title)
}

// FormatKind formats one resource kind for the kinds command.
func FormatKind(w io.Writer, k resource.Kind) {
	listable := "create"
	if k.Listable {
		listable = "create, list"
	}
	fmt.Fprintf(w, "%-10s %-16s %-12s %s\n", k.Name, k.Label, k.Path, listable)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// valueLine renders a representative field as "Label: value".
func valueLine(v field.Value) string {
	if !v.Found {
		return "ID: " + field.Placeholder
	}
	return fieldLabel(v.Key) + ": " + v.String()
}

func fieldLabel(key string) string {
	switch key {
	case "_id":
		return "ID"
	case "email":
		return "Email"
	case "title":
		return "Title"
	case "name":
		return "Name"
	default:
		return key
	}
}
