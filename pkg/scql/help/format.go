package help

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sambeau/scql/pkg/scql/schema"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder

	switch result.Kind {
	case "source":
		formatSourceText(&sb, result)
	case "function":
		formatFunctionText(&sb, result, width)
	case "source-list":
		formatListText(&sb, "Data Sources", result.Entries)
	case "function-list":
		formatListText(&sb, "Functions", result.Entries)
	default:
		sb.WriteString(fmt.Sprintf("Unknown result kind: %s\n", result.Kind))
	}

	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// formatSourceText formats data source help output
func formatSourceText(sb *strings.Builder, result *TopicResult) {
	fmt.Fprintf(sb, "Source: %s\n", result.Name)
	if result.Title != "" {
		fmt.Fprintf(sb, "\n%s\n", result.Title)
	}

	sb.WriteString("\n")
	fmt.Fprintf(sb, "Dimensions: %s\n", schema.FormatExtents(result.Dimens))
	if result.Records > 0 {
		fmt.Fprintf(sb, "Records: %s\n", schema.FormatCount(result.Records))
	}
	if result.Writable {
		sb.WriteString("Access: read-write\n")
	} else {
		sb.WriteString("Access: read-only\n")
	}
	if result.Handle != "" {
		fmt.Fprintf(sb, "Handle: %s\n", result.Handle)
	}

	if len(result.Columns) == 0 {
		sb.WriteString("\n(no columns)\n")
		return
	}

	sb.WriteString("\nColumns:\n")

	// Find max label length for alignment
	maxLen := 0
	for _, c := range result.Columns {
		if len(columnLabel(c)) > maxLen {
			maxLen = len(columnLabel(c))
		}
	}

	for _, c := range result.Columns {
		label := columnLabel(c)
		padding := strings.Repeat(" ", maxLen-len(label)+2)
		fmt.Fprintf(sb, "  %s%s%d × %s", label, padding, c.Count, c.Type)
		if len(c.Extents) > 0 {
			fmt.Fprintf(sb, " %s", schema.FormatExtents(c.Extents))
		}
		sb.WriteString("\n")
	}
}

func columnLabel(c ColumnEntry) string {
	if c.Label == "" {
		return "-"
	}
	return c.Label
}

// formatFunctionText formats a single function's help output
func formatFunctionText(sb *strings.Builder, result *TopicResult, width int) {
	fmt.Fprintf(sb, "%s\n", result.Usage)
	if result.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrap(result.Description, width) {
			fmt.Fprintf(sb, "%s\n", line)
		}
	}
}

// formatListText formats a name/summary listing
func formatListText(sb *strings.Builder, heading string, entries []ListEntry) {
	sb.WriteString(heading + "\n")
	sb.WriteString(strings.Repeat("=", len(heading)) + "\n\n")

	if len(entries) == 0 {
		sb.WriteString("(none)\n")
		return
	}

	// Find max name length for alignment
	maxLen := 0
	for _, e := range entries {
		if len(e.Name) > maxLen {
			maxLen = len(e.Name)
		}
	}

	for _, e := range entries {
		padding := strings.Repeat(" ", maxLen-len(e.Name)+2)
		fmt.Fprintf(sb, "  %s%s%s\n", e.Name, padding, e.Summary)
	}
}

// wrap breaks text into lines of at most width runes, splitting on spaces.
// A single word longer than width gets its own line.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if lineLen > 0 && lineLen+1+n > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += n
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
