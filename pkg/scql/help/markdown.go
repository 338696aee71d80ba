package help

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sambeau/scql/pkg/scql/schema"
)

// FormatMarkdown formats a TopicResult as GitHub-flavoured Markdown, with
// columns and listings as tables.
func FormatMarkdown(result *TopicResult) string {
	var sb strings.Builder

	switch result.Kind {
	case "source":
		fmt.Fprintf(&sb, "# %s\n\n", result.Name)
		if result.Title != "" {
			fmt.Fprintf(&sb, "%s\n\n", mdEscape(result.Title))
		}
		fmt.Fprintf(&sb, "- Dimensions: `%s`\n", schema.FormatExtents(result.Dimens))
		if result.Records > 0 {
			fmt.Fprintf(&sb, "- Records: %s\n", schema.FormatCount(result.Records))
		}
		if result.Writable {
			sb.WriteString("- Access: read-write\n")
		} else {
			sb.WriteString("- Access: read-only\n")
		}
		if len(result.Columns) > 0 {
			sb.WriteString("\n| Label | Count | Type |\n| --- | ---: | --- |\n")
			for _, c := range result.Columns {
				typ := c.Type
				if len(c.Extents) > 0 {
					typ += " " + schema.FormatExtents(c.Extents)
				}
				fmt.Fprintf(&sb, "| %s | %d | `%s` |\n", mdEscape(columnLabel(c)), c.Count, typ)
			}
		}
	case "function":
		fmt.Fprintf(&sb, "# %s\n\n`%s`\n", result.Name, result.Usage)
		if result.Description != "" {
			fmt.Fprintf(&sb, "\n%s\n", mdEscape(result.Description))
		}
	case "source-list", "function-list":
		heading := "Data Sources"
		if result.Kind == "function-list" {
			heading = "Functions"
		}
		fmt.Fprintf(&sb, "# %s\n\n", heading)
		if len(result.Entries) == 0 {
			sb.WriteString("(none)\n")
			break
		}
		sb.WriteString("| Name | Summary |\n| --- | --- |\n")
		for _, e := range result.Entries {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", e.Name, mdEscape(e.Summary))
		}
	default:
		fmt.Fprintf(&sb, "Unknown result kind: %s\n", result.Kind)
	}

	return sb.String()
}

// FormatHTML renders FormatMarkdown's output to an HTML fragment.
func FormatHTML(result *TopicResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(result)), &buf); err != nil {
		return "", fmt.Errorf("rendering help: %w", err)
	}
	return buf.String(), nil
}

var mdEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func mdEscape(s string) string {
	return mdEscaper.Replace(s)
}
