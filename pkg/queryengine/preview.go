package queryengine

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderPreview renders a QueryResult as a compact textual preview for the
// summarizer prompt and for the caller-facing result preview. Tabular
// results are capped at maxRows; the cap is noted so the model does not
// treat the preview as exhaustive.
func RenderPreview(result QueryResult, maxRows int) string {
	switch result.Kind {
	case ResultScalar:
		return result.Scalar

	case ResultTabular:
		if len(result.Rows) == 0 {
			return "(no matching rows)"
		}
		shown := result.Rows
		truncated := 0
		if maxRows > 0 && len(shown) > maxRows {
			truncated = len(shown) - maxRows
			shown = shown[:maxRows]
		}

		var sb strings.Builder
		table := tablewriter.NewWriter(&sb)
		table.SetHeader(result.Columns)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, row := range shown {
			table.Append(row)
		}
		table.Render()

		if truncated > 0 {
			fmt.Fprintf(&sb, "... and %d more rows\n", truncated)
		}
		return sb.String()

	default:
		if result.Failure != nil {
			return fmt.Sprintf("(query failed: %s)", result.Failure.Message)
		}
		return "(no result)"
	}
}
