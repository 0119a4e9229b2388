package retriever

import (
	"fmt"
	"strings"

	"datachat-ai/pkg/tabular"
)

// Document is one denormalized text rendering of a row or knowledge snippet
type Document struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// RenderDocuments turns every dataset row into a "column: value" document,
// the rendering used when no fixed schema is available for planning
func RenderDocuments(ds *tabular.Dataset) []Document {
	columns := ds.Columns()
	docs := make([]Document, 0, ds.RowCount())
	for i := 0; i < ds.RowCount(); i++ {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, fmt.Sprintf("%s: %s", col.Name, col.CellString(i)))
		}
		docs = append(docs, Document{ID: i, Text: strings.Join(parts, ", ")})
	}
	return docs
}
