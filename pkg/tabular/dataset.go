package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the value kind of a column
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
)

// Column holds one named, typed sequence of values. Exactly one of the
// value slices is populated, matching Kind.
type Column struct {
	Name  string
	Kind  Kind
	Nums  []float64
	Texts []string
	Times []time.Time
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Nums)
	case KindDatetime:
		return len(c.Times)
	default:
		return len(c.Texts)
	}
}

// CellString renders the cell at row i as a display string
func (c *Column) CellString(i int) string {
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Nums[i], 'f', -1, 64)
	case KindDatetime:
		return c.Times[i].Format("2006-01-02")
	default:
		return c.Texts[i]
	}
}

// SchemaColumn is one entry of a Schema
type SchemaColumn struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema maps normalized column names to their value kinds, preserving
// column order
type Schema struct {
	Columns []SchemaColumn
}

// ColumnNames returns the ordered normalized column names
func (s Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		names = append(names, col.Name)
	}
	return names
}

// KindOf returns the kind of the named column, false if absent
func (s Schema) KindOf(name string) (Kind, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col.Kind, true
		}
	}
	return "", false
}

// Dataset is an immutable, normalized tabular structure. All columns have
// equal length. The query engine never mutates a Dataset after Normalize.
type Dataset struct {
	Name       string
	columns    []*Column
	byName     map[string]*Column
	rowCount   int
	normalized bool
}

// NewDataset builds a dataset from parsed columns. Column lengths must match.
func NewDataset(name string, columns []*Column) (*Dataset, error) {
	ds := &Dataset{
		Name:    name,
		columns: columns,
		byName:  make(map[string]*Column, len(columns)),
	}
	for i, col := range columns {
		if i == 0 {
			ds.rowCount = col.Len()
		} else if col.Len() != ds.rowCount {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), ds.rowCount)
		}
		ds.byName[col.Name] = col
	}
	return ds, nil
}

// RowCount returns the number of rows
func (ds *Dataset) RowCount() int {
	return ds.rowCount
}

// Columns returns the dataset's columns in order
func (ds *Dataset) Columns() []*Column {
	return ds.columns
}

// Column returns the named column, nil if absent
func (ds *Dataset) Column(name string) *Column {
	return ds.byName[name]
}

// Schema derives the normalized column name -> kind mapping
func (ds *Dataset) Schema() Schema {
	schema := Schema{Columns: make([]SchemaColumn, 0, len(ds.columns))}
	for _, col := range ds.columns {
		schema.Columns = append(schema.Columns, SchemaColumn{Name: col.Name, Kind: col.Kind})
	}
	return schema
}

// Normalize canonicalizes column names (lowercase, spaces to underscores)
// and lowercases/trims every text cell. It is idempotent: normalizing an
// already-normalized dataset changes nothing.
func (ds *Dataset) Normalize() *Dataset {
	if ds.normalized {
		return ds
	}
	byName := make(map[string]*Column, len(ds.columns))
	for _, col := range ds.columns {
		col.Name = NormalizeColumnName(col.Name)
		if col.Kind == KindText {
			for i, cell := range col.Texts {
				col.Texts[i] = strings.ToLower(strings.TrimSpace(cell))
			}
		}
		byName[col.Name] = col
	}
	ds.byName = byName
	ds.normalized = true
	return ds
}

// NormalizeColumnName lowercases a raw header and replaces spaces with
// underscores, e.g. "Order ID" -> "order_id"
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
