package queryengine

import (
	"fmt"

	"datachat-ai/pkg/tabular"
)

// CompareOp is a whitelisted filter comparison operator
type CompareOp string

const (
	OpEq       CompareOp = "eq"
	OpNeq      CompareOp = "neq"
	OpGt       CompareOp = "gt"
	OpGte      CompareOp = "gte"
	OpLt       CompareOp = "lt"
	OpLte      CompareOp = "lte"
	OpContains CompareOp = "contains"
)

// AggregateOp is a whitelisted aggregate reduction
type AggregateOp string

const (
	AggSum           AggregateOp = "sum"
	AggMean          AggregateOp = "mean"
	AggCount         AggregateOp = "count"
	AggDistinctCount AggregateOp = "distinct_count"
	AggArgMax        AggregateOp = "argmax"
	AggArgMin        AggregateOp = "argmin"
)

// Condition is one filter predicate; conditions combine with AND semantics
type Condition struct {
	Column string    `json:"column"`
	Op     CompareOp `json:"op"`
	Value  string    `json:"value"`
}

// Aggregate is a reduction over a column. Column may be empty for count.
type Aggregate struct {
	Op     AggregateOp `json:"op"`
	Column string      `json:"column,omitempty"`
}

// Sort orders the result rows by one column
type Sort struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending,omitempty"`
}

// QueryExpression is the closed, whitelisted representation of one tabular
// operation. It is parsed from the planner's structured output and is never
// evaluated as code.
type QueryExpression struct {
	Filter    []Condition `json:"filter,omitempty"`
	GroupBy   string      `json:"group_by,omitempty"`
	Aggregate *Aggregate  `json:"aggregate,omitempty"`
	Sort      *Sort       `json:"sort,omitempty"`
	Select    []string    `json:"select,omitempty"`
	Limit     int         `json:"limit,omitempty"`
}

var validCompareOps = map[CompareOp]bool{
	OpEq: true, OpNeq: true, OpGt: true, OpGte: true,
	OpLt: true, OpLte: true, OpContains: true,
}

var validAggregateOps = map[AggregateOp]bool{
	AggSum: true, AggMean: true, AggCount: true,
	AggDistinctCount: true, AggArgMax: true, AggArgMin: true,
}

// CheckGrammar rejects expressions outside the whitelisted grammar. It does
// not consult the schema; column existence is checked separately so that
// ColumnNotFound stays a distinct failure from a malformed query.
func (q *QueryExpression) CheckGrammar() error {
	for _, cond := range q.Filter {
		if cond.Column == "" {
			return fmt.Errorf("%w: filter condition without a column", ErrMalformedQuery)
		}
		if !validCompareOps[cond.Op] {
			return fmt.Errorf("%w: unknown comparison operator %q", ErrMalformedQuery, cond.Op)
		}
	}
	if q.Aggregate != nil {
		if !validAggregateOps[q.Aggregate.Op] {
			return fmt.Errorf("%w: unknown aggregate %q", ErrMalformedQuery, q.Aggregate.Op)
		}
		if q.Aggregate.Op != AggCount && q.Aggregate.Column == "" {
			return fmt.Errorf("%w: aggregate %q requires a column", ErrMalformedQuery, q.Aggregate.Op)
		}
		if q.GroupBy != "" && (q.Aggregate.Op == AggArgMax || q.Aggregate.Op == AggArgMin) {
			return fmt.Errorf("%w: %q cannot be combined with group_by", ErrMalformedQuery, q.Aggregate.Op)
		}
	}
	if q.GroupBy != "" && q.Aggregate == nil {
		return fmt.Errorf("%w: group_by requires an aggregate", ErrMalformedQuery)
	}
	if q.Sort != nil && q.Aggregate != nil {
		return fmt.Errorf("%w: sort cannot be combined with an aggregate", ErrMalformedQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrMalformedQuery)
	}
	return nil
}

// referencedColumns lists every column name the expression touches
func (q *QueryExpression) referencedColumns() []string {
	var cols []string
	for _, cond := range q.Filter {
		cols = append(cols, cond.Column)
	}
	if q.GroupBy != "" {
		cols = append(cols, q.GroupBy)
	}
	if q.Aggregate != nil && q.Aggregate.Column != "" {
		cols = append(cols, q.Aggregate.Column)
	}
	if q.Sort != nil {
		cols = append(cols, q.Sort.Column)
	}
	cols = append(cols, q.Select...)
	return cols
}

// checkColumns verifies every referenced column exists in the schema,
// before any execution happens
func (q *QueryExpression) checkColumns(schema tabular.Schema) error {
	for _, name := range q.referencedColumns() {
		if _, ok := schema.KindOf(name); !ok {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
	}
	return nil
}
