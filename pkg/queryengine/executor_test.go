package queryengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-ai/pkg/tabular"
)

func salesDataset(t *testing.T) *tabular.Dataset {
	t.Helper()
	csv := "Product,Store ID,Quantity\nmilk,str001,5\nmilk,str002,0\n"
	ds, err := tabular.Ingest("sales", strings.NewReader(csv), tabular.FormatCSV, tabular.IngestOptions{})
	require.NoError(t, err)
	return ds
}

func TestExecuteFilteredSum(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{
		Filter: []Condition{
			{Column: "product", Op: OpEq, Value: "milk"},
			{Column: "store_id", Op: OpEq, Value: "str001"},
		},
		Aggregate: &Aggregate{Op: AggSum, Column: "quantity"},
	}

	result := Execute(expr, ds)
	require.Equal(t, ResultScalar, result.Kind)
	assert.Equal(t, "5", result.Scalar)
}

func TestExecuteColumnNotFound(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{
		Aggregate: &Aggregate{Op: AggSum, Column: "discount"},
	}

	result := Execute(expr, ds)
	require.Equal(t, ResultFailure, result.Kind)
	assert.Equal(t, FailureColumnNotFound, result.Failure.Kind)
	assert.Contains(t, result.Failure.Message, "discount")
}

func TestExecuteTypeMismatch(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{
		Aggregate: &Aggregate{Op: AggSum, Column: "product"},
	}

	result := Execute(expr, ds)
	require.Equal(t, ResultFailure, result.Kind)
	assert.Equal(t, FailureTypeMismatch, result.Failure.Kind)
}

func TestExecuteEmptySelectionAggregates(t *testing.T) {
	ds := salesDataset(t)
	noMatch := []Condition{{Column: "product", Op: OpEq, Value: "cheese"}}

	sum := Execute(&QueryExpression{Filter: noMatch, Aggregate: &Aggregate{Op: AggSum, Column: "quantity"}}, ds)
	require.Equal(t, ResultScalar, sum.Kind)
	assert.Equal(t, "0", sum.Scalar)

	// mean over an empty selection must not divide by zero
	mean := Execute(&QueryExpression{Filter: noMatch, Aggregate: &Aggregate{Op: AggMean, Column: "quantity"}}, ds)
	require.Equal(t, ResultScalar, mean.Kind)
	assert.Equal(t, "0", mean.Scalar)

	count := Execute(&QueryExpression{Filter: noMatch, Aggregate: &Aggregate{Op: AggCount}}, ds)
	assert.Equal(t, "0", count.Scalar)

	argmax := Execute(&QueryExpression{Filter: noMatch, Aggregate: &Aggregate{Op: AggArgMax, Column: "quantity"}}, ds)
	require.Equal(t, ResultTabular, argmax.Kind)
	assert.Empty(t, argmax.Rows)
}

func TestExecuteGroupBy(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{
		GroupBy:   "store_id",
		Aggregate: &Aggregate{Op: AggSum, Column: "quantity"},
	}

	result := Execute(expr, ds)
	require.Equal(t, ResultTabular, result.Kind)
	assert.Equal(t, []string{"store_id", "sum_quantity"}, result.Columns)
	assert.Equal(t, [][]string{{"str001", "5"}, {"str002", "0"}}, result.Rows)
}

func TestExecuteArgMax(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{Aggregate: &Aggregate{Op: AggArgMax, Column: "quantity"}}

	result := Execute(expr, ds)
	require.Equal(t, ResultTabular, result.Kind)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, []string{"milk", "str001", "5"}, result.Rows[0])
}

func TestExecuteSortSelectLimit(t *testing.T) {
	csv := "Product,Quantity\nmilk,5\nbread,3\neggs,9\n"
	ds, err := tabular.Ingest("sales", strings.NewReader(csv), tabular.FormatCSV, tabular.IngestOptions{})
	require.NoError(t, err)

	expr := &QueryExpression{
		Sort:   &Sort{Column: "quantity", Descending: true},
		Select: []string{"product"},
		Limit:  2,
	}
	result := Execute(expr, ds)
	require.Equal(t, ResultTabular, result.Kind)
	assert.Equal(t, [][]string{{"eggs"}, {"milk"}}, result.Rows)
}

func TestExecuteDistinctCount(t *testing.T) {
	ds := salesDataset(t)
	result := Execute(&QueryExpression{Aggregate: &Aggregate{Op: AggDistinctCount, Column: "product"}}, ds)
	require.Equal(t, ResultScalar, result.Kind)
	assert.Equal(t, "1", result.Scalar)
}

func TestExecuteNeverReturnsGarbageOnBadLiteral(t *testing.T) {
	ds := salesDataset(t)
	expr := &QueryExpression{
		Filter:    []Condition{{Column: "quantity", Op: OpGt, Value: "many"}},
		Aggregate: &Aggregate{Op: AggCount},
	}
	result := Execute(expr, ds)
	require.Equal(t, ResultFailure, result.Kind)
	assert.Equal(t, FailureTypeMismatch, result.Failure.Kind)
}

func TestExecuteExhaustiveResultKinds(t *testing.T) {
	ds := salesDataset(t)
	exprs := []*QueryExpression{
		{},
		{Aggregate: &Aggregate{Op: AggCount}},
		{Aggregate: &Aggregate{Op: AggSum, Column: "product"}},
		{GroupBy: "product", Aggregate: &Aggregate{Op: AggMean, Column: "quantity"}},
		{Filter: []Condition{{Column: "quantity", Op: OpContains, Value: "5"}}},
	}
	for _, expr := range exprs {
		result := Execute(expr, ds)
		assert.Contains(t, []ResultKind{ResultTabular, ResultScalar, ResultFailure}, result.Kind)
	}
}
