package queryengine

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"datachat-ai/pkg/tabular"
)

// Execute interprets a QueryExpression directly against the dataset's
// in-memory columns. Execution is read-only over the Dataset and never
// raises past this boundary: every outcome is a Tabular, Scalar, or
// Failure result.
func Execute(expr *QueryExpression, ds *tabular.Dataset) (result QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Execute -> recovered from panic: %v", r)
			result = failureResult(FailureExecution, fmt.Sprintf("query execution failed: %v", r))
		}
	}()

	if err := expr.CheckGrammar(); err != nil {
		return failureResult(FailureMalformedQuery, err.Error())
	}
	// Column references are rejected before execution, not caught as a
	// generic runtime fault
	if err := expr.checkColumns(ds.Schema()); err != nil {
		return failureResult(FailureColumnNotFound, err.Error())
	}

	rows, fail := applyFilter(expr.Filter, ds)
	if fail != nil {
		return QueryResult{Kind: ResultFailure, Failure: fail}
	}

	if expr.Aggregate != nil {
		if expr.GroupBy != "" {
			return executeGroupBy(expr, ds, rows)
		}
		return executeAggregate(expr.Aggregate, ds, rows)
	}

	return executeProjection(expr, ds, rows)
}

// applyFilter returns the indexes of rows matching every condition
func applyFilter(conditions []Condition, ds *tabular.Dataset) ([]int, *Failure) {
	rows := make([]int, 0, ds.RowCount())
	for i := 0; i < ds.RowCount(); i++ {
		rows = append(rows, i)
	}

	for _, cond := range conditions {
		col := ds.Column(cond.Column)
		matched := rows[:0]
		for _, i := range rows {
			ok, fail := matchCondition(col, i, cond)
			if fail != nil {
				return nil, fail
			}
			if ok {
				matched = append(matched, i)
			}
		}
		rows = matched
	}
	return rows, nil
}

func matchCondition(col *tabular.Column, row int, cond Condition) (bool, *Failure) {
	switch col.Kind {
	case tabular.KindNumeric:
		if cond.Op == OpContains {
			return false, typeMismatch("contains is not defined for numeric column %q", col.Name)
		}
		literal, err := strconv.ParseFloat(strings.TrimSpace(cond.Value), 64)
		if err != nil {
			return false, typeMismatch("numeric column %q compared with non-numeric literal %q", col.Name, cond.Value)
		}
		return compareNumbers(col.Nums[row], literal, cond.Op), nil

	case tabular.KindDatetime:
		if cond.Op == OpContains {
			return false, typeMismatch("contains is not defined for datetime column %q", col.Name)
		}
		literal, err := tabular.ParseDate(cond.Value)
		if err != nil {
			return false, typeMismatch("datetime column %q compared with non-date literal %q", col.Name, cond.Value)
		}
		cell := col.Times[row]
		switch cond.Op {
		case OpEq:
			return cell.Equal(literal), nil
		case OpNeq:
			return !cell.Equal(literal), nil
		case OpGt:
			return cell.After(literal), nil
		case OpGte:
			return !cell.Before(literal), nil
		case OpLt:
			return cell.Before(literal), nil
		case OpLte:
			return !cell.After(literal), nil
		}
		return false, nil

	default:
		// Literal values follow the dataset's normalization convention
		literal := strings.ToLower(strings.TrimSpace(cond.Value))
		cell := col.Texts[row]
		switch cond.Op {
		case OpEq:
			return cell == literal, nil
		case OpNeq:
			return cell != literal, nil
		case OpContains:
			return strings.Contains(cell, literal), nil
		case OpGt:
			return cell > literal, nil
		case OpGte:
			return cell >= literal, nil
		case OpLt:
			return cell < literal, nil
		case OpLte:
			return cell <= literal, nil
		}
		return false, nil
	}
}

func compareNumbers(a, b float64, op CompareOp) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	}
	return false
}

// executeAggregate reduces the selected rows to a scalar, or to a single
// row for argmax/argmin. Empty selections reduce to defined zero/empty
// values instead of failing.
func executeAggregate(agg *Aggregate, ds *tabular.Dataset, rows []int) QueryResult {
	switch agg.Op {
	case AggCount:
		return scalarNumber(float64(len(rows)))

	case AggDistinctCount:
		col := ds.Column(agg.Column)
		seen := make(map[string]bool, len(rows))
		for _, i := range rows {
			seen[col.CellString(i)] = true
		}
		return scalarNumber(float64(len(seen)))

	case AggSum, AggMean:
		col := ds.Column(agg.Column)
		if col.Kind != tabular.KindNumeric {
			return failureResult(FailureTypeMismatch,
				fmt.Sprintf("%s over non-numeric column %q", agg.Op, agg.Column))
		}
		sum := 0.0
		for _, i := range rows {
			sum += col.Nums[i]
		}
		if agg.Op == AggSum {
			return scalarNumber(sum)
		}
		if len(rows) == 0 {
			return scalarNumber(0) // zero-denominator guard
		}
		return scalarNumber(sum / float64(len(rows)))

	case AggArgMax, AggArgMin:
		col := ds.Column(agg.Column)
		if col.Kind != tabular.KindNumeric {
			return failureResult(FailureTypeMismatch,
				fmt.Sprintf("%s over non-numeric column %q", agg.Op, agg.Column))
		}
		columns := ds.Schema().ColumnNames()
		if len(rows) == 0 {
			return tabularResult(columns, nil)
		}
		best := rows[0]
		for _, i := range rows[1:] {
			if agg.Op == AggArgMax && col.Nums[i] > col.Nums[best] {
				best = i
			}
			if agg.Op == AggArgMin && col.Nums[i] < col.Nums[best] {
				best = i
			}
		}
		return tabularResult(columns, [][]string{renderRow(ds, best, columns)})
	}
	return failureResult(FailureMalformedQuery, fmt.Sprintf("unknown aggregate %q", agg.Op))
}

// executeGroupBy reduces the selected rows per group, groups ordered by
// first appearance for deterministic output
func executeGroupBy(expr *QueryExpression, ds *tabular.Dataset, rows []int) QueryResult {
	groupCol := ds.Column(expr.GroupBy)
	agg := expr.Aggregate

	var aggCol *tabular.Column
	if agg.Column != "" {
		aggCol = ds.Column(agg.Column)
	}
	if (agg.Op == AggSum || agg.Op == AggMean) && aggCol.Kind != tabular.KindNumeric {
		return failureResult(FailureTypeMismatch,
			fmt.Sprintf("%s over non-numeric column %q", agg.Op, agg.Column))
	}

	var order []string
	grouped := make(map[string][]int)
	for _, i := range rows {
		key := groupCol.CellString(i)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	valueName := string(agg.Op)
	if agg.Column != "" {
		valueName = fmt.Sprintf("%s_%s", agg.Op, agg.Column)
	}

	out := make([][]string, 0, len(order))
	for _, key := range order {
		members := grouped[key]
		var value string
		switch agg.Op {
		case AggCount:
			value = formatNumber(float64(len(members)))
		case AggDistinctCount:
			seen := make(map[string]bool, len(members))
			for _, i := range members {
				seen[aggCol.CellString(i)] = true
			}
			value = formatNumber(float64(len(seen)))
		case AggSum, AggMean:
			sum := 0.0
			for _, i := range members {
				sum += aggCol.Nums[i]
			}
			if agg.Op == AggMean && len(members) > 0 {
				sum /= float64(len(members))
			}
			value = formatNumber(sum)
		}
		out = append(out, []string{key, value})
	}
	return tabularResult([]string{expr.GroupBy, valueName}, out)
}

// executeProjection applies sort, select and limit to the filtered rows
func executeProjection(expr *QueryExpression, ds *tabular.Dataset, rows []int) QueryResult {
	if expr.Sort != nil {
		col := ds.Column(expr.Sort.Column)
		sort.SliceStable(rows, func(a, b int) bool {
			less := cellLess(col, rows[a], rows[b])
			if expr.Sort.Descending {
				return cellLess(col, rows[b], rows[a])
			}
			return less
		})
	}

	columns := expr.Select
	if len(columns) == 0 {
		columns = ds.Schema().ColumnNames()
	}

	if expr.Limit > 0 && len(rows) > expr.Limit {
		rows = rows[:expr.Limit]
	}

	out := make([][]string, 0, len(rows))
	for _, i := range rows {
		out = append(out, renderRow(ds, i, columns))
	}
	return tabularResult(columns, out)
}

func cellLess(col *tabular.Column, a, b int) bool {
	switch col.Kind {
	case tabular.KindNumeric:
		return col.Nums[a] < col.Nums[b]
	case tabular.KindDatetime:
		return col.Times[a].Before(col.Times[b])
	default:
		return col.Texts[a] < col.Texts[b]
	}
}

func renderRow(ds *tabular.Dataset, row int, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, name := range columns {
		out = append(out, ds.Column(name).CellString(row))
	}
	return out
}

func typeMismatch(format string, args ...interface{}) *Failure {
	return &Failure{Kind: FailureTypeMismatch, Message: fmt.Sprintf(format, args...)}
}
