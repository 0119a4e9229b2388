package queryengine

import (
	"errors"
	"strconv"
)

// Typed failures in the executor/planner taxonomy
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrMalformedQuery = errors.New("malformed query")
)

// ResultKind tags the QueryResult union
type ResultKind string

const (
	ResultTabular ResultKind = "tabular"
	ResultScalar  ResultKind = "scalar"
	ResultFailure ResultKind = "failure"
)

// FailureKind classifies an execution failure
type FailureKind string

const (
	FailureColumnNotFound FailureKind = "column_not_found"
	FailureTypeMismatch   FailureKind = "type_mismatch"
	FailureMalformedQuery FailureKind = "malformed_query"
	FailureExecution      FailureKind = "execution_failed"
)

// Failure carries a typed execution failure across the component boundary
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// QueryResult is the tagged union produced by Execute: Tabular rows, a
// Scalar value, or a typed Failure. It never carries a raw error outward.
type QueryResult struct {
	Kind    ResultKind `json:"kind"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Scalar  string     `json:"scalar,omitempty"`
	Failure *Failure   `json:"failure,omitempty"`
}

func tabularResult(columns []string, rows [][]string) QueryResult {
	return QueryResult{Kind: ResultTabular, Columns: columns, Rows: rows}
}

func scalarResult(value string) QueryResult {
	return QueryResult{Kind: ResultScalar, Scalar: value}
}

func scalarNumber(v float64) QueryResult {
	return scalarResult(formatNumber(v))
}

func failureResult(kind FailureKind, message string) QueryResult {
	return QueryResult{Kind: ResultFailure, Failure: &Failure{Kind: kind, Message: message}}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
