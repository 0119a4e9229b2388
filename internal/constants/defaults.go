package constants

import "time"

// Pipeline defaults, overridable through the environment
const (
	DefaultHistoryWindow = 5  // trailing conversation turns supplied to the planner
	DefaultRetrieverTopK = 5  // documents retrieved per question on the index path
	DefaultPreviewRows   = 10 // row cap for result previews
	DefaultMaxSentences  = 2

	DefaultLLMTimeout = 60 * time.Second

	EmbeddingCacheTTL = 24 * time.Hour
)

// DefaultForbiddenWords are filler pronouns the summarizer must avoid
var DefaultForbiddenWords = []string{"you", "I", "we", "our"}

// Session modes: structured runs the planner/executor pipeline against the
// schema, retrieval uses the document index instead
const (
	SessionModeStructured = "structured"
	SessionModeRetrieval  = "retrieval"
)

// Question states, recorded on every answer for transparency
const (
	StateReceived    = "received"
	StatePlanning    = "planning"
	StateExecuting   = "executing"
	StateRetrieving  = "retrieving"
	StateSummarizing = "summarizing"
	StateAnswered    = "answered"
	StateFailed      = "failed"
)

// Archival database types
const (
	DatabaseTypePostgreSQL = "postgres"
	DatabaseTypeMySQL      = "mysql"
	DatabaseTypeClickhouse = "clickhouse"
)
