package datastore

import (
	"gorm.io/gorm"

	"datachat-ai/pkg/tabular"
)

// Config holds the connection settings for an archival database
type Config struct {
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Driver opens a connection for one SQL dialect and maps column kinds onto
// that dialect's types
type Driver interface {
	Open(config Config) (*gorm.DB, error)
	ColumnType(kind tabular.Kind) string
	CreateTableSQL(table string, columns []tabular.SchemaColumn) string
}
