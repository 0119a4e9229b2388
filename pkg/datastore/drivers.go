package datastore

import (
	"fmt"
	"strings"

	"gorm.io/driver/clickhouse"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datachat-ai/pkg/tabular"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

func columnDefs(driver Driver, columns []tabular.SchemaColumn) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, fmt.Sprintf("%s %s", sanitizeIdent(col.Name), driver.ColumnType(col.Kind)))
	}
	return strings.Join(defs, ", ")
}

// PostgresDriver archives datasets into PostgreSQL
type PostgresDriver struct{}

func NewPostgresDriver() *PostgresDriver { return &PostgresDriver{} }

func (d *PostgresDriver) Open(config Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.Host, config.Port, config.Username, config.Password, config.Database)
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

func (d *PostgresDriver) ColumnType(kind tabular.Kind) string {
	switch kind {
	case tabular.KindNumeric:
		return "double precision"
	case tabular.KindDatetime:
		return "timestamp"
	default:
		return "text"
	}
}

func (d *PostgresDriver) CreateTableSQL(table string, columns []tabular.SchemaColumn) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, columnDefs(d, columns))
}

// MySQLDriver archives datasets into MySQL
type MySQLDriver struct{}

func NewMySQLDriver() *MySQLDriver { return &MySQLDriver{} }

func (d *MySQLDriver) Open(config Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Username, config.Password, config.Host, config.Port, config.Database)
	return gorm.Open(mysql.Open(dsn), gormConfig())
}

func (d *MySQLDriver) ColumnType(kind tabular.Kind) string {
	switch kind {
	case tabular.KindNumeric:
		return "double"
	case tabular.KindDatetime:
		return "datetime"
	default:
		return "text"
	}
}

func (d *MySQLDriver) CreateTableSQL(table string, columns []tabular.SchemaColumn) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, columnDefs(d, columns))
}

// ClickHouseDriver archives datasets into ClickHouse
type ClickHouseDriver struct{}

func NewClickHouseDriver() *ClickHouseDriver { return &ClickHouseDriver{} }

func (d *ClickHouseDriver) Open(config Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s",
		config.Username, config.Password, config.Host, config.Port, config.Database)
	return gorm.Open(clickhouse.Open(dsn), gormConfig())
}

func (d *ClickHouseDriver) ColumnType(kind tabular.Kind) string {
	switch kind {
	case tabular.KindNumeric:
		return "Float64"
	case tabular.KindDatetime:
		return "DateTime"
	default:
		return "String"
	}
}

func (d *ClickHouseDriver) CreateTableSQL(table string, columns []tabular.SchemaColumn) string {
	return fmt.Sprintf("CREATE TABLE %s (%s) ENGINE = MergeTree() ORDER BY tuple()", table, columnDefs(d, columns))
}
