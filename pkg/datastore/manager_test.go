package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-ai/pkg/tabular"
)

func TestTableNameSanitization(t *testing.T) {
	assert.Equal(t, "dataset_sales", tableName("sales"))
	assert.Equal(t, "dataset_weekly_sales__2024_", tableName("Weekly Sales (2024)"))
	assert.Equal(t, "dataset_orders_drop_table__", tableName("orders;DROP TABLE--"))
}

func TestColumnDefsSanitizesIdentifiers(t *testing.T) {
	columns := []tabular.SchemaColumn{
		{Name: "price($)", Kind: tabular.KindNumeric},
		{Name: "store_id", Kind: tabular.KindText},
	}

	sql := NewPostgresDriver().CreateTableSQL("dataset_sales", columns)
	assert.Equal(t, "CREATE TABLE dataset_sales (price___ double precision, store_id text)", sql)

	sql = NewMySQLDriver().CreateTableSQL("dataset_sales", columns)
	assert.Contains(t, sql, "price___ double")
}

func TestCreateTableSQLPerDialect(t *testing.T) {
	columns := []tabular.SchemaColumn{
		{Name: "liters", Kind: tabular.KindNumeric},
		{Name: "sold_at", Kind: tabular.KindDatetime},
		{Name: "product", Kind: tabular.KindText},
	}

	assert.Equal(t,
		"CREATE TABLE dataset_sales (liters double precision, sold_at timestamp, product text)",
		NewPostgresDriver().CreateTableSQL("dataset_sales", columns))
	assert.Equal(t,
		"CREATE TABLE dataset_sales (liters double, sold_at datetime, product text)",
		NewMySQLDriver().CreateTableSQL("dataset_sales", columns))
	assert.Equal(t,
		"CREATE TABLE dataset_sales (liters Float64, sold_at DateTime, product String) ENGINE = MergeTree() ORDER BY tuple()",
		NewClickHouseDriver().CreateTableSQL("dataset_sales", columns))
}

func TestToFloatConversions(t *testing.T) {
	assert.Equal(t, 5.5, toFloat(5.5))
	assert.Equal(t, 2.0, toFloat(float32(2)))
	assert.Equal(t, 7.0, toFloat(int64(7)))
	assert.Equal(t, 3.0, toFloat(int32(3)))
	assert.Equal(t, 9.0, toFloat(9))
	assert.Equal(t, 0.0, toFloat("not a number"))
	assert.Equal(t, 0.0, toFloat(nil))
}

func TestColumnFromRowsReconstructsKinds(t *testing.T) {
	soldAt := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := []map[string]interface{}{
		{"liters": int64(5), "product": "milk", "sold_at": soldAt},
		{"liters": int64(0), "product": "bread", "sold_at": soldAt.AddDate(0, 0, 1)},
	}

	liters := columnFromRows("liters", rows)
	assert.Equal(t, tabular.KindNumeric, liters.Kind)
	assert.Equal(t, []float64{5, 0}, liters.Nums)

	product := columnFromRows("product", rows)
	assert.Equal(t, tabular.KindText, product.Kind)
	assert.Equal(t, []string{"milk", "bread"}, product.Texts)

	soldAtCol := columnFromRows("sold_at", rows)
	assert.Equal(t, tabular.KindDatetime, soldAtCol.Kind)
	assert.Equal(t, soldAt, soldAtCol.Times[0])
}

func TestDatasetFromRowsRoundTrip(t *testing.T) {
	rows := []map[string]interface{}{
		{"product": "Milk ", "store_id": "STR001", "liters": 5.0},
		{"product": "bread", "store_id": "str002", "liters": 2.0},
	}

	ds, err := datasetFromRows("sales", rows)
	require.NoError(t, err)
	ds.Normalize()

	assert.Equal(t, 2, ds.RowCount())
	// columns come back in sorted name order
	schema := ds.Schema()
	assert.Equal(t, []string{"liters", "product", "store_id"}, schema.ColumnNames())

	// text cells are re-normalized after reload
	assert.Equal(t, []string{"milk", "bread"}, ds.Column("product").Texts)
	assert.Equal(t, []string{"str001", "str002"}, ds.Column("store_id").Texts)
	assert.Equal(t, []float64{5, 2}, ds.Column("liters").Nums)
}

func TestDatasetFromRowsEmptyArchive(t *testing.T) {
	_, err := datasetFromRows("sales", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestManagerRejectsUnknownDriver(t *testing.T) {
	m := NewManager()
	_, _, err := m.Connect(Config{Type: "sqlite"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no driver registered")
}
