package datastore

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"datachat-ai/pkg/tabular"
)

const tablePrefix = "dataset_"

// Manager archives normalized datasets into a SQL database and reloads
// them, behind a registry of dialect drivers
type Manager struct {
	drivers map[string]Driver
	mu      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		drivers: make(map[string]Driver),
	}
}

func (m *Manager) RegisterDriver(dbType string, driver Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[dbType] = driver
}

func (m *Manager) driver(dbType string) (Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[dbType]
	if !ok {
		return nil, fmt.Errorf("no driver registered for database type: %s", dbType)
	}
	return driver, nil
}

// Connect opens the archival database for the configured dialect
func (m *Manager) Connect(config Config) (*gorm.DB, Driver, error) {
	driver, err := m.driver(config.Type)
	if err != nil {
		return nil, nil, err
	}
	db, err := driver.Open(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %v", config.Type, err)
	}
	return db, driver, nil
}

// Store writes the dataset into a dataset_<name> table, replacing any
// previous archive of the same dataset
func (m *Manager) Store(ctx context.Context, db *gorm.DB, driver Driver, ds *tabular.Dataset) error {
	table := tableName(ds.Name)
	schema := ds.Schema()

	if err := db.WithContext(ctx).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
		return fmt.Errorf("failed to drop existing archive table: %v", err)
	}
	if err := db.WithContext(ctx).Exec(driver.CreateTableSQL(table, schema.Columns)).Error; err != nil {
		return fmt.Errorf("failed to create archive table: %v", err)
	}

	rows := make([]map[string]interface{}, 0, ds.RowCount())
	for i := 0; i < ds.RowCount(); i++ {
		row := make(map[string]interface{}, len(schema.Columns))
		for _, col := range ds.Columns() {
			switch col.Kind {
			case tabular.KindNumeric:
				row[sanitizeIdent(col.Name)] = col.Nums[i]
			case tabular.KindDatetime:
				row[sanitizeIdent(col.Name)] = col.Times[i]
			default:
				row[sanitizeIdent(col.Name)] = col.Texts[i]
			}
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := db.WithContext(ctx).Table(table).CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to insert archive rows: %v", err)
		}
	}

	log.Printf("Store -> archived dataset %q (%d rows) into %s", ds.Name, ds.RowCount(), table)
	return nil
}

// Load reads an archived dataset back into memory and re-normalizes it
func (m *Manager) Load(ctx context.Context, db *gorm.DB, name string) (*tabular.Dataset, error) {
	table := tableName(name)

	var rows []map[string]interface{}
	if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load archive table %s: %v", table, err)
	}

	ds, err := datasetFromRows(name, rows)
	if err != nil {
		return nil, err
	}
	return ds.Normalize(), nil
}

func tableName(dataset string) string {
	return tablePrefix + sanitizeIdent(dataset)
}

// sanitizeIdent restricts an identifier to [a-z0-9_] before it is
// interpolated into DDL or insert statements. Normalized headers may still
// carry punctuation, ex: "price($)".
func sanitizeIdent(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(name))
}

func datasetFromRows(name string, rows []map[string]interface{}) (*tabular.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("archive for dataset %q is empty", name)
	}

	names := make([]string, 0, len(rows[0]))
	for colName := range rows[0] {
		names = append(names, colName)
	}
	sort.Strings(names)

	columns := make([]*tabular.Column, 0, len(names))
	for _, colName := range names {
		columns = append(columns, columnFromRows(colName, rows))
	}
	return tabular.NewDataset(name, columns)
}

func columnFromRows(colName string, rows []map[string]interface{}) *tabular.Column {
	switch rows[0][colName].(type) {
	case float64, float32, int64, int32, int:
		nums := make([]float64, len(rows))
		for i, row := range rows {
			nums[i] = toFloat(row[colName])
		}
		return &tabular.Column{Name: colName, Kind: tabular.KindNumeric, Nums: nums}
	case time.Time:
		times := make([]time.Time, len(rows))
		for i, row := range rows {
			if t, ok := row[colName].(time.Time); ok {
				times[i] = t
			}
		}
		return &tabular.Column{Name: colName, Kind: tabular.KindDatetime, Times: times}
	default:
		texts := make([]string, len(rows))
		for i, row := range rows {
			texts[i] = fmt.Sprintf("%v", row[colName])
		}
		return &tabular.Column{Name: colName, Kind: tabular.KindText, Texts: texts}
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
