package services

import (
	"context"
	"datachat-ai/config"
	"datachat-ai/internal/apis/dtos"
	"datachat-ai/pkg/datastore"
	"datachat-ai/pkg/embedder"
	"datachat-ai/pkg/retriever"
	"datachat-ai/pkg/tabular"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
)

type DatasetService interface {
	Upload(ctx context.Context, filename string, reader io.Reader, declaredNumeric []string) (*dtos.DatasetResponse, uint32, error)
	Get(name string) (*tabular.Dataset, error)
	List() (*dtos.DatasetListResponse, uint32, error)
	Delete(name string) (uint32, error)
	Index(ctx context.Context, name string) (*retriever.Index, error)
}

type datasetService struct {
	mu       sync.RWMutex
	datasets map[string]*tabular.Dataset
	archived map[string]bool
	indexes  map[string]*retriever.Index

	embedder embedder.Embedder

	// archival is best effort, nil when no archive database is configured
	store      *datastore.Manager
	archiveDB  *gorm.DB
	archiveDrv datastore.Driver
}

func NewDatasetService(store *datastore.Manager, emb embedder.Embedder) DatasetService {
	s := &datasetService{
		datasets: make(map[string]*tabular.Dataset),
		archived: make(map[string]bool),
		indexes:  make(map[string]*retriever.Index),
		embedder: emb,
		store:    store,
	}

	if config.Env.ArchiveEnabled && store != nil {
		db, driver, err := store.Connect(datastore.Config{
			Type:     config.Env.ArchiveType,
			Host:     config.Env.ArchiveHost,
			Port:     config.Env.ArchivePort,
			Username: config.Env.ArchiveUsername,
			Password: config.Env.ArchivePassword,
			Database: config.Env.ArchiveName,
		})
		if err != nil {
			log.Printf("NewDatasetService -> archive database unavailable: %v", err)
		} else {
			log.Printf("✨ Connected to archive database (%s)", config.Env.ArchiveType)
			s.archiveDB = db
			s.archiveDrv = driver
		}
	}

	return s
}

func (s *datasetService) Upload(ctx context.Context, filename string, reader io.Reader, declaredNumeric []string) (*dtos.DatasetResponse, uint32, error) {
	name, format, err := splitFilename(filename)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	ds, err := tabular.Ingest(name, reader, format, tabular.IngestOptions{DeclaredNumeric: declaredNumeric})
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to ingest %s: %v", filename, err)
	}
	ds.Normalize()

	archived := false
	if s.archiveDB != nil {
		if err := s.store.Store(ctx, s.archiveDB, s.archiveDrv, ds); err != nil {
			log.Printf("Upload -> failed to archive dataset %s: %v", ds.Name, err)
		} else {
			archived = true
		}
	}

	s.mu.Lock()
	s.datasets[ds.Name] = ds
	s.archived[ds.Name] = archived
	delete(s.indexes, ds.Name)
	s.mu.Unlock()

	log.Printf("Upload -> loaded dataset %s (%d rows, %d columns)", ds.Name, ds.RowCount(), len(ds.Columns()))
	resp := s.toResponse(ds, archived)
	return &resp, http.StatusOK, nil
}

func (s *datasetService) Get(name string) (*tabular.Dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[name]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	// Fall back to the archive when the dataset is not in memory,
	// ex: after a restart
	if s.archiveDB == nil {
		return nil, fmt.Errorf("dataset not found: %s", name)
	}
	ds, err := s.store.Load(context.Background(), s.archiveDB, name)
	if err != nil {
		return nil, fmt.Errorf("dataset not found: %s", name)
	}
	ds.Normalize()

	s.mu.Lock()
	s.datasets[name] = ds
	s.archived[name] = true
	s.mu.Unlock()

	log.Printf("Get -> restored dataset %s from archive", name)
	return ds, nil
}

func (s *datasetService) List() (*dtos.DatasetListResponse, uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := &dtos.DatasetListResponse{Datasets: make([]dtos.DatasetResponse, 0, len(names))}
	for _, name := range names {
		resp.Datasets = append(resp.Datasets, s.toResponse(s.datasets[name], s.archived[name]))
	}
	resp.Total = len(resp.Datasets)
	return resp, http.StatusOK, nil
}

func (s *datasetService) Delete(name string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[name]; !ok {
		return http.StatusNotFound, fmt.Errorf("dataset not found: %s", name)
	}
	delete(s.datasets, name)
	delete(s.archived, name)
	delete(s.indexes, name)
	return http.StatusOK, nil
}

// Index returns the document index for a dataset, building it on first use.
// Building embeds every row, so the result is cached for the dataset's
// lifetime.
func (s *datasetService) Index(ctx context.Context, name string) (*retriever.Index, error) {
	s.mu.RLock()
	idx, ok := s.indexes[name]
	s.mu.RUnlock()
	if ok {
		return idx, nil
	}

	ds, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	log.Printf("Index -> building document index for dataset %s (%d rows)", name, ds.RowCount())
	idx, err = retriever.BuildIndex(ctx, s.embedder, retriever.RenderDocuments(ds))
	if err != nil {
		return nil, fmt.Errorf("failed to build index for %s: %v", name, err)
	}

	s.mu.Lock()
	s.indexes[name] = idx
	s.mu.Unlock()
	return idx, nil
}

func (s *datasetService) toResponse(ds *tabular.Dataset, archived bool) dtos.DatasetResponse {
	schema := ds.Schema()
	columns := make([]dtos.ColumnInfo, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		columns = append(columns, dtos.ColumnInfo{Name: col.Name, Kind: string(col.Kind)})
	}
	return dtos.DatasetResponse{
		Name:     ds.Name,
		Columns:  columns,
		RowCount: ds.RowCount(),
		Archived: archived,
	}
}

func splitFilename(filename string) (name, format string, err error) {
	base := filename
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return "", "", tabular.ErrUnsupportedFormat
	}

	name = base[:dot]
	switch strings.ToLower(base[dot+1:]) {
	case "csv":
		format = tabular.FormatCSV
	case "xlsx":
		format = tabular.FormatXLSX
	default:
		return "", "", tabular.ErrUnsupportedFormat
	}
	return tabular.NormalizeColumnName(name), format, nil
}
