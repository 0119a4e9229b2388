package services

import (
	"context"
	"datachat-ai/config"
	"datachat-ai/pkg/datastore"
	"datachat-ai/pkg/embedder"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitEmbedder maps every text onto a fixed-dimension vector derived from
// its length, enough to build real indexes without a provider
type unitEmbedder struct{}

func (unitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (unitEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1})
	}
	return vectors, nil
}

var _ embedder.Embedder = unitEmbedder{}

const salesCSV = "Product,Store ID,Liters\nMilk,STR001,5\nMilk,STR002,0\nBread,STR001,2\n"

func newTestDatasetService() DatasetService {
	config.Env.ArchiveEnabled = false
	return NewDatasetService(datastore.NewManager(), unitEmbedder{})
}

func TestUploadNormalizesDataset(t *testing.T) {
	svc := newTestDatasetService()

	resp, status, err := svc.Upload(context.Background(), "Sales Data.csv", strings.NewReader(salesCSV), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 200, status)
	assert.Equal(t, "sales_data", resp.Name)
	assert.Equal(t, 3, resp.RowCount)
	assert.False(t, resp.Archived)

	names := make([]string, 0, len(resp.Columns))
	for _, col := range resp.Columns {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"product", "store_id", "liters"}, names)

	ds, err := svc.Get("sales_data")
	require.NoError(t, err)
	assert.Equal(t, "milk", ds.Column("product").Texts[0])
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	svc := newTestDatasetService()

	_, status, err := svc.Upload(context.Background(), "sales.parquet", strings.NewReader(salesCSV), nil)
	assert.Error(t, err)
	assert.EqualValues(t, 400, status)
}

func TestGetUnknownDataset(t *testing.T) {
	svc := newTestDatasetService()

	_, err := svc.Get("nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteDataset(t *testing.T) {
	svc := newTestDatasetService()

	_, _, err := svc.Upload(context.Background(), "sales.csv", strings.NewReader(salesCSV), nil)
	require.NoError(t, err)

	status, err := svc.Delete("sales")
	require.NoError(t, err)
	assert.EqualValues(t, 200, status)

	_, err = svc.Get("sales")
	assert.Error(t, err)
}

func TestIndexIsBuiltOnceAndCached(t *testing.T) {
	svc := newTestDatasetService()

	_, _, err := svc.Upload(context.Background(), "sales.csv", strings.NewReader(salesCSV), nil)
	require.NoError(t, err)

	idx, err := svc.Index(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Size())

	again, err := svc.Index(context.Background(), "sales")
	require.NoError(t, err)
	assert.Same(t, idx, again)
}

func TestListDatasetsSorted(t *testing.T) {
	svc := newTestDatasetService()

	_, _, err := svc.Upload(context.Background(), "zebra.csv", strings.NewReader(salesCSV), nil)
	require.NoError(t, err)
	_, _, err = svc.Upload(context.Background(), "alpha.csv", strings.NewReader(salesCSV), nil)
	require.NoError(t, err)

	resp, _, err := svc.List()
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "alpha", resp.Datasets[0].Name)
	assert.Equal(t, "zebra", resp.Datasets[1].Name)
}
