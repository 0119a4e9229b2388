package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-ai/pkg/embedder"
	"datachat-ai/pkg/tabular"
)

// fakeEmbedder assigns fixed vectors by text so distances are predictable
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, embedder.ErrEmbedding
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func fourDocIndex(t *testing.T) *Index {
	t.Helper()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"doc one":   {10, 0},
		"doc two":   {1, 1},
		"doc three": {5, 5},
		"doc four":  {0, 10},
		"query":     {1, 2},
	}}
	idx, err := BuildIndex(context.Background(), emb, []Document{
		{ID: 0, Text: "doc one"},
		{ID: 1, Text: "doc two"},
		{ID: 2, Text: "doc three"},
		{ID: 3, Text: "doc four"},
	})
	require.NoError(t, err)
	return idx
}

func TestSearchReturnsClosestDocument(t *testing.T) {
	idx := fourDocIndex(t)

	matches, err := idx.Search(context.Background(), "query", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Document.ID)
}

func TestSearchIsDeterministic(t *testing.T) {
	idx := fourDocIndex(t)

	first, err := idx.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := idx.Search(context.Background(), "query", 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchOrdersByAscendingDistance(t *testing.T) {
	idx := fourDocIndex(t)

	matches, err := idx.Search(context.Background(), "query", 4)
	require.NoError(t, err)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
}

func TestSearchBreaksTiesByDocumentOrder(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"q": {0, 0},
	}}
	idx, err := BuildIndex(context.Background(), emb, []Document{
		{ID: 0, Text: "a"},
		{ID: 1, Text: "b"},
	})
	require.NoError(t, err)

	matches, err := idx.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, matches[0].Document.ID)
	assert.Equal(t, 1, matches[1].Document.ID)
}

func TestSearchAbortsOnEmbeddingFailure(t *testing.T) {
	idx := fourDocIndex(t)
	idx.embedder = &fakeEmbedder{fail: true}

	_, err := idx.Search(context.Background(), "query", 1)
	assert.ErrorIs(t, err, embedder.ErrEmbedding)
}

func TestBuildIndexRejectsEmptyDocuments(t *testing.T) {
	_, err := BuildIndex(context.Background(), &fakeEmbedder{}, nil)
	assert.Error(t, err)
}

func TestRenderDocuments(t *testing.T) {
	csv := "Product,Quantity\nmilk,5\n"
	ds, err := tabular.Ingest("sales", strings.NewReader(csv), tabular.FormatCSV, tabular.IngestOptions{})
	require.NoError(t, err)

	docs := RenderDocuments(ds)
	require.Len(t, docs, 1)
	assert.Equal(t, "product: milk, quantity: 5", docs[0].Text)
}
