package retriever

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"datachat-ai/pkg/embedder"
)

// Index is an exact nearest-neighbor structure over document embeddings
// under Euclidean distance. Immutable after construction; rebuilt wholesale
// when the underlying documents change.
type Index struct {
	embedder  embedder.Embedder
	documents []Document
	vectors   [][]float32
	dimension int
}

// Match is one retrieved document with its distance to the query
type Match struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// BuildIndex embeds every document once and builds the flat index over the
// result. A failed embedding call aborts the build.
func BuildIndex(ctx context.Context, emb embedder.Embedder, documents []Document) (*Index, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("cannot build an index over zero documents")
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Text
	}

	vectors, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	dimension := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dimension {
			return nil, fmt.Errorf("document %d embedding has %d dimensions, expected %d", documents[i].ID, len(vec), dimension)
		}
	}

	log.Printf("BuildIndex -> indexed %d documents (%d dimensions)", len(documents), dimension)
	return &Index{
		embedder:  emb,
		documents: documents,
		vectors:   vectors,
		dimension: dimension,
	}, nil
}

// Size returns the number of indexed documents
func (idx *Index) Size() int {
	return len(idx.documents)
}

// Search embeds the query and returns the k closest documents by ascending
// Euclidean distance. Ties break by original document order, so repeated
// searches over a fixed index are deterministic.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(queryVec) != idx.dimension {
		return nil, fmt.Errorf("query embedding has %d dimensions, index has %d", len(queryVec), idx.dimension)
	}

	matches := make([]Match, len(idx.documents))
	for i, vec := range idx.vectors {
		matches[i] = Match{
			Document: idx.documents[i],
			Distance: math.Sqrt(squaredL2(queryVec, vec)),
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
