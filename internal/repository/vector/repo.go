package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/newsrank/internal/db"
	"github.com/kailas-cloud/newsrank/internal/domain/filter"
	"github.com/kailas-cloud/newsrank/internal/usecase/ranking"
)

const guidField = "guid"

// store is the consumer interface for vector search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements ranking.VectorStore over an FT index of document embeddings.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a vector repository. keyPrefix is stripped from hash keys
// when an entry carries no guid field.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// NearestNeighbors returns up to k documents closest to embedding that satisfy f.
func (r *Repo) NearestNeighbors(
	ctx context.Context, embedding []float32, k int, f filter.Expression,
) ([]ranking.VectorMatch, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Filters:      f,
		Vector:       embedding,
		K:            k,
		ReturnFields: []string{guidField},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	matches := make([]ranking.VectorMatch, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		guid := entry.Fields[guidField]
		if guid == "" {
			guid = strings.TrimPrefix(entry.Key, r.keyPrefix)
		}
		if guid == "" {
			continue
		}
		matches = append(matches, ranking.VectorMatch{GUID: guid, Similarity: entry.Score})
	}
	return matches, nil
}
