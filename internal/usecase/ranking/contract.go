package ranking

import (
	"context"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	"github.com/kailas-cloud/newsrank/internal/domain/filter"
)

// DocumentStore reads documents and instrument metadata. Every document read is scoped.
type DocumentStore interface {
	RecentDocuments(ctx context.Context, scope access.Scope, since time.Time) ([]document.Document, error)
	FetchDocumentsAffecting(
		ctx context.Context, tickers []string, scope access.Scope, since time.Time,
	) ([]document.Document, error)
	InstrumentIndustries(ctx context.Context, tickers []string) (map[string]string, error)
}

// RelationshipStore walks instrument relationship edges.
type RelationshipStore interface {
	TraverseRelationshipHops(ctx context.Context, tickers []string, hopTypes []channel.HopType) ([]channel.Hop, error)
}

// VectorMatch is a single nearest-neighbor hit.
type VectorMatch struct {
	GUID       string
	Similarity float64
}

// VectorStore runs nearest-neighbor search with a metadata pre-filter.
type VectorStore interface {
	NearestNeighbors(ctx context.Context, embedding []float32, k int, f filter.Expression) ([]VectorMatch, error)
}

// ProfileProvider loads client profiles.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, clientGUID string) (client.Profile, error)
}
