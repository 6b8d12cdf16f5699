package lookup

import (
	"context"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// Graph reads single documents and client holdings from the graph store.
type Graph interface {
	FetchDocument(ctx context.Context, scope access.Scope, guid string) (document.Document, error)
	TraverseHoldings(ctx context.Context, clientGUID string) (map[string]float64, error)
}

// ProfileProvider loads client profiles.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, clientGUID string) (client.Profile, error)
}
