package lookup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// Holding is one instrument position of a client.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Service serves scoped point reads next to ranking.
type Service struct {
	graph    Graph
	profiles ProfileProvider
}

// New creates a lookup service.
func New(g Graph, profiles ProfileProvider) *Service {
	return &Service{graph: g, profiles: profiles}
}

// Document returns one document visible to scope.
func (s *Service) Document(ctx context.Context, scope access.Scope, guid string) (document.Document, error) {
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return document.Document{}, domain.NewConfigurationError("document_guid", "is required")
	}
	doc, err := s.graph.FetchDocument(ctx, scope, guid)
	if err != nil {
		return document.Document{}, fmt.Errorf("fetch document: %w", err)
	}
	return doc, nil
}

// Holdings returns a client's holdings sorted by ticker.
// Clients whose group is outside scope are reported as not found.
func (s *Service) Holdings(ctx context.Context, scope access.Scope, clientGUID string) ([]Holding, error) {
	clientGUID = strings.TrimSpace(clientGUID)
	if clientGUID == "" {
		return nil, domain.NewConfigurationError("client_guid", "is required")
	}

	profile, err := s.profiles.FetchProfile(ctx, clientGUID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if !scope.Allows(profile.GroupGUID()) {
		return nil, fmt.Errorf("%s: %w", clientGUID, domain.ErrProfileNotFound)
	}

	weights, err := s.graph.TraverseHoldings(ctx, clientGUID)
	if err != nil {
		return nil, fmt.Errorf("traverse holdings: %w", err)
	}

	out := make([]Holding, 0, len(weights))
	for ticker, w := range weights {
		out = append(out, Holding{Ticker: ticker, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}
