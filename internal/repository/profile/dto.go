package profile

import (
	"fmt"

	"github.com/kailas-cloud/newsrank/internal/domain/client"
)

// profileRow mirrors the columns of profileQuery.
type profileRow struct {
	GUID               string
	GroupGUID          *string
	Benchmark          *string
	MandateThemes      []string
	MandateEmbedding   []float32
	ImpactThreshold    int32
	ESGConstrained     bool
	ExcludedIndustries []string
	HoldingTickers     []string
	HoldingWeights     []float64
	Watchlist          []string
}

func (p *profileRow) dest() []any {
	return []any{
		&p.GUID,
		&p.GroupGUID,
		&p.Benchmark,
		&p.MandateThemes,
		&p.MandateEmbedding,
		&p.ImpactThreshold,
		&p.ESGConstrained,
		&p.ExcludedIndustries,
		&p.HoldingTickers,
		&p.HoldingWeights,
		&p.Watchlist,
	}
}

func (p *profileRow) toProfile() (client.Profile, error) {
	if len(p.HoldingTickers) != len(p.HoldingWeights) {
		return client.Profile{}, fmt.Errorf("profile %s: %d holding tickers but %d weights",
			p.GUID, len(p.HoldingTickers), len(p.HoldingWeights))
	}
	holdings := make(map[string]float64, len(p.HoldingTickers))
	for i, ticker := range p.HoldingTickers {
		holdings[ticker] += p.HoldingWeights[i]
	}

	profile, err := client.New(client.Fields{
		ClientGUID:         p.GUID,
		GroupGUID:          deref(p.GroupGUID),
		Holdings:           holdings,
		Watchlist:          p.Watchlist,
		Benchmark:          deref(p.Benchmark),
		MandateThemes:      p.MandateThemes,
		MandateEmbedding:   p.MandateEmbedding,
		ImpactThreshold:    int(p.ImpactThreshold),
		ESGConstrained:     p.ESGConstrained,
		ExcludedIndustries: p.ExcludedIndustries,
	})
	if err != nil {
		return client.Profile{}, fmt.Errorf("profile %s: %w", p.GUID, err)
	}
	return profile, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
