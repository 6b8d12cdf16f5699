package profilecache

import "github.com/kailas-cloud/newsrank/internal/domain/client"

// cacheEntry is the JSON form of a cached profile.
type cacheEntry struct {
	ClientGUID         string             `json:"client_guid"`
	GroupGUID          string             `json:"group_guid,omitempty"`
	Holdings           map[string]float64 `json:"holdings,omitempty"`
	Watchlist          []string           `json:"watchlist,omitempty"`
	Benchmark          string             `json:"benchmark,omitempty"`
	MandateThemes      []string           `json:"mandate_themes,omitempty"`
	MandateEmbedding   []float32          `json:"mandate_embedding,omitempty"`
	ImpactThreshold    int                `json:"impact_threshold"`
	ESGConstrained     bool               `json:"esg_constrained"`
	ExcludedIndustries []string           `json:"excluded_industries,omitempty"`
}

func newCacheEntry(p client.Profile) cacheEntry {
	f := p.Fields()
	return cacheEntry{
		ClientGUID:         f.ClientGUID,
		GroupGUID:          f.GroupGUID,
		Holdings:           f.Holdings,
		Watchlist:          f.Watchlist,
		Benchmark:          f.Benchmark,
		MandateThemes:      f.MandateThemes,
		MandateEmbedding:   f.MandateEmbedding,
		ImpactThreshold:    f.ImpactThreshold,
		ESGConstrained:     f.ESGConstrained,
		ExcludedIndustries: f.ExcludedIndustries,
	}
}

func (e cacheEntry) fields() client.Fields {
	return client.Fields{
		ClientGUID:         e.ClientGUID,
		GroupGUID:          e.GroupGUID,
		Holdings:           e.Holdings,
		Watchlist:          e.Watchlist,
		Benchmark:          e.Benchmark,
		MandateThemes:      e.MandateThemes,
		MandateEmbedding:   e.MandateEmbedding,
		ImpactThreshold:    e.ImpactThreshold,
		ESGConstrained:     e.ESGConstrained,
		ExcludedIndustries: e.ExcludedIndustries,
	}
}
