package client

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// weightTolerance absorbs float rounding in stored holding weights.
const weightTolerance = 1e-9

// Profile is a client's investment context (immutable value object).
type Profile struct {
	clientGUID         string
	groupGUID          string
	holdings           map[string]float64
	watchlist          []string
	benchmark          string
	mandateThemes      []string
	mandateEmbedding   []float32
	impactThreshold    int
	esgConstrained     bool
	excludedIndustries map[string]struct{}
}

// Fields carries raw profile attributes from the provider.
type Fields struct {
	ClientGUID         string
	GroupGUID          string
	Holdings           map[string]float64
	Watchlist          []string
	Benchmark          string
	MandateThemes      []string
	MandateEmbedding   []float32
	ImpactThreshold    int
	ESGConstrained     bool
	ExcludedIndustries []string
}

// New validates and creates a Profile. The benchmark ticker joins the watchlist.
func New(f Fields) (Profile, error) {
	clientGUID := strings.TrimSpace(f.ClientGUID)
	if clientGUID == "" {
		return Profile{}, fmt.Errorf("client guid is required")
	}
	if f.ImpactThreshold < 0 || f.ImpactThreshold > document.MaxImpactScore {
		return Profile{}, fmt.Errorf("impact threshold %d out of range [0,%d]",
			f.ImpactThreshold, document.MaxImpactScore)
	}

	holdings := make(map[string]float64, len(f.Holdings))
	var total float64
	for ticker, w := range f.Holdings {
		t := document.NormalizeTicker(ticker)
		if t == "" {
			continue
		}
		if math.IsNaN(w) || w < 0 || w > 1 {
			return Profile{}, fmt.Errorf("holding %s weight %v out of range [0,1]", t, w)
		}
		holdings[t] += w
		total += w
	}
	if total > 1+weightTolerance {
		return Profile{}, fmt.Errorf("holding weights sum to %v, exceeds 1.0", total)
	}

	benchmark := document.NormalizeTicker(f.Benchmark)
	watch := append([]string{}, f.Watchlist...)
	if benchmark != "" {
		watch = append(watch, benchmark)
	}

	excluded := make(map[string]struct{}, len(f.ExcludedIndustries))
	for _, ind := range f.ExcludedIndustries {
		if n := NormalizeIndustry(ind); n != "" {
			excluded[n] = struct{}{}
		}
	}

	var emb []float32
	if len(f.MandateEmbedding) > 0 {
		emb = make([]float32, len(f.MandateEmbedding))
		copy(emb, f.MandateEmbedding)
	}

	return Profile{
		clientGUID:         clientGUID,
		groupGUID:          strings.TrimSpace(f.GroupGUID),
		holdings:           holdings,
		watchlist:          uniqueSorted(watch, document.NormalizeTicker),
		benchmark:          benchmark,
		mandateThemes:      uniqueSorted(f.MandateThemes, document.NormalizeTheme),
		mandateEmbedding:   emb,
		impactThreshold:    f.ImpactThreshold,
		esgConstrained:     f.ESGConstrained,
		excludedIndustries: excluded,
	}, nil
}

// ClientGUID returns the client identifier.
func (p *Profile) ClientGUID() string { return p.clientGUID }

// GroupGUID returns the client's own access group.
func (p *Profile) GroupGUID() string { return p.groupGUID }

// HoldingWeight returns the weight of a held ticker and whether it is held.
func (p *Profile) HoldingWeight(ticker string) (float64, bool) {
	w, ok := p.holdings[ticker]
	return w, ok
}

// HeldTickers returns held tickers, sorted.
func (p *Profile) HeldTickers() []string {
	out := make([]string, 0, len(p.holdings))
	for t := range p.holdings {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Watchlist returns watched tickers including the benchmark, sorted.
func (p *Profile) Watchlist() []string { return p.watchlist }

// IsWatched reports whether a ticker is on the watchlist (benchmark included).
func (p *Profile) IsWatched(ticker string) bool {
	i := sort.SearchStrings(p.watchlist, ticker)
	return i < len(p.watchlist) && p.watchlist[i] == ticker
}

// Benchmark returns the benchmark ticker. Empty when unset.
func (p *Profile) Benchmark() string { return p.benchmark }

// MandateThemes returns the client's thematic mandate, sorted.
func (p *Profile) MandateThemes() []string { return p.mandateThemes }

// HasTheme reports whether a theme is part of the mandate.
func (p *Profile) HasTheme(theme string) bool {
	i := sort.SearchStrings(p.mandateThemes, theme)
	return i < len(p.mandateThemes) && p.mandateThemes[i] == theme
}

// MandateEmbedding returns the mandate vector, nil when the client has none.
func (p *Profile) MandateEmbedding() []float32 { return p.mandateEmbedding }

// ImpactThreshold returns the default minimum impact score.
func (p *Profile) ImpactThreshold() int { return p.impactThreshold }

// ESGConstrained reports whether industry exclusions apply.
func (p *Profile) ESGConstrained() bool { return p.esgConstrained }

// Excludes reports whether an industry is excluded for this client.
func (p *Profile) Excludes(industry string) bool {
	_, ok := p.excludedIndustries[NormalizeIndustry(industry)]
	return ok
}

// Fields returns a copy of the profile's inputs; New(p.Fields()) rebuilds an equal profile.
func (p *Profile) Fields() Fields {
	holdings := make(map[string]float64, len(p.holdings))
	for t, w := range p.holdings {
		holdings[t] = w
	}
	excluded := make([]string, 0, len(p.excludedIndustries))
	for ind := range p.excludedIndustries {
		excluded = append(excluded, ind)
	}
	sort.Strings(excluded)
	return Fields{
		ClientGUID:         p.clientGUID,
		GroupGUID:          p.groupGUID,
		Holdings:           holdings,
		Watchlist:          append([]string(nil), p.watchlist...),
		Benchmark:          p.benchmark,
		MandateThemes:      append([]string(nil), p.mandateThemes...),
		MandateEmbedding:   append([]float32(nil), p.mandateEmbedding...),
		ImpactThreshold:    p.impactThreshold,
		ESGConstrained:     p.esgConstrained,
		ExcludedIndustries: excluded,
	}
}

// SeedTickers returns holdings, watchlist and benchmark as one sorted set.
func (p *Profile) SeedTickers() []string {
	return uniqueSorted(append(p.HeldTickers(), p.watchlist...), document.NormalizeTicker)
}

// NormalizeIndustry canonicalizes an industry label.
func NormalizeIndustry(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func uniqueSorted(in []string, norm func(string) string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		n := norm(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
