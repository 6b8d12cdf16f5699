package ranking

import (
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// ESGPolicy excludes documents touching banned industries.
// Industries maps ticker to industry; a ticker without an entry fails closed.
type ESGPolicy struct {
	Industries map[string]string
	Excludes   func(industry string) bool
}

// Criteria drive the eligibility filter.
type Criteria struct {
	Scope     access.Scope
	Since     time.Time
	MinImpact int
	AllowTier func(document.Tier) bool
	// ESG is nil for unconstrained clients.
	ESG *ESGPolicy
}

// Filter keeps the documents a request may see. Missing group or creation
// time excludes a document.
func Filter(docs []document.Document, c Criteria) []document.Document {
	out := make([]document.Document, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if !c.Scope.Allows(d.GroupGUID()) {
			continue
		}
		if d.CreatedAt().IsZero() || d.CreatedAt().Before(c.Since) {
			continue
		}
		if d.ImpactScore() < c.MinImpact {
			continue
		}
		if c.AllowTier != nil && !c.AllowTier(d.Tier()) {
			continue
		}
		if c.ESG != nil && !c.ESG.permits(d) {
			continue
		}
		out = append(out, *d)
	}
	return out
}

func (p *ESGPolicy) permits(d *document.Document) bool {
	for _, ticker := range d.Instruments() {
		industry, ok := p.Industries[ticker]
		if !ok || industry == "" {
			return false
		}
		if p.Excludes != nil && p.Excludes(industry) {
			return false
		}
	}
	return true
}
