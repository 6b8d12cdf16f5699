package document

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxImpactScore is the upper bound of the impact score scale.
const MaxImpactScore = 100

// Document is a news item as seen by the ranking engine (immutable value object).
// Tagging happens at ingest; the ranking engine only reads it.
type Document struct {
	guid        string
	impactScore int
	tier        Tier
	createdAt   time.Time
	groupGUID   string
	instruments []string
	themes      []string
	sourceTrust float64
}

// Fields carries raw document attributes from storage.
type Fields struct {
	GUID        string
	ImpactScore int
	Tier        string
	CreatedAt   time.Time
	GroupGUID   string
	Instruments []string
	Themes      []string
	SourceTrust float64
}

// New validates and creates a Document.
// An empty tier is derived from the impact score; an unknown one is rejected.
func New(f Fields) (Document, error) {
	guid := strings.TrimSpace(f.GUID)
	if guid == "" {
		return Document{}, fmt.Errorf("document guid is required")
	}
	if f.ImpactScore < 0 || f.ImpactScore > MaxImpactScore {
		return Document{}, fmt.Errorf("impact score %d out of range [0,%d]", f.ImpactScore, MaxImpactScore)
	}

	tier := TierFromScore(f.ImpactScore)
	if strings.TrimSpace(f.Tier) != "" {
		parsed, err := ParseTier(f.Tier)
		if err != nil {
			return Document{}, err
		}
		tier = parsed
	}

	return Document{
		guid:        guid,
		impactScore: f.ImpactScore,
		tier:        tier,
		createdAt:   f.CreatedAt.UTC(),
		groupGUID:   strings.TrimSpace(f.GroupGUID),
		instruments: normalizeSet(f.Instruments, NormalizeTicker),
		themes:      normalizeSet(f.Themes, NormalizeTheme),
		sourceTrust: f.SourceTrust,
	}, nil
}

// GUID returns the document identifier.
func (d *Document) GUID() string { return d.guid }

// ImpactScore returns the 0-100 impact score.
func (d *Document) ImpactScore() int { return d.impactScore }

// Tier returns the impact tier.
func (d *Document) Tier() Tier { return d.tier }

// CreatedAt returns the creation instant (UTC). Zero when unknown.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// GroupGUID returns the access-control group. Empty when unknown.
func (d *Document) GroupGUID() string { return d.groupGUID }

// Instruments returns the affected tickers, sorted.
func (d *Document) Instruments() []string { return d.instruments }

// Themes returns the thematic tags, sorted.
func (d *Document) Themes() []string { return d.themes }

// SourceTrust returns the source trust score.
func (d *Document) SourceTrust() float64 { return d.sourceTrust }

// NormalizeTicker canonicalizes a ticker symbol.
func NormalizeTicker(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// NormalizeTheme canonicalizes a thematic tag.
func NormalizeTheme(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// normalizeSet returns a sorted, de-duplicated copy without empty entries.
func normalizeSet(in []string, norm func(string) string) []string {
	if len(in) == 0 {
		return nil
	}
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
