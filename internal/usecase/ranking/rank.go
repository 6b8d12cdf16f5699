package ranking

import (
	"sort"

	"github.com/kailas-cloud/newsrank/internal/domain"
	domrank "github.com/kailas-cloud/newsrank/internal/domain/ranking"
)

// rank orders scored candidates and keeps the top limit.
// Ties break on newer created_at, then guid ascending.
func rank(items []scored, limit int) ([]domrank.Result, error) {
	if limit < domrank.MinLimit || limit > domrank.MaxLimit {
		return nil, domain.NewConfigurationError("limit", "must be between %d and %d, got %d",
			domrank.MinLimit, domrank.MaxLimit, limit)
	}

	sorted := make([]scored, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if a.final != b.final {
			return a.final > b.final
		}
		if !a.doc.CreatedAt().Equal(b.doc.CreatedAt()) {
			return a.doc.CreatedAt().After(b.doc.CreatedAt())
		}
		return a.doc.GUID() < b.doc.GUID()
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	results := make([]domrank.Result, 0, len(sorted))
	for i := range sorted {
		s := &sorted[i]
		results = append(results, domrank.Result{
			DocumentGUID: s.doc.GUID(),
			FinalScore:   s.final,
			Reasons:      s.reasons,
			Rank:         i + 1,
			CreatedAt:    s.doc.CreatedAt(),
			Breakdown:    s.breakdown,
		})
	}
	return results, nil
}
