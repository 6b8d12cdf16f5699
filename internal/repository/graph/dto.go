package graph

import (
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/document"
)

// decodeDocument converts a Cypher record into a domain Document.
// created_at is stored as epoch seconds; a missing value yields the zero time.
func decodeDocument(row map[string]any) (document.Document, error) {
	var createdAt time.Time
	if row["created_at"] != nil {
		createdAt = time.Unix(asInt64(row["created_at"]), 0).UTC()
	}
	return document.New(document.Fields{
		GUID:        asString(row["guid"]),
		ImpactScore: int(asInt64(row["impact_score"])),
		Tier:        asString(row["tier"]),
		CreatedAt:   createdAt,
		GroupGUID:   asString(row["group_guid"]),
		Instruments: asStrings(row["instruments"]),
		Themes:      asStrings(row["themes"]),
		SourceTrust: asFloat(row["source_trust"]),
	})
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// asStrings accepts the []any lists the driver returns as well as []string.
func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
