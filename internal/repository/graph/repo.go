package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/access"
	"github.com/kailas-cloud/newsrank/internal/domain/channel"
	"github.com/kailas-cloud/newsrank/internal/domain/document"
	"github.com/kailas-cloud/newsrank/internal/logger"
)

// reader is the consumer interface for the graph database (ISP).
type reader interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Repo implements the ranking DocumentStore and RelationshipStore over the news graph:
//
//	(:Document)-[:AFFECTS]->(:Instrument)-[:COMPETITOR|SUPPLY_CHAIN|PEER]-(:Instrument)
//	(:Client)-[:HOLDS {weight}]->(:Instrument)
type Repo struct {
	db reader
}

// New creates a graph repository.
func New(r reader) *Repo {
	return &Repo{db: r}
}

const documentProjection = `
RETURN d.guid AS guid,
       d.impact_score AS impact_score,
       d.tier AS tier,
       d.created_at AS created_at,
       d.group_guid AS group_guid,
       d.source_trust AS source_trust,
       d.themes AS themes,
       [(d)-[:AFFECTS]->(i:Instrument) | i.ticker] AS instruments
ORDER BY guid`

const recentDocumentsQuery = `
MATCH (d:Document)
WHERE d.group_guid IN $groups AND d.created_at >= $since` + documentProjection

const documentsAffectingQuery = `
MATCH (d:Document)-[:AFFECTS]->(i:Instrument)
WHERE i.ticker IN $tickers AND d.group_guid IN $groups AND d.created_at >= $since
WITH DISTINCT d` + documentProjection

const documentByGUIDQuery = `
MATCH (d:Document {guid: $guid})
WHERE d.group_guid IN $groups` + documentProjection

const instrumentIndustriesQuery = `
MATCH (i:Instrument)
WHERE i.ticker IN $tickers AND i.industry IS NOT NULL
RETURN i.ticker AS ticker, i.industry AS industry`

const relationshipHopsQuery = `
MATCH (s:Instrument)-[r]-(t:Instrument)
WHERE s.ticker IN $tickers AND type(r) IN $types
RETURN DISTINCT t.ticker AS ticker, type(r) AS type
ORDER BY ticker, type`

const holdingsQuery = `
MATCH (:Client {guid: $client})-[h:HOLDS]->(i:Instrument)
RETURN i.ticker AS ticker, h.weight AS weight
ORDER BY ticker`

// RecentDocuments returns every document in scope created at or after since.
func (r *Repo) RecentDocuments(ctx context.Context, scope access.Scope, since time.Time) ([]document.Document, error) {
	if scope.IsEmpty() {
		return nil, nil
	}
	rows, err := r.db.Read(ctx, recentDocumentsQuery, map[string]any{
		"groups": scope.Groups(),
		"since":  since.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("recent documents: %w", err)
	}
	return decodeDocuments(ctx, rows, scope), nil
}

// FetchDocumentsAffecting returns in-scope documents linked to any of tickers.
func (r *Repo) FetchDocumentsAffecting(
	ctx context.Context, tickers []string, scope access.Scope, since time.Time,
) ([]document.Document, error) {
	if scope.IsEmpty() || len(tickers) == 0 {
		return nil, nil
	}
	rows, err := r.db.Read(ctx, documentsAffectingQuery, map[string]any{
		"tickers": tickers,
		"groups":  scope.Groups(),
		"since":   since.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("documents affecting %d tickers: %w", len(tickers), err)
	}
	return decodeDocuments(ctx, rows, scope), nil
}

// FetchDocument returns a single in-scope document.
// Documents outside the scope are reported as not found.
func (r *Repo) FetchDocument(ctx context.Context, scope access.Scope, guid string) (document.Document, error) {
	if scope.IsEmpty() {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	rows, err := r.db.Read(ctx, documentByGUIDQuery, map[string]any{
		"guid":   guid,
		"groups": scope.Groups(),
	})
	if err != nil {
		return document.Document{}, fmt.Errorf("fetch document %s: %w", guid, err)
	}
	docs := decodeDocuments(ctx, rows, scope)
	if len(docs) == 0 {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	return docs[0], nil
}

// InstrumentIndustries maps tickers to their industry classification.
// Tickers without a classification are absent from the result.
func (r *Repo) InstrumentIndustries(ctx context.Context, tickers []string) (map[string]string, error) {
	out := make(map[string]string, len(tickers))
	if len(tickers) == 0 {
		return out, nil
	}
	rows, err := r.db.Read(ctx, instrumentIndustriesQuery, map[string]any{"tickers": tickers})
	if err != nil {
		return nil, fmt.Errorf("instrument industries: %w", err)
	}
	for _, row := range rows {
		ticker := document.NormalizeTicker(asString(row["ticker"]))
		industry := asString(row["industry"])
		if ticker == "" || industry == "" {
			continue
		}
		out[ticker] = industry
	}
	return out, nil
}

// TraverseRelationshipHops returns instruments one edge away from tickers over the given hop types.
func (r *Repo) TraverseRelationshipHops(
	ctx context.Context, tickers []string, hopTypes []channel.HopType,
) ([]channel.Hop, error) {
	if len(tickers) == 0 || len(hopTypes) == 0 {
		return nil, nil
	}
	types := make([]string, len(hopTypes))
	for i, h := range hopTypes {
		types[i] = relationshipType(h)
	}
	rows, err := r.db.Read(ctx, relationshipHopsQuery, map[string]any{
		"tickers": tickers,
		"types":   types,
	})
	if err != nil {
		return nil, fmt.Errorf("relationship hops: %w", err)
	}

	hops := make([]channel.Hop, 0, len(rows))
	for _, row := range rows {
		h := channel.HopType(strings.ToLower(asString(row["type"])))
		ticker := document.NormalizeTicker(asString(row["ticker"]))
		if !h.IsValid() || ticker == "" {
			continue
		}
		hops = append(hops, channel.Hop{Ticker: ticker, Type: h})
	}
	return hops, nil
}

// TraverseHoldings returns the instruments a client holds with their portfolio weights.
func (r *Repo) TraverseHoldings(ctx context.Context, clientGUID string) (map[string]float64, error) {
	rows, err := r.db.Read(ctx, holdingsQuery, map[string]any{"client": clientGUID})
	if err != nil {
		return nil, fmt.Errorf("holdings of %s: %w", clientGUID, err)
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		ticker := document.NormalizeTicker(asString(row["ticker"]))
		if ticker == "" {
			continue
		}
		out[ticker] = asFloat(row["weight"])
	}
	return out, nil
}

func relationshipType(h channel.HopType) string {
	return strings.ToUpper(string(h))
}

// decodeDocuments skips malformed records and re-checks the scope on every row.
func decodeDocuments(ctx context.Context, rows []map[string]any, scope access.Scope) []document.Document {
	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeDocument(row)
		if err != nil {
			logger.FromContext(ctx).Warn("Skipping malformed document record",
				zap.Any("guid", row["guid"]), zap.Error(err))
			continue
		}
		if !scope.Allows(doc.GroupGUID()) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
