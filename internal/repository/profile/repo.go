package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/newsrank/internal/db"
	"github.com/kailas-cloud/newsrank/internal/domain"
	"github.com/kailas-cloud/newsrank/internal/domain/client"
)

// querier is the consumer interface for the profile database (ISP).
// *pgxpool.Pool satisfies it.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements ranking.ProfileProvider over Postgres.
type Repo struct {
	db querier
}

// New creates a profile repository.
func New(q querier) *Repo {
	return &Repo{db: q}
}

const profileQuery = `
SELECT c.guid,
       c.group_guid,
       c.benchmark,
       c.mandate_themes,
       c.mandate_embedding,
       c.impact_threshold,
       c.esg_constrained,
       c.excluded_industries,
       COALESCE((SELECT array_agg(h.ticker ORDER BY h.ticker)
                   FROM client_holdings h WHERE h.client_guid = c.guid), '{}') AS holding_tickers,
       COALESCE((SELECT array_agg(h.weight ORDER BY h.ticker)
                   FROM client_holdings h WHERE h.client_guid = c.guid), '{}') AS holding_weights,
       COALESCE((SELECT array_agg(w.ticker ORDER BY w.ticker)
                   FROM client_watchlist w WHERE w.client_guid = c.guid), '{}') AS watchlist
  FROM clients c
 WHERE c.guid = $1`

// FetchProfile loads one client profile with holdings and watchlist.
func (r *Repo) FetchProfile(ctx context.Context, clientGUID string) (client.Profile, error) {
	var row profileRow
	err := r.db.QueryRow(ctx, profileQuery, clientGUID).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Profile{}, fmt.Errorf("%s: %w", clientGUID, domain.ErrProfileNotFound)
		}
		return client.Profile{}, &db.Error{Op: db.OpSQL, Err: fmt.Errorf("fetch profile %s: %w", clientGUID, err)}
	}
	return row.toProfile()
}
