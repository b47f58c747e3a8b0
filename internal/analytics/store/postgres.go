package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/maison-counter/internal/analytics"
)

// PostgresSchema holds the append-only event tables written by the consumer.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS link_clicks (
	id          TEXT PRIMARY KEY,
	slug        TEXT NOT NULL,
	destination TEXT NOT NULL,
	click_count BIGINT NOT NULL,
	clicked_at  TIMESTAMPTZ NOT NULL,
	client_ip   TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	referrer    TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS link_clicks_slug_idx ON link_clicks (slug, clicked_at);

CREATE TABLE IF NOT EXISTS content_views (
	id         TEXT PRIMARY KEY,
	content_id TEXT NOT NULL,
	view_count BIGINT NOT NULL,
	viewed_at  TIMESTAMPTZ NOT NULL,
	client_ip  TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	referrer   TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS content_views_content_idx ON content_views (content_id, viewed_at);
`

// Postgres persists analytics events. Redelivered events are ignored by id.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the event tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create analytics schema: %w", err)
	}

	return nil
}

func (p *Postgres) SaveLinkClicked(ctx context.Context, event *analytics.LinkClickedEvent) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO link_clicks
			(id, slug, destination, click_count, clicked_at, client_ip, user_agent, referrer, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Slug, event.Destination, event.ClickCount, event.ClickedAt,
		event.ClientIP, event.UserAgent, event.Referrer, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert link click %s: %w", event.ID, err)
	}

	return nil
}

func (p *Postgres) SaveContentViewed(ctx context.Context, event *analytics.ContentViewedEvent) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO content_views
			(id, content_id, view_count, viewed_at, client_ip, user_agent, referrer, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.ContentID, event.ViewCount, event.ViewedAt,
		event.ClientIP, event.UserAgent, event.Referrer, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert content view %s: %w", event.ID, err)
	}

	return nil
}
