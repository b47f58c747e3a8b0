package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/maison-counter/internal/tracking"
)

// PostgresSchema creates the tables the service reads and counts.
// The production schema is owned by the admin tooling; this is used by tests and local setups.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS affiliate_links (
	slug            TEXT PRIMARY KEY,
	destination_url TEXT NOT NULL,
	click_count     BIGINT NOT NULL DEFAULT 0 CHECK (click_count >= 0)
);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	view_count BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0)
);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY
);
`

// PostgresStore is a PostgreSQL implementation of tracking.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates missing tables.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) IncrementClicks(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	query := `
		UPDATE affiliate_links
		SET click_count = click_count + 1
		WHERE slug = $1
		RETURNING slug, destination_url, click_count
	`

	return p.scanLink(p.pool.QueryRow(ctx, query, string(slug)), "increment clicks")
}

func (p *PostgresStore) GetLink(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	query := `
		SELECT slug, destination_url, click_count
		FROM affiliate_links
		WHERE slug = $1
	`

	return p.scanLink(p.pool.QueryRow(ctx, query, string(slug)), "get link")
}

func (p *PostgresStore) scanLink(row pgx.Row, op string) (*tracking.TrackedLink, error) {
	var (
		link tracking.TrackedLink
		slug string
	)

	if err := row.Scan(&slug, &link.Destination, &link.ClickCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracking.ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link.Slug = tracking.Slug(slug)

	return &link, nil
}

func (p *PostgresStore) IncrementViews(ctx context.Context, id tracking.ContentID) (int64, error) {
	query := `
		UPDATE posts
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`

	var views int64

	err := p.pool.QueryRow(ctx, query, string(id)).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, tracking.ErrNotFound
		}

		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

func (p *PostgresStore) Stats(ctx context.Context) (*tracking.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM profiles),
			(SELECT COALESCE(SUM(view_count), 0)::BIGINT FROM posts)
	`

	var stats tracking.Stats

	err := p.pool.QueryRow(ctx, query).Scan(&stats.TotalPosts, &stats.TotalUsers, &stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	return &stats, nil
}

func (p *PostgresStore) SaveLink(ctx context.Context, link *tracking.TrackedLink) error {
	query := `
		INSERT INTO affiliate_links (slug, destination_url, click_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE
		SET destination_url = EXCLUDED.destination_url, click_count = EXCLUDED.click_count
	`

	_, err := p.pool.Exec(ctx, query, string(link.Slug), link.Destination, link.ClickCount)

	return err
}

func (p *PostgresStore) SaveContent(ctx context.Context, item *tracking.ContentItem) error {
	query := `
		INSERT INTO posts (id, view_count)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET view_count = EXCLUDED.view_count
	`

	_, err := p.pool.Exec(ctx, query, string(item.ID), item.ViewCount)

	return err
}

func (p *PostgresStore) AddProfile(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)

	return err
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Compile-time checks.
var (
	_ tracking.Repository = (*PostgresStore)(nil)
	_ Seeder              = (*PostgresStore)(nil)
)
