package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/serroba/maison-counter/internal/tracking"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteSchema mirrors PostgresSchema for single-node deployments.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS affiliate_links (
	slug            TEXT PRIMARY KEY,
	destination_url TEXT NOT NULL,
	click_count     INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0)
);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	view_count INTEGER NOT NULL DEFAULT 0 CHECK (view_count >= 0)
);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY
);
`

// SQLiteStore is a SQLite implementation of tracking.Repository.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path and creates missing tables.
// A single connection is used so writers never contend for the file lock.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) IncrementClicks(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	query := `
		UPDATE affiliate_links
		SET click_count = click_count + 1
		WHERE slug = ?
		RETURNING slug, destination_url, click_count
	`

	return s.scanLink(s.db.QueryRowContext(ctx, query, string(slug)), "increment clicks")
}

func (s *SQLiteStore) GetLink(ctx context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	query := `SELECT slug, destination_url, click_count FROM affiliate_links WHERE slug = ?`

	return s.scanLink(s.db.QueryRowContext(ctx, query, string(slug)), "get link")
}

func (s *SQLiteStore) scanLink(row *sql.Row, op string) (*tracking.TrackedLink, error) {
	var (
		link tracking.TrackedLink
		slug string
	)

	if err := row.Scan(&slug, &link.Destination, &link.ClickCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tracking.ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link.Slug = tracking.Slug(slug)

	return &link, nil
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, id tracking.ContentID) (int64, error) {
	query := `UPDATE posts SET view_count = view_count + 1 WHERE id = ? RETURNING view_count`

	var views int64

	if err := s.db.QueryRowContext(ctx, query, string(id)).Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, tracking.ErrNotFound
		}

		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*tracking.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM profiles),
			(SELECT COALESCE(SUM(view_count), 0) FROM posts)
	`

	var stats tracking.Stats

	err := s.db.QueryRowContext(ctx, query).Scan(&stats.TotalPosts, &stats.TotalUsers, &stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	return &stats, nil
}

func (s *SQLiteStore) SaveLink(ctx context.Context, link *tracking.TrackedLink) error {
	query := `
		INSERT INTO affiliate_links (slug, destination_url, click_count)
		VALUES (?, ?, ?)
		ON CONFLICT (slug) DO UPDATE
		SET destination_url = excluded.destination_url, click_count = excluded.click_count
	`

	_, err := s.db.ExecContext(ctx, query, string(link.Slug), link.Destination, link.ClickCount)

	return err
}

func (s *SQLiteStore) SaveContent(ctx context.Context, item *tracking.ContentItem) error {
	query := `
		INSERT INTO posts (id, view_count)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET view_count = excluded.view_count
	`

	_, err := s.db.ExecContext(ctx, query, string(item.ID), item.ViewCount)

	return err
}

func (s *SQLiteStore) AddProfile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id)

	return err
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

// Compile-time checks.
var (
	_ tracking.Repository = (*SQLiteStore)(nil)
	_ Seeder              = (*SQLiteStore)(nil)
)
