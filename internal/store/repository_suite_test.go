package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/serroba/maison-counter/internal/store"
	"github.com/serroba/maison-counter/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededRepository is what every backend under test provides.
type seededRepository interface {
	tracking.Repository
	store.Seeder
}

// runRepositorySuite checks the counter contract shared by all backends.
func runRepositorySuite(t *testing.T, newRepo func(t *testing.T) seededRepository) {
	t.Helper()

	ctx := context.Background()

	t.Run("increment clicks returns updated link", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveLink(ctx, &tracking.TrackedLink{
			Slug:        "silk-blazer",
			Destination: "https://store.example/p/123",
			ClickCount:  5,
		}))

		link, err := repo.IncrementClicks(ctx, "silk-blazer")

		require.NoError(t, err)
		assert.Equal(t, tracking.Slug("silk-blazer"), link.Slug)
		assert.Equal(t, "https://store.example/p/123", link.Destination)
		assert.Equal(t, int64(6), link.ClickCount)

		stored, err := repo.GetLink(ctx, "silk-blazer")
		require.NoError(t, err)
		assert.Equal(t, int64(6), stored.ClickCount)
	})

	t.Run("increment clicks on unknown slug returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		link, err := repo.IncrementClicks(ctx, "missing")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, tracking.ErrNotFound)

		_, err = repo.GetLink(ctx, "missing")
		assert.ErrorIs(t, err, tracking.ErrNotFound, "a failed increment must not create the link")
	})

	t.Run("concurrent clicks are not lost", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveLink(ctx, &tracking.TrackedLink{
			Slug:        "cashmere-coat",
			Destination: "https://store.example/p/9",
			ClickCount:  10,
		}))

		const workers = 50

		var wg sync.WaitGroup

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := repo.IncrementClicks(ctx, "cashmere-coat")
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		link, err := repo.GetLink(ctx, "cashmere-coat")
		require.NoError(t, err)
		assert.Equal(t, int64(10+workers), link.ClickCount)
	})

	t.Run("increment views returns new count", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "post-1", ViewCount: 41}))

		views, err := repo.IncrementViews(ctx, "post-1")

		require.NoError(t, err)
		assert.Equal(t, int64(42), views)
	})

	t.Run("increment views on unknown post returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.IncrementViews(ctx, "nope")
		assert.ErrorIs(t, err, tracking.ErrNotFound)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalPosts, "a failed increment must not create the post")
	})

	t.Run("concurrent views are not lost", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "post-2"}))

		const workers = 40

		var wg sync.WaitGroup

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := repo.IncrementViews(ctx, "post-2")
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), stats.TotalViews)
	})

	t.Run("stats on empty store are zero", func(t *testing.T) {
		repo := newRepo(t)

		stats, err := repo.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, &tracking.Stats{}, stats)
	})

	t.Run("stats aggregate posts, profiles and views", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "a", ViewCount: 3}))
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "b", ViewCount: 4}))
		require.NoError(t, repo.AddProfile(ctx, "alice"))
		require.NoError(t, repo.AddProfile(ctx, "alice"))
		require.NoError(t, repo.AddProfile(ctx, "bob"))

		_, err := repo.IncrementViews(ctx, "a")
		require.NoError(t, err)

		stats, err := repo.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalPosts)
		assert.Equal(t, int64(2), stats.TotalUsers)
		assert.Equal(t, int64(8), stats.TotalViews)
	})

	t.Run("saving content again replaces its count", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "a", ViewCount: 10}))
		require.NoError(t, repo.SaveContent(ctx, &tracking.ContentItem{ID: "a", ViewCount: 2}))

		stats, err := repo.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalPosts)
		assert.Equal(t, int64(2), stats.TotalViews)
	})
}
