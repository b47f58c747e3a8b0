package tracking

import "context"

// LinkRepository reads and counts tracked links.
type LinkRepository interface {
	// IncrementClicks adds one to the link's click count in a single atomic store
	// operation and returns the updated link. Returns ErrNotFound without mutating
	// anything when the slug does not exist.
	IncrementClicks(ctx context.Context, slug Slug) (*TrackedLink, error)
	// GetLink returns the link without touching its counter.
	GetLink(ctx context.Context, slug Slug) (*TrackedLink, error)
}

// ContentRepository counts post views.
type ContentRepository interface {
	// IncrementViews atomically adds one to the view count and returns the new value.
	// Returns ErrNotFound when the post does not exist.
	IncrementViews(ctx context.Context, id ContentID) (int64, error)
}

// StatsRepository computes dashboard aggregates.
type StatsRepository interface {
	Stats(ctx context.Context) (*Stats, error)
}

// Repository is implemented by every store backend.
type Repository interface {
	LinkRepository
	ContentRepository
	StatsRepository
}
