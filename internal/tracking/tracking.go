package tracking

// Slug identifies a tracked affiliate link.
type Slug string

// ContentID identifies a published post.
type ContentID string

// TrackedLink maps a slug to a destination URL and counts how often it was followed.
type TrackedLink struct {
	Slug        Slug
	Destination string
	ClickCount  int64
}

// ContentItem is a post with a view counter.
type ContentItem struct {
	ID        ContentID
	ViewCount int64
}

// Stats summarises the store for the admin dashboard.
type Stats struct {
	TotalPosts int64
	TotalUsers int64
	TotalViews int64
}
