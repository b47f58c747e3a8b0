package analytics

import "time"

const (
	TopicLinkClicked   = "link.clicked"
	TopicContentViewed = "content.viewed"
)

// LinkClickedEvent is emitted after a counted affiliate redirect.
type LinkClickedEvent struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	ClickCount  int64     `json:"clickCount"`
	ClickedAt   time.Time `json:"clickedAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
	Referrer    string    `json:"referrer,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
}

// ContentViewedEvent is emitted after a counted post view.
type ContentViewedEvent struct {
	ID        string    `json:"id"`
	ContentID string    `json:"contentId"`
	ViewCount int64     `json:"viewCount"`
	ViewedAt  time.Time `json:"viewedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}
