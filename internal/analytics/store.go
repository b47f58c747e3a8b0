package analytics

import "context"

// Store persists analytics events. Implementations must tolerate redelivery
// of the same event id.
type Store interface {
	SaveLinkClicked(ctx context.Context, event *LinkClickedEvent) error
	SaveContentViewed(ctx context.Context, event *ContentViewedEvent) error
}
