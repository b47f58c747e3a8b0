package store

import (
	"context"

	"github.com/serroba/maison-counter/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkClicked(_ context.Context, event *analytics.LinkClickedEvent) error {
	n.logger.Info("link clicked event received",
		zap.String("id", event.ID),
		zap.String("slug", event.Slug),
		zap.Int64("clickCount", event.ClickCount),
		zap.Time("clickedAt", event.ClickedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (n *Noop) SaveContentViewed(_ context.Context, event *analytics.ContentViewedEvent) error {
	n.logger.Info("content viewed event received",
		zap.String("id", event.ID),
		zap.String("contentId", event.ContentID),
		zap.Int64("viewCount", event.ViewCount),
		zap.Time("viewedAt", event.ViewedAt),
	)

	return nil
}
