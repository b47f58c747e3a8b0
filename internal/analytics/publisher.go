package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/maison-counter/internal/messaging"
)

// Publishers bundles the typed publish functions used by the HTTP handlers.
type Publishers struct {
	LinkClicked   messaging.Publish[LinkClickedEvent]
	ContentViewed messaging.Publish[ContentViewedEvent]
}

// NewPublishers creates publish functions for every analytics topic.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		LinkClicked:   messaging.NewPublishFunc[LinkClickedEvent](publisher, TopicLinkClicked),
		ContentViewed: messaging.NewPublishFunc[ContentViewedEvent](publisher, TopicContentViewed),
	}
}

// NoopPublishers discards every event.
func NoopPublishers() *Publishers {
	return &Publishers{
		LinkClicked:   messaging.NoopPublish[LinkClickedEvent](),
		ContentViewed: messaging.NoopPublish[ContentViewedEvent](),
	}
}
