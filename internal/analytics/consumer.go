package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/maison-counter/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers creates one consumer per analytics topic, all persisting to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer[LinkClickedEvent](subscriber, TopicLinkClicked, store.SaveLinkClicked, logger),
		messaging.NewConsumer[ContentViewedEvent](subscriber, TopicContentViewed, store.SaveContentViewed, logger),
	}
}
