package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/maison-counter/internal/analytics"
	analyticsstore "github.com/serroba/maison-counter/internal/analytics/store"
	"github.com/serroba/maison-counter/internal/messaging"
	"go.uber.org/zap"
)

// ConsumerOptions configure the analytics consumer process.
type ConsumerOptions struct {
	ConsumerGroup string
	// Persist writes events to PostgreSQL; otherwise they are only logged.
	Persist bool
}

// AnalyticsStorePackage provides the analytics event store.
func AnalyticsStorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		consumerOptions := do.MustInvoke[*ConsumerOptions](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if !consumerOptions.Persist {
			return analyticsstore.NewNoop(logger.Named("analytics")), nil
		}

		pg := analyticsstore.NewPostgres(do.MustInvoke[*PostgresPool](i).Pool)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return pg, nil
	})
}

// ConsumerGroupPackage provides the consumer group reading every analytics stream.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		consumerOptions := do.MustInvoke[*ConsumerOptions](i)
		logger := do.MustInvoke[*zap.Logger](i)
		eventStore := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client.Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: consumerOptions.ConsumerGroup,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, eventStore, logger)...)

		return group, nil
	})
}
