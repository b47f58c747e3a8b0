package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/maison-counter/internal/analytics"
	"github.com/serroba/maison-counter/internal/handlers"
	"github.com/serroba/maison-counter/internal/health"
	"github.com/serroba/maison-counter/internal/messaging"
	"github.com/serroba/maison-counter/internal/middleware"
	"github.com/serroba/maison-counter/internal/ratelimit"
	"github.com/serroba/maison-counter/internal/store"
	"github.com/serroba/maison-counter/internal/tracking"
	"go.uber.org/zap"
)

// RateLimitPackage provides the policy limiter backed by the store chosen with --rate-limit-store.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		options := do.MustInvoke[*Options](i)

		var rlStore ratelimit.Store

		switch options.RateLimitStore {
		case StoreMemory:
			rlStore = store.NewRateLimitMemoryStore()
		case StoreRedis:
			rlStore = store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client)
		default:
			return nil, fmt.Errorf("unknown rate limit store %q", options.RateLimitStore)
		}

		return ratelimit.NewPolicyLimiter(rlStore, ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the analytics publish functions. Without
// --events they discard everything and Redis is never contacted.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client:     client.Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Publishers, error) {
		options := do.MustInvoke[*Options](i)
		if !options.Events {
			return analytics.NoopPublishers(), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublishers(group.Publisher()), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return handlers.NewRouter(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, handlers.NewAPIConfig())

		requestMeta, err := middleware.RequestMeta(api)
		if err != nil {
			return nil, err
		}

		api.UseMiddleware(requestMeta)

		if options.RateLimit {
			limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
			api.UseMiddleware(middleware.PolicyRateLimiter(
				api, limiter, ratelimit.NewOperationScopeResolver(), logger.Named("ratelimit"),
			))
		}

		trackingHandler := handlers.NewTrackingHandler(
			do.MustInvoke[*tracking.Service](i),
			do.MustInvoke[*analytics.Publishers](i),
			logger.Named("http"),
		)
		handlers.RegisterRoutes(api, trackingHandler)

		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, options)))

		return api, nil
	})
}

// healthCheckers collects a checker for every external dependency in use.
func healthCheckers(i *do.Injector, options *Options) map[string]health.Checker {
	checkers := make(map[string]health.Checker)

	if checker, ok := do.MustInvoke[tracking.Repository](i).(health.Checker); ok {
		checkers[options.Store] = checker
	}

	if options.usesRedis() {
		checkers[StoreRedis] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
	}

	return checkers
}
