package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/maison-counter/internal/store"
	"github.com/serroba/maison-counter/internal/tracking"
	"go.uber.org/zap"
)

// RepositoryPackage provides the counter repository selected by --store and
// the tracking service built on it.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, newRepository)

	do.Provide(injector, func(i *do.Injector) (*tracking.Service, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[tracking.Repository](i)

		policy, err := tracking.ParseMissingContentPolicy(options.MissingContent)
		if err != nil {
			return nil, err
		}

		var stats tracking.StatsRepository = repo
		if options.StatsCacheSeconds > 0 {
			client := do.MustInvoke[*RedisClient](i)
			stats = store.NewRedisStatsCache(repo, client.Client, time.Duration(options.StatsCacheSeconds)*time.Second)
		}

		return tracking.NewService(repo, repo, stats, policy, logger.Named("tracking")), nil
	})
}

func newRepository(i *do.Injector) (tracking.Repository, error) {
	options := do.MustInvoke[*Options](i)
	logger := do.MustInvoke[*zap.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var repo tracking.Repository

	switch options.Store {
	case StoreMemory:
		repo = store.NewMemoryStore()
	case StoreSQLite:
		sqlite, err := store.OpenSQLite(ctx, options.SQLitePath)
		if err != nil {
			return nil, err
		}

		repo = sqlite
	case StorePostgres:
		pg := store.NewPostgresStore(do.MustInvoke[*PostgresPool](i).Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		repo = pg
	case StoreRedis:
		repo = store.NewRedisStore(do.MustInvoke[*RedisClient](i).Client)
	default:
		return nil, fmt.Errorf("unknown store %q", options.Store)
	}

	if options.Fixtures != "" {
		if err := seedOrClose(ctx, repo, options.Fixtures); err != nil {
			return nil, err
		}

		logger.Info("store seeded", zap.String("store", options.Store), zap.String("fixtures", options.Fixtures))
	}

	return repo, nil
}

// seedOrClose seeds repo and closes it when seeding fails. A failed provider is
// never registered with the injector, so its Shutdown would not run otherwise.
func seedOrClose(ctx context.Context, repo tracking.Repository, path string) error {
	err := seedFixtures(ctx, repo, path)
	if err == nil {
		return nil
	}

	if closer, ok := repo.(do.Shutdownable); ok {
		if closeErr := closer.Shutdown(); closeErr != nil {
			return errors.Join(err, closeErr)
		}
	}

	return err
}

func seedFixtures(ctx context.Context, repo tracking.Repository, path string) error {
	seeder, ok := repo.(store.Seeder)
	if !ok {
		return fmt.Errorf("store %T cannot be seeded", repo)
	}

	fixtures, err := store.LoadFixtures(path)
	if err != nil {
		return err
	}

	return store.Seed(ctx, seeder, fixtures)
}
