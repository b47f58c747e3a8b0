package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Store backends selectable with --store.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

const startupTimeout = 10 * time.Second

// Options are the server settings, read from flags or SERVICE_* environment variables.
type Options struct {
	Port              int    `default:"8888"                                             help:"Port to listen on"                                   short:"p"`
	Store             string `default:"memory"                                           help:"Counter store: memory, sqlite, postgres or redis"    short:"s"`
	DatabaseURL       string `default:"postgres://localhost:5432/maison?sslmode=disable" help:"PostgreSQL connection string"`
	SQLitePath        string `default:"maison.db"                                        help:"SQLite database file"`
	RedisAddr         string `default:"localhost:6379"                                   help:"Redis server address"                                short:"r"`
	LogFormat         string `default:"console"                                          help:"Log format: console or json"`
	LogLevel          string `default:"info"                                             help:"Log level: debug, info, warn or error"`
	MissingContent    string `default:"ignore"                                           help:"Views of unknown posts: ignore or reject"`
	StatsCacheSeconds int    `default:"0"                                                help:"Cache admin stats in Redis for this many seconds, 0 disables"`
	RateLimit         bool   `default:"false"                                            help:"Enable per-client rate limiting"`
	RateLimitStore    string `default:"memory"                                           help:"Rate limit store: memory or redis"`
	Events            bool   `default:"false"                                            help:"Publish click and view events to Redis Streams"`
	Fixtures          string `default:""                                                 help:"YAML file used to seed the store at startup"`
}

// usesRedis reports whether any enabled component needs the Redis client.
func (o *Options) usesRedis() bool {
	return o.Store == StoreRedis ||
		o.Events ||
		o.StatsCacheSeconds > 0 ||
		(o.RateLimit && o.RateLimitStore == StoreRedis)
}

// PostgresPool wraps the pool so the injector closes it on shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

// Shutdown closes every pooled connection.
func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// RedisClient wraps the client so the injector closes it on shutdown.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the client.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// NewLogger builds a zap logger. The json format uses the production encoder.
func NewLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config

	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	cfg.Level = lvl

	return cfg.Build()
}

// LoggerPackage provides the process logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		return NewLogger(options.LogFormat, options.LogLevel)
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		options := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: options.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*PostgresPool, error) {
		options := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}
