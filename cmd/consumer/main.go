package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/do"
	"github.com/serroba/maison-counter/internal/container"
	"github.com/serroba/maison-counter/internal/messaging"
	"go.uber.org/zap"
)

// config is read from the environment, after an optional .env file.
type config struct {
	RedisAddr     string `default:"localhost:6379" envconfig:"REDIS_ADDR"`
	LogFormat     string `default:"console"        envconfig:"LOG_FORMAT"`
	LogLevel      string `default:"info"           envconfig:"LOG_LEVEL"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	ConsumerGroup string `default:"analytics"      envconfig:"CONSUMER_GROUP"`
}

func loadConfig() (*config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	injector := do.New()
	do.ProvideValue(injector, &container.Options{
		RedisAddr:   cfg.RedisAddr,
		LogFormat:   cfg.LogFormat,
		LogLevel:    cfg.LogLevel,
		DatabaseURL: cfg.DatabaseURL,
	})
	do.ProvideValue(injector, &container.ConsumerOptions{
		ConsumerGroup: cfg.ConsumerGroup,
		Persist:       cfg.DatabaseURL != "",
	})
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.AnalyticsStorePackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	defer func() { _ = logger.Sync() }()

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consumer started",
		zap.String("group", cfg.ConsumerGroup),
		zap.Bool("persist", cfg.DatabaseURL != ""),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
