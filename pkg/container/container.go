package container

import (
	"context"
	"fmt"
	"time"

	"memorial-backend/internal/config"
	"memorial-backend/internal/domains/obituary"
	obituaryHandler "memorial-backend/internal/domains/obituary/handler"
	obituaryRepo "memorial-backend/internal/domains/obituary/repository"
	obituaryService "memorial-backend/internal/domains/obituary/service"
	"memorial-backend/internal/infrastructure/cache"
	"memorial-backend/internal/infrastructure/database"
	"memorial-backend/pkg/logger"
)

// Container is the root of the dependency graph. Initialization order
// matters: config → infrastructure → repositories → services →
// handlers; each layer only sees the ones before it.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *cache.RedisClient

	// ObituaryRepo is kept as the concrete type on purpose: the
	// migration CLI needs it as SlugStore/DateStore/VerifyStore while
	// the service consumes it as obituary.Repository.
	ObituaryRepo *obituaryRepo.PostgresRepository

	ObituaryService obituary.Service
	ObituaryHandler *obituaryHandler.ObituaryHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c.DB = database.NewPostgresDB(&database.DBConfig{
		Host:              cfg.Database.Host,
		Port:              cfg.Database.Port,
		Username:          cfg.Database.User,
		Password:          cfg.Database.Password,
		DBName:            cfg.Database.Database,
		SSLMode:           cfg.Database.SSLMode,
		MaxConns:          int32(cfg.Database.MaxConns),
		MinConns:          int32(cfg.Database.MinConns),
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
		MaxRetries:        5,
		RetryDelay:        time.Second,
		ConnectTimeout:    10 * time.Second,
	})
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Redis = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.ObituaryRepo = obituaryRepo.NewPostgresRepository(c.DB.Pool)
	c.ObituaryService = obituaryService.NewObituaryService(c.ObituaryRepo)
	c.ObituaryHandler = obituaryHandler.NewObituaryHandler(c.ObituaryService)

	return c, nil
}

// Cleanup releases infrastructure resources in reverse order.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("redis close failed", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
