package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"memorial-backend/internal/config"
	obituaryRepo "memorial-backend/internal/domains/obituary/repository"
	"memorial-backend/internal/infrastructure/cache"
	"memorial-backend/internal/infrastructure/database"
	"memorial-backend/internal/infrastructure/database/migrations"
	"memorial-backend/internal/migration"
	"memorial-backend/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for golang-migrate
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// The batch runners provide no mutual exclusion of their own, so every
// data command here runs under a Redis run lock: two concurrent
// backfills against the same records would race the collision
// resolver. The schema command relies on golang-migrate's own locking
// instead.

var dryRun bool

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Schema and data migrations for the memorial backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Apply pending schema migrations",
		RunE:  runSchema,
	}

	slugsCmd := &cobra.Command{
		Use:   "slugs",
		Short: "Backfill deterministic slugs and redirect rows",
		RunE:  withLockedStore(runSlugs),
	}

	datesCmd := &cobra.Command{
		Use:   "dates",
		Short: "Split legacy sentinel dates into the precision representation",
		RunE:  withLockedStore(runDates),
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check slug uniqueness, redirect chains and date invariants",
		RunE:  withLockedStore(runVerify),
	}

	for _, cmd := range []*cobra.Command{slugsCmd, datesCmd} {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	}

	root.AddCommand(schemaCmd, slugsCmd, datesCmd, verifyCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.Environment)
	return cfg, nil
}

func runSchema(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Database, cfg.Database.SSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return err
	}

	log.Info().Msg("schema is up to date")
	return nil
}

// withLockedStore handles the shared plumbing of the data commands:
// config, database pool, schema-version check, and the Redis run lock
// around the handler.
func withLockedStore(run func(ctx context.Context, repo *obituaryRepo.PostgresRepository) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		db := database.NewPostgresDB(&database.DBConfig{
			Host:              cfg.Database.Host,
			Port:              cfg.Database.Port,
			Username:          cfg.Database.User,
			Password:          cfg.Database.Password,
			DBName:            cfg.Database.Database,
			SSLMode:           cfg.Database.SSLMode,
			MaxConns:          5,
			MinConns:          1,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
			MaxRetries:        3,
			RetryDelay:        time.Second,
			ConnectTimeout:    10 * time.Second,
		})
		if err := db.Connect(ctx); err != nil {
			return err
		}
		defer db.Close()

		// Refuse to touch data while the schema is behind or dirty.
		if err := checkSchema(cfg); err != nil {
			return err
		}

		redisClient := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisClient.Connect(ctx); err != nil {
			return err
		}
		defer redisClient.Close()

		lock := cache.NewRunLock(redisClient, cfg.Migration.LockKey, cfg.Migration.LockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return err
		}
		if !acquired {
			return fmt.Errorf("another migration run holds the lock %q", cfg.Migration.LockKey)
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				log.Warn().Err(err).Msg("run lock release failed")
			}
		}()

		return run(ctx, obituaryRepo.NewPostgresRepository(db.Pool))
	}
}

func checkSchema(cfg *config.Config) error {
	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Database, cfg.Database.SSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return migrations.Status(db)
}

func runSlugs(ctx context.Context, repo *obituaryRepo.PostgresRepository) error {
	stats, err := migration.NewSlugBackfill(repo, log.Logger, dryRun).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("scanned %d, renamed %d, unchanged %d, collisions %d, fallbacks %d\n",
		stats.Scanned, stats.Renamed, stats.Unchanged, stats.Collisions, stats.Fallbacks)
	return nil
}

func runDates(ctx context.Context, repo *obituaryRepo.PostgresRepository) error {
	stats, err := migration.NewDateBackfill(repo, log.Logger, dryRun).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("scanned %d, updated %d, unchanged %d, birth reclassified %d, death reclassified %d\n",
		stats.Scanned, stats.Updated, stats.Unchanged, stats.BirthReclassified, stats.DeathReclassified)
	return nil
}

func runVerify(ctx context.Context, repo *obituaryRepo.PostgresRepository) error {
	report, err := migration.Verify(ctx, repo)
	if err != nil {
		return err
	}

	if report.OK() {
		fmt.Println("all invariants hold")
		return nil
	}

	for _, v := range report.DuplicateSlugs {
		fmt.Println("duplicate slug:", v)
	}
	for _, v := range report.RedirectChains {
		fmt.Println("redirect chain:", v)
	}
	for _, v := range report.DatePairViolations {
		fmt.Println("date pair:", v)
	}
	return fmt.Errorf("%d invariant violations found",
		len(report.DuplicateSlugs)+len(report.RedirectChains)+len(report.DatePairViolations))
}
