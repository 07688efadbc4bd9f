package migration

import (
	"context"
	"fmt"
	"time"

	"memorial-backend/internal/shared/slug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ============================================================
// SLUG BACKFILL
// ============================================================
// One-shot batch rewrite of every obituary slug. Control flow:
//
// 1. Read all records ascending by primary key (the ordering IS the
//    determinism guarantee - re-running from a clean state reproduces
//    byte-identical slugs and redirects)
// 2. Compute the candidate slug, resolve collisions against the
//    in-run registry
// 3. When the computed slug differs from the current one, write the
//    redirect row and the new slug as one atomic store operation
// 4. When they match, touch nothing (re-running over migrated data is
//    a no-op)
//
// Single writer, no parallelism: each collision decision depends on
// every slug assigned before it. Concurrent runs are the caller's
// problem to prevent (cmd/migrate takes a Redis run lock).

// SlugRecord is one row of the input feed.
type SlugRecord struct {
	ID        int64
	Name      string
	Surname   string
	CreatedAt time.Time
	Slug      string
}

// SlugStore is the storage boundary of the backfill.
type SlugStore interface {
	// ListSlugRecords returns every obituary ascending by id.
	ListSlugRecords(ctx context.Context) ([]SlugRecord, error)

	// ApplySlugChange upserts the {oldSlug → newSlug} redirect row and
	// writes newSlug onto the record, both-or-neither. A redirect must
	// never point at a slug the record does not actually carry.
	ApplySlugChange(ctx context.Context, id int64, oldSlug, newSlug string) error
}

// SlugStats summarizes one backfill run.
type SlugStats struct {
	Scanned    int
	Renamed    int
	Unchanged  int
	Collisions int
	Fallbacks  int
}

type SlugBackfill struct {
	store  SlugStore
	log    zerolog.Logger
	dryRun bool
}

func NewSlugBackfill(store SlugStore, log zerolog.Logger, dryRun bool) *SlugBackfill {
	return &SlugBackfill{store: store, log: log, dryRun: dryRun}
}

// Run executes the backfill. Any per-record store failure aborts the
// batch with the already-committed prefix intact; it never skips a
// record and keeps going, because a later record's collision
// resolution depends on having seen every prior slug.
func (b *SlugBackfill) Run(ctx context.Context) (SlugStats, error) {
	runID := uuid.New().String()
	log := b.log.With().Str("run_id", runID).Bool("dry_run", b.dryRun).Logger()

	records, err := b.store.ListSlugRecords(ctx)
	if err != nil {
		return SlugStats{}, fmt.Errorf("failed to list records: %w", err)
	}
	log.Info().Int("records", len(records)).Msg("slug backfill started")

	var stats SlugStats
	registry := slug.NewRegistry()

	for _, rec := range records {
		stats.Scanned++

		candidate, ok := slug.Base(rec.Name, rec.Surname, rec.CreatedAt)
		if !ok {
			candidate = slug.Fallback(rec.ID, rec.CreatedAt)
			stats.Fallbacks++
		}

		final := registry.Claim(candidate)
		if final != candidate {
			stats.Collisions++
		}

		if final == rec.Slug {
			stats.Unchanged++
			continue
		}

		if !b.dryRun {
			if err := b.store.ApplySlugChange(ctx, rec.ID, rec.Slug, final); err != nil {
				return stats, fmt.Errorf("record %d: slug change aborted batch: %w", rec.ID, err)
			}
		}
		stats.Renamed++

		log.Debug().
			Int64("id", rec.ID).
			Str("old_slug", rec.Slug).
			Str("new_slug", final).
			Msg("slug rewritten")
	}

	log.Info().
		Int("scanned", stats.Scanned).
		Int("renamed", stats.Renamed).
		Int("unchanged", stats.Unchanged).
		Int("collisions", stats.Collisions).
		Int("fallbacks", stats.Fallbacks).
		Msg("slug backfill finished")

	return stats, nil
}
