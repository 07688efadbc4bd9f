package migration

import (
	"context"
	"fmt"

	"memorial-backend/internal/shared/dates"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DateRecord is one obituary's birth/death pair as currently stored.
type DateRecord struct {
	ID    int64
	Birth dates.Field
	Death dates.Field
}

// DateStore is the storage boundary of the date backfill.
type DateStore interface {
	// ListDateRecords returns every obituary ascending by id.
	ListDateRecords(ctx context.Context) ([]DateRecord, error)

	// ApplyDateChange writes both pairs (date, year, precision × 2) as
	// one atomic group. Writing the date and year columns in separate
	// statements could strand a half-migrated, invariant-violating row
	// if the run is interrupted between them.
	ApplyDateChange(ctx context.Context, id int64, birth, death dates.Field) error
}

// DateStats summarizes one date-precision backfill run.
type DateStats struct {
	Scanned           int
	Updated           int
	Unchanged         int
	BirthReclassified int
	DeathReclassified int
}

// DateBackfill retires the December-31st year-only encoding: sentinel
// dates are split into an explicit year plus NULL date, everything
// else is stamped full precision. Rows that already carry the split
// representation pass through untouched, so re-runs are no-ops.
type DateBackfill struct {
	store  DateStore
	log    zerolog.Logger
	dryRun bool
}

func NewDateBackfill(store DateStore, log zerolog.Logger, dryRun bool) *DateBackfill {
	return &DateBackfill{store: store, log: log, dryRun: dryRun}
}

func (b *DateBackfill) Run(ctx context.Context) (DateStats, error) {
	runID := uuid.New().String()
	log := b.log.With().Str("run_id", runID).Bool("dry_run", b.dryRun).Logger()

	records, err := b.store.ListDateRecords(ctx)
	if err != nil {
		return DateStats{}, fmt.Errorf("failed to list records: %w", err)
	}
	log.Info().Int("records", len(records)).Msg("date backfill started")

	var stats DateStats
	for _, rec := range records {
		stats.Scanned++

		birth := resolvePair(rec.Birth)
		death := resolvePair(rec.Death)

		// Invariant check happens BEFORE any write. A resolver output
		// that violates the pair invariant is a fatal migration error,
		// never a silently-coerced one.
		if err := birth.Validate(true); err != nil {
			return stats, fmt.Errorf("record %d: birth pair: %w", rec.ID, err)
		}
		if err := death.Validate(false); err != nil {
			return stats, fmt.Errorf("record %d: death pair: %w", rec.ID, err)
		}

		if birth.Equal(rec.Birth) && death.Equal(rec.Death) {
			stats.Unchanged++
			continue
		}

		if rec.Birth.Precision == dates.Full && birth.Precision == dates.Year {
			stats.BirthReclassified++
		}
		if rec.Death.Precision == dates.Full && death.Precision == dates.Year {
			stats.DeathReclassified++
		}

		if !b.dryRun {
			if err := b.store.ApplyDateChange(ctx, rec.ID, birth, death); err != nil {
				return stats, fmt.Errorf("record %d: date change aborted batch: %w", rec.ID, err)
			}
		}
		stats.Updated++
	}

	// The reclassification counts double as the operator's estimate of
	// sentinel false positives (genuine Dec-31 events are demoted too;
	// the source data carries nothing that could tell them apart).
	log.Info().
		Int("scanned", stats.Scanned).
		Int("updated", stats.Updated).
		Int("unchanged", stats.Unchanged).
		Int("birth_reclassified", stats.BirthReclassified).
		Int("death_reclassified", stats.DeathReclassified).
		Msg("date backfill finished")

	return stats, nil
}

// resolvePair leaves already-split fields alone and classifies legacy
// date-only fields through the sentinel rule.
func resolvePair(f dates.Field) dates.Field {
	if f.Year != nil {
		return f
	}
	return dates.Resolve(f.Date)
}
