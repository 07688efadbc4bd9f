package migration_test

import (
	"context"
	"testing"
	"time"

	"memorial-backend/internal/migration"
	"memorial-backend/internal/shared/dates"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func legacyField(d *time.Time) dates.Field {
	// Pre-migration rows carry only the calendar date; the precision
	// column defaults to full.
	return dates.Field{Date: d, Precision: dates.Full}
}

func runDateBackfill(t *testing.T, store *fakeStore, dryRun bool) migration.DateStats {
	t.Helper()
	stats, err := migration.NewDateBackfill(store, zerolog.Nop(), dryRun).Run(context.Background())
	require.NoError(t, err)
	return stats
}

func TestDateBackfill(t *testing.T) {
	t.Run("sentinel death date becomes year only", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    1,
			Birth: legacyField(day(1912, 4, 2)),
			Death: legacyField(day(1987, 12, 31)),
		})

		stats := runDateBackfill(t, store, false)

		assert.Equal(t, 1, stats.Updated)
		assert.Equal(t, 1, stats.DeathReclassified)
		assert.Zero(t, stats.BirthReclassified)

		got := store.dateRows[1]
		assert.Equal(t, dates.Year, got.Death.Precision)
		require.NotNil(t, got.Death.Year)
		assert.Equal(t, 1987, *got.Death.Year)
		assert.Nil(t, got.Death.Date)

		assert.Equal(t, dates.Full, got.Birth.Precision)
		require.NotNil(t, got.Birth.Date)
	})

	t.Run("sentinel birth dates are demoted too", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    7,
			Birth: legacyField(day(1899, 12, 31)),
			Death: legacyField(day(1960, 5, 20)),
		})

		stats := runDateBackfill(t, store, false)

		assert.Equal(t, 1, stats.BirthReclassified)
		got := store.dateRows[7]
		require.NotNil(t, got.Birth.Year)
		assert.Equal(t, 1899, *got.Birth.Year)
	})

	t.Run("unknown birth date stays empty", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    2,
			Birth: legacyField(nil),
			Death: legacyField(day(2001, 9, 11)),
		})

		stats := runDateBackfill(t, store, false)

		assert.Equal(t, 1, stats.Unchanged)
		assert.True(t, store.dateRows[2].Birth.Empty())
	})

	t.Run("idempotent over its own output", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    1,
			Birth: legacyField(day(1912, 4, 2)),
			Death: legacyField(day(1987, 12, 31)),
		})

		runDateBackfill(t, store, false)
		writesAfterFirst := store.dateWrites

		stats := runDateBackfill(t, store, false)

		assert.Equal(t, 1, stats.Unchanged)
		assert.Zero(t, stats.Updated)
		assert.Equal(t, writesAfterFirst, store.dateWrites)
	})

	t.Run("half-migrated row is fatal before any write", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID: 3,
			// Both date and year populated with precision full: the
			// invariant-violating state an interrupted non-atomic
			// writer would leave behind.
			Birth: dates.Field{Date: day(1950, 1, 1), Year: intPtr(1950), Precision: dates.Full},
			Death: legacyField(day(2000, 2, 2)),
		})

		_, err := migration.NewDateBackfill(store, zerolog.Nop(), false).Run(context.Background())

		require.ErrorIs(t, err, dates.ErrPairViolation)
		assert.Zero(t, store.dateWrites)
	})

	t.Run("empty death pair is fatal", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    4,
			Birth: legacyField(nil),
			Death: legacyField(nil),
		})

		_, err := migration.NewDateBackfill(store, zerolog.Nop(), false).Run(context.Background())
		require.ErrorIs(t, err, dates.ErrEmptyPair)
	})

	t.Run("dry run counts but writes nothing", func(t *testing.T) {
		store := newFakeStore()
		store.addDateRow(migration.DateRecord{
			ID:    1,
			Birth: legacyField(nil),
			Death: legacyField(day(1987, 12, 31)),
		})

		stats := runDateBackfill(t, store, true)

		assert.Equal(t, 1, stats.Updated)
		assert.Zero(t, store.dateWrites)
		assert.NotNil(t, store.dateRows[1].Death.Date)
	})
}

func TestVerifyReportsViolations(t *testing.T) {
	store := newFakeStore()
	store.addRecord(migration.SlugRecord{ID: 1, Name: "a", Surname: "b", CreatedAt: ts(2024, 1, 1), Slug: "dup"})
	store.addRecord(migration.SlugRecord{ID: 2, Name: "c", Surname: "d", CreatedAt: ts(2024, 1, 1), Slug: "dup"})
	store.redirects["old"] = "middle"
	store.redirects["middle"] = "final"
	store.addDateRow(migration.DateRecord{
		ID:    1,
		Birth: dates.Field{Date: day(1950, 1, 1), Year: intPtr(1950), Precision: dates.Full},
		Death: legacyField(day(2000, 1, 1)),
	})

	report, err := migration.Verify(context.Background(), store)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Len(t, report.DuplicateSlugs, 1)
	assert.Len(t, report.RedirectChains, 1)
	assert.Contains(t, report.RedirectChains[0], `"old"`)
	assert.Len(t, report.DatePairViolations, 1)
}

func intPtr(i int) *int { return &i }
