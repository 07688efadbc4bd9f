package repository

import (
	"context"
	"errors"
	"fmt"

	"memorial-backend/internal/domains/obituary"
	"memorial-backend/internal/migration"
	"memorial-backend/internal/shared/dates"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique-index hit.
const uniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds the pgx-backed repository. The returned
// value satisfies obituary.Repository and the migration package's
// SlugStore, DateStore and VerifyStore, so the batch CLI and the API
// run over the same queries.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ============================================================
// LIVE REPOSITORY (obituary.Repository)
// ============================================================

func (r *PostgresRepository) Create(ctx context.Context, o *obituary.Obituary) (*obituary.Obituary, error) {
	// created_at is written explicitly rather than left to the column
	// default: the slug's DDMMYY component was derived from this exact
	// timestamp, and a re-run of the backfill must recompute the same
	// slug from the stored value.
	const query = `
		INSERT INTO obituaries (
			name, surname, slug,
			birth_date, birth_year, birth_date_precision,
			death_date, death_year, death_date_precision,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	created := *o
	err := r.pool.QueryRow(ctx, query,
		o.Name,
		o.Surname,
		o.Slug,
		o.Birth.Date,
		o.Birth.Year,
		string(o.Birth.Precision),
		o.Death.Date,
		o.Death.Year,
		string(o.Death.Precision),
		o.CreatedAt,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", obituary.ErrDuplicateSlug, o.Slug)
		}
		return nil, fmt.Errorf("failed to create obituary: %w", err)
	}

	return &created, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*obituary.Obituary, error) {
	const query = `
		SELECT id, name, surname, slug,
		       birth_date, birth_year, birth_date_precision,
		       death_date, death_year, death_date_precision,
		       created_at, updated_at
		FROM obituaries
		WHERE slug = $1
	`

	o := &obituary.Obituary{}
	var birthPrec, deathPrec string
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&o.ID, &o.Name, &o.Surname, &o.Slug,
		&o.Birth.Date, &o.Birth.Year, &birthPrec,
		&o.Death.Date, &o.Death.Year, &deathPrec,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", obituary.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to fetch obituary: %w", err)
	}

	o.Birth.Precision = dates.Precision(birthPrec)
	o.Death.Precision = dates.Precision(deathPrec)
	return o, nil
}

func (r *PostgresRepository) ResolveRedirect(ctx context.Context, oldSlug string) (string, bool, error) {
	const query = `SELECT new_slug FROM slug_redirects WHERE old_slug = $1`

	var newSlug string
	err := r.pool.QueryRow(ctx, query, oldSlug).Scan(&newSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve redirect: %w", err)
	}
	return newSlug, true, nil
}

// SlugInUse checks current slugs AND retired old_slug keys: handing a
// retired slug to a new record would make its redirect shadow the new
// page.
func (r *PostgresRepository) SlugInUse(ctx context.Context, slug string) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM obituaries WHERE slug = $1)
		    OR EXISTS (SELECT 1 FROM slug_redirects WHERE old_slug = $1)
	`

	var inUse bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&inUse); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return inUse, nil
}

// ============================================================
// MIGRATION STORES (migration.SlugStore / DateStore / VerifyStore)
// ============================================================

// ListSlugRecords streams the backfill input feed. Ascending id is
// load-bearing: the collision resolver's determinism depends on it.
func (r *PostgresRepository) ListSlugRecords(ctx context.Context) ([]migration.SlugRecord, error) {
	const query = `
		SELECT id, name, surname, created_at, slug
		FROM obituaries
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slug records: %w", err)
	}
	defer rows.Close()

	var out []migration.SlugRecord
	for rows.Next() {
		var rec migration.SlugRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Surname, &rec.CreatedAt, &rec.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan slug record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ApplySlugChange writes the redirect row and the new slug in one
// transaction. A redirect pointing at a slug the record does not carry
// must never be observable.
func (r *PostgresRepository) ApplySlugChange(ctx context.Context, id int64, oldSlug, newSlug string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin slug change: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertRedirect = `
		INSERT INTO slug_redirects (old_slug, new_slug, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (old_slug) DO UPDATE
		SET new_slug = EXCLUDED.new_slug, updated_at = now()
	`
	if _, err := tx.Exec(ctx, upsertRedirect, oldSlug, newSlug); err != nil {
		return fmt.Errorf("failed to upsert redirect: %w", err)
	}

	const updateSlug = `UPDATE obituaries SET slug = $1, updated_at = now() WHERE id = $2`
	tag, err := tx.Exec(ctx, updateSlug, newSlug, id)
	if err != nil {
		return fmt.Errorf("failed to update slug: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("slug update touched %d rows for id %d", tag.RowsAffected(), id)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) ListDateRecords(ctx context.Context) ([]migration.DateRecord, error) {
	const query = `
		SELECT id,
		       birth_date, birth_year, birth_date_precision,
		       death_date, death_year, death_date_precision
		FROM obituaries
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list date records: %w", err)
	}
	defer rows.Close()

	var out []migration.DateRecord
	for rows.Next() {
		var rec migration.DateRecord
		var birthPrec, deathPrec string
		err := rows.Scan(
			&rec.ID,
			&rec.Birth.Date, &rec.Birth.Year, &birthPrec,
			&rec.Death.Date, &rec.Death.Year, &deathPrec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan date record: %w", err)
		}
		rec.Birth.Precision = dates.Precision(birthPrec)
		rec.Death.Precision = dates.Precision(deathPrec)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ApplyDateChange writes both pairs in a single statement, so the
// date/year/precision columns can never be observed half-written.
func (r *PostgresRepository) ApplyDateChange(ctx context.Context, id int64, birth, death dates.Field) error {
	const query = `
		UPDATE obituaries
		SET birth_date = $1, birth_year = $2, birth_date_precision = $3,
		    death_date = $4, death_year = $5, death_date_precision = $6,
		    updated_at = now()
		WHERE id = $7
	`

	tag, err := r.pool.Exec(ctx, query,
		birth.Date, birth.Year, string(birth.Precision),
		death.Date, death.Year, string(death.Precision),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update date precision: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("date update touched %d rows for id %d", tag.RowsAffected(), id)
	}
	return nil
}

func (r *PostgresRepository) ListRedirects(ctx context.Context) ([]migration.Redirect, error) {
	const query = `SELECT old_slug, new_slug FROM slug_redirects ORDER BY old_slug ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list redirects: %w", err)
	}
	defer rows.Close()

	var out []migration.Redirect
	for rows.Next() {
		var rec migration.Redirect
		if err := rows.Scan(&rec.OldSlug, &rec.NewSlug); err != nil {
			return nil, fmt.Errorf("failed to scan redirect: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
