package migration_test

import (
	"context"
	"fmt"
	"sort"

	"memorial-backend/internal/migration"
	"memorial-backend/internal/shared/dates"
)

// fakeStore is an in-memory stand-in for the postgres repository. It
// mimics the atomic both-or-neither semantics of the real store: a
// forced failure leaves neither the slug nor the redirect written.
type fakeStore struct {
	records   map[int64]*migration.SlugRecord
	dateRows  map[int64]*migration.DateRecord
	redirects map[string]string // old_slug → new_slug

	slugWrites int
	dateWrites int

	// failSlugAt aborts ApplySlugChange for the given record id, to
	// exercise the batch-abort path.
	failSlugAt int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   make(map[int64]*migration.SlugRecord),
		dateRows:  make(map[int64]*migration.DateRecord),
		redirects: make(map[string]string),
	}
}

func (s *fakeStore) addRecord(r migration.SlugRecord) {
	rec := r
	s.records[r.ID] = &rec
}

func (s *fakeStore) addDateRow(r migration.DateRecord) {
	rec := r
	s.dateRows[r.ID] = &rec
}

func (s *fakeStore) ListSlugRecords(context.Context) ([]migration.SlugRecord, error) {
	out := make([]migration.SlugRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ApplySlugChange(_ context.Context, id int64, oldSlug, newSlug string) error {
	if s.failSlugAt != 0 && id == s.failSlugAt {
		return fmt.Errorf("forced write conflict on record %d", id)
	}
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	s.redirects[oldSlug] = newSlug
	rec.Slug = newSlug
	s.slugWrites++
	return nil
}

func (s *fakeStore) ListDateRecords(context.Context) ([]migration.DateRecord, error) {
	out := make([]migration.DateRecord, 0, len(s.dateRows))
	for _, r := range s.dateRows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ApplyDateChange(_ context.Context, id int64, birth, death dates.Field) error {
	rec, ok := s.dateRows[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	rec.Birth = birth
	rec.Death = death
	s.dateWrites++
	return nil
}

func (s *fakeStore) ListRedirects(context.Context) ([]migration.Redirect, error) {
	out := make([]migration.Redirect, 0, len(s.redirects))
	for old, nw := range s.redirects {
		out = append(out, migration.Redirect{OldSlug: old, NewSlug: nw})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OldSlug < out[j].OldSlug })
	return out, nil
}
