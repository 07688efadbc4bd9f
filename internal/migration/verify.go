package migration

import (
	"context"
	"fmt"
)

// Redirect is one row of the slug_redirects table.
type Redirect struct {
	OldSlug string
	NewSlug string
}

// VerifyStore is the read-only boundary of the verification pass.
type VerifyStore interface {
	ListSlugRecords(ctx context.Context) ([]SlugRecord, error)
	ListRedirects(ctx context.Context) ([]Redirect, error)
	ListDateRecords(ctx context.Context) ([]DateRecord, error)
}

// Report collects every invariant violation found in one pass. It
// writes nothing; violations are the operator's to act on.
type Report struct {
	DuplicateSlugs     []string
	RedirectChains     []string
	DatePairViolations []string
}

// OK reports whether the pass found a clean data set.
func (r Report) OK() bool {
	return len(r.DuplicateSlugs) == 0 &&
		len(r.RedirectChains) == 0 &&
		len(r.DatePairViolations) == 0
}

// Verify checks the three migration invariants against live data:
// global slug uniqueness, no redirect chains (a new_slug never appears
// as an old_slug key), and the date precision pair invariant.
func Verify(ctx context.Context, store VerifyStore) (Report, error) {
	var report Report

	records, err := store.ListSlugRecords(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list records: %w", err)
	}

	seen := make(map[string]int64, len(records))
	for _, rec := range records {
		if firstID, dup := seen[rec.Slug]; dup {
			report.DuplicateSlugs = append(report.DuplicateSlugs,
				fmt.Sprintf("slug %q held by records %d and %d", rec.Slug, firstID, rec.ID))
			continue
		}
		seen[rec.Slug] = rec.ID
	}

	redirects, err := store.ListRedirects(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list redirects: %w", err)
	}

	oldKeys := make(map[string]struct{}, len(redirects))
	for _, r := range redirects {
		oldKeys[r.OldSlug] = struct{}{}
	}
	for _, r := range redirects {
		if _, chained := oldKeys[r.NewSlug]; chained {
			report.RedirectChains = append(report.RedirectChains,
				fmt.Sprintf("redirect %q → %q points at a retired slug", r.OldSlug, r.NewSlug))
		}
	}

	dateRecords, err := store.ListDateRecords(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list date records: %w", err)
	}
	for _, rec := range dateRecords {
		if err := rec.Birth.Validate(true); err != nil {
			report.DatePairViolations = append(report.DatePairViolations,
				fmt.Sprintf("record %d: birth: %v", rec.ID, err))
		}
		if err := rec.Death.Validate(false); err != nil {
			report.DatePairViolations = append(report.DatePairViolations,
				fmt.Sprintf("record %d: death: %v", rec.ID, err))
		}
	}

	return report, nil
}
