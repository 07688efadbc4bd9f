package obituary

import "context"

// Repository is the data-access contract of the obituary domain. The
// postgres implementation also backs the migration package's store
// interfaces, so batch and live traffic share one set of queries.
type Repository interface {
	// Create inserts the obituary and returns it with the assigned id.
	// The slug must already be allocated; Create maps a unique-index
	// violation to ErrDuplicateSlug.
	Create(ctx context.Context, o *Obituary) (*Obituary, error)

	// GetBySlug fetches a live obituary; ErrNotFound when absent.
	GetBySlug(ctx context.Context, slug string) (*Obituary, error)

	// ResolveRedirect returns the live slug a retired slug points at.
	ResolveRedirect(ctx context.Context, oldSlug string) (string, bool, error)

	// SlugInUse reports whether a slug is taken by a live obituary or
	// retired into the redirect table. Implements slug.Checker.
	SlugInUse(ctx context.Context, slug string) (bool, error)
}
