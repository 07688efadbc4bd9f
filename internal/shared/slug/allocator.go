package slug

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyIdentity is returned by the live allocator when the name
// fields carry no alphanumeric content. The batch backfill falls back
// to the record's primary key in that case, but on the creation path
// no key exists yet, so the input is rejected instead.
var ErrEmptyIdentity = errors.New("name and surname contain no usable characters")

// Checker reports whether a slug is already in use in the live store.
// The obituary repository implements this against BOTH the current
// slugs and the retired old_slug keys of the redirect table: reusing a
// retired slug would make its redirect shadow the new page.
type Checker interface {
	SlugInUse(ctx context.Context, slug string) (bool, error)
}

// Allocator is the go-forward counterpart of Registry. Every code
// path that creates a new obituary must allocate its slug here, with
// the same transliteration and assembly as the batch backfill, or
// global uniqueness silently degrades over time.
type Allocator struct {
	checker Checker
}

func NewAllocator(c Checker) *Allocator {
	return &Allocator{checker: c}
}

// Allocate computes the candidate slug for a new record and resolves
// collisions against the live store with the same "_N" suffix scheme
// the batch uses.
func (a *Allocator) Allocate(ctx context.Context, name, surname string, published time.Time) (string, error) {
	base, ok := Base(name, surname, published)
	if !ok {
		return "", ErrEmptyIdentity
	}

	candidate := base
	for i := 1; ; i++ {
		inUse, err := a.checker.SlugInUse(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug availability check failed: %w", err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}
