package obituary

import (
	"errors"
	"net/http"
)

// Sentinel errors of the obituary domain. Handlers map them to HTTP
// status codes with errors.Is so wrapping with %w anywhere in the
// chain stays safe.
var (
	// ErrNotFound: the slug resolves to neither a live obituary nor a
	// redirect row.
	ErrNotFound = errors.New("obituary not found")

	// ErrDuplicateSlug: the unique index on obituaries.slug rejected
	// an insert. With slugs allocated through the live allocator this
	// only fires when two creations race on the same name and day.
	ErrDuplicateSlug = errors.New("obituary slug already exists")

	// ErrAmbiguousDatePair: a request carried both the calendar date
	// and the bare year for one field.
	ErrAmbiguousDatePair = errors.New("send either the date or the year, not both")

	// ErrMissingDeathDate: death needs one of date or year.
	ErrMissingDeathDate = errors.New("death date or death year is required")

	// ErrUnsluggableName: name and surname carry no characters a slug
	// could be built from.
	ErrUnsluggableName = errors.New("name and surname contain no usable characters")
)

// GetHTTPStatusCode maps a domain error to its HTTP status.
func GetHTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, ErrAmbiguousDatePair),
		errors.Is(err, ErrMissingDeathDate),
		errors.Is(err, ErrUnsluggableName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
