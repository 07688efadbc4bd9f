package dates

import (
	"errors"
	"fmt"
	"time"
)

// ============================================================
// DATE PRECISION
// ============================================================
// Birth and death dates are stored in exactly one of two shapes:
//
//	full  → calendar date set, year column NULL
//	year  → calendar date NULL, year column set
//
// The precision flag says which shape is authoritative. Legacy rows
// encoded "we only know the year" as an artificial December 31st; the
// resolver below retires that encoding.

// Precision says whether a date field holds a full calendar date or
// only a year.
type Precision string

const (
	Full Precision = "full"
	Year Precision = "year"
)

var (
	// ErrPairViolation marks a date field whose (date, year) pair
	// contradicts its precision flag. The migration treats this as
	// fatal and aborts before committing the record.
	ErrPairViolation = errors.New("date precision pair violates invariant")

	// ErrEmptyPair marks a field with neither date nor year where the
	// schema requires one (death dates were mandatory before the
	// split, so an empty death pair can only be produced by a bug).
	ErrEmptyPair = errors.New("date precision pair is empty")
)

// Field is one birth-or-death date in the split representation.
type Field struct {
	Date      *time.Time
	Year      *int
	Precision Precision
}

// FullDate builds a full-precision field.
func FullDate(t time.Time) Field {
	return Field{Date: &t, Precision: Full}
}

// YearOnly builds a year-precision field.
func YearOnly(y int) Field {
	return Field{Year: &y, Precision: Year}
}

// Empty reports whether the field carries no value at all. Only birth
// fields are allowed to stay in this state (wholly unknown birth date
// on a legacy row).
func (f Field) Empty() bool {
	return f.Date == nil && f.Year == nil
}

// IsYearOnlySentinel is the single named home of the legacy encoding
// rule: a calendar date on December 31st stands for "year only". The
// rule has an irreducible false-positive rate for people who genuinely
// died on a December 31st; the source data carries no signal that
// could tell the two apart, so the loss is accepted rather than
// guessed around. Keep the rule here so it can be audited or swapped
// without touching call sites.
func IsYearOnlySentinel(t time.Time) bool {
	return t.Day() == 31 && t.Month() == time.December
}

// Resolve classifies a legacy calendar date into the split
// representation. A nil input yields an empty full-precision field;
// a sentinel date is demoted to its year; anything else stays a full
// date.
func Resolve(d *time.Time) Field {
	if d == nil {
		return Field{Precision: Full}
	}
	if IsYearOnlySentinel(*d) {
		return YearOnly(d.Year())
	}
	return FullDate(*d)
}

// Validate enforces the pair invariant: precision full ⇒ date set and
// year unset, precision year ⇒ date unset and year set. allowEmpty
// permits the all-NULL state (birth fields only).
func (f Field) Validate(allowEmpty bool) error {
	switch f.Precision {
	case Full:
		if f.Date == nil && f.Year == nil {
			if allowEmpty {
				return nil
			}
			return ErrEmptyPair
		}
		if f.Date == nil || f.Year != nil {
			return fmt.Errorf("%w: precision=full date=%v year=%v", ErrPairViolation, f.Date, f.Year)
		}
	case Year:
		if f.Year == nil || f.Date != nil {
			return fmt.Errorf("%w: precision=year date=%v year=%v", ErrPairViolation, f.Date, f.Year)
		}
	default:
		return fmt.Errorf("%w: unknown precision %q", ErrPairViolation, f.Precision)
	}
	return nil
}

// Equal compares two fields by value.
func (f Field) Equal(o Field) bool {
	if f.Precision != o.Precision {
		return false
	}
	if (f.Date == nil) != (o.Date == nil) || (f.Year == nil) != (o.Year == nil) {
		return false
	}
	if f.Date != nil && !f.Date.Equal(*o.Date) {
		return false
	}
	if f.Year != nil && *f.Year != *o.Year {
		return false
	}
	return true
}

// Collapse is the lossy inverse transform: a year-only field is
// reconstructed as the December 31st sentinel. It cannot know whether
// the original value was a genuine December 31st before the forward
// migration ran; any rollback path that calls this accepts that loss.
// Nothing invokes it implicitly.
func Collapse(f Field) *time.Time {
	if f.Precision == Year && f.Year != nil {
		t := time.Date(*f.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return f.Date
}
