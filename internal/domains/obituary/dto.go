package obituary

import (
	"time"

	"memorial-backend/internal/shared/dates"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

// CreateObituaryReq is the creation-path request body. Per date pair
// the client sends either the calendar date or the bare year, never
// both; the precision flag is derived, not client-supplied.
type CreateObituaryReq struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`

	BirthDate *string `json:"birth_date,omitempty"` // "2006-01-02"
	BirthYear *int    `json:"birth_year,omitempty"`

	DeathDate *string `json:"death_date,omitempty"`
	DeathYear *int    `json:"death_year,omitempty"`
}

func (r CreateObituaryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Surname, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.BirthDate, validation.Date(dateLayout)),
		validation.Field(&r.DeathDate, validation.Date(dateLayout)),
		validation.Field(&r.BirthYear, validation.Min(1), validation.Max(9999)),
		validation.Field(&r.DeathYear, validation.Min(1), validation.Max(9999)),
	)
}

// BirthField converts the request pair into the split representation.
// Returns ErrAmbiguousDatePair when both shapes were sent.
func (r CreateObituaryReq) BirthField() (dates.Field, error) {
	return fieldFromReq(r.BirthDate, r.BirthYear)
}

// DeathField converts the death pair; unlike birth, one of the two
// shapes is mandatory.
func (r CreateObituaryReq) DeathField() (dates.Field, error) {
	f, err := fieldFromReq(r.DeathDate, r.DeathYear)
	if err != nil {
		return f, err
	}
	if f.Empty() {
		return f, ErrMissingDeathDate
	}
	return f, nil
}

func fieldFromReq(date *string, year *int) (dates.Field, error) {
	if date != nil && year != nil {
		return dates.Field{}, ErrAmbiguousDatePair
	}
	if date != nil {
		t, err := time.Parse(dateLayout, *date)
		if err != nil {
			return dates.Field{}, err
		}
		return dates.FullDate(t), nil
	}
	if year != nil {
		return dates.YearOnly(*year), nil
	}
	return dates.Field{Precision: dates.Full}, nil
}

// ObituaryResp is the wire shape of an obituary.
type ObituaryResp struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Slug    string `json:"slug"`

	BirthDate          *string         `json:"birth_date,omitempty"`
	BirthYear          *int            `json:"birth_year,omitempty"`
	BirthDatePrecision dates.Precision `json:"birth_date_precision"`

	DeathDate          *string         `json:"death_date,omitempty"`
	DeathYear          *int            `json:"death_year,omitempty"`
	DeathDatePrecision dates.Precision `json:"death_date_precision"`

	CreatedAt time.Time `json:"created_at"`
}

func ToResp(o *Obituary) *ObituaryResp {
	return &ObituaryResp{
		ID:                 o.ID,
		Name:               o.Name,
		Surname:            o.Surname,
		Slug:               o.Slug,
		BirthDate:          formatDate(o.Birth.Date),
		BirthYear:          o.Birth.Year,
		BirthDatePrecision: o.Birth.Precision,
		DeathDate:          formatDate(o.Death.Date),
		DeathYear:          o.Death.Year,
		DeathDatePrecision: o.Death.Precision,
		CreatedAt:          o.CreatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
