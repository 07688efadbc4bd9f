package obituary

import (
	"time"

	"memorial-backend/internal/shared/dates"
)

// ============================================================
// ENTITY: Obituary
// ============================================================
// DATABASE MAPPING:
// ┌───────────────────────────────┐
// │        obituaries table       │
// ├───────────────────────────────┤
// │ id (BIGSERIAL) - PRIMARY KEY  │
// │ name (TEXT)                   │
// │ surname (TEXT)                │
// │ slug (TEXT) - UNIQUE          │
// │ birth_date (DATE, nullable)   │
// │ birth_year (INT, nullable)    │
// │ birth_date_precision (TEXT)   │
// │ death_date (DATE, nullable)   │
// │ death_year (INT, nullable)    │
// │ death_date_precision (TEXT)   │
// │ created_at / updated_at       │
// └───────────────────────────────┘
//
// The slug is assigned exactly once, by the creation path or by the
// batch backfill; normal application writes never touch it.
type Obituary struct {
	ID      int64
	Name    string
	Surname string

	// Slug is the externally visible identifier; globally unique
	// across all obituaries.
	Slug string

	// Birth and Death each hold exactly one of (calendar date, bare
	// year), selected by their precision flag.
	Birth dates.Field
	Death dates.Field

	// CreatedAt doubles as the publish date the slug's DDMMYY
	// component is derived from.
	CreatedAt time.Time
	UpdatedAt time.Time
}
