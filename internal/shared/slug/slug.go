package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ============================================================
// SLUG GENERATION
// ============================================================
// A slug is the externally visible identifier of an obituary page:
//
//	"Žan Šušteršič" published 2026-03-05 → "zan_sustersic_050326"
//
// The pipeline is fixed and deliberately small:
// 1. Transliterate name and surname (fixed five-character table)
// 2. Derive the DDMMYY publish-date component
// 3. Assemble "{first}_{last}_{DDMMYY}", collapsing whitespace runs
// 4. Resolve collisions with an incrementing "_N" suffix (Registry)
//
// Everything downstream (redirects, backfill, the creation path)
// depends on this pipeline being deterministic, so no step may look
// at anything but its inputs.

// translitTable is the ONLY folding the generator performs. It covers
// the five diacritics of the source data's alphabet, matched in both
// cases; the replacement is always lowercase. This is intentionally
// NOT a general Unicode normalization: ü, é, ø and friends pass
// through untouched, as does the case of every unmapped character.
var translitTable = map[rune]string{
	'š': "s", 'Š': "s",
	'č': "c", 'Č': "c",
	'ć': "c", 'Ć': "c",
	'ž': "z", 'Ž': "z",
	'đ': "dj", 'Đ': "dj",
}

// whitespaceRun matches one or more whitespace characters so that
// "Ana  Marija" and "Ana Marija" assemble to the same slug.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Transliterate applies the fixed diacritic table to s.
// Characters outside the table are returned unchanged.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := translitTable[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DateComponent renders the publish timestamp as a 6-digit DDMMYY
// string. The timestamp is normalized to UTC first: slugs must come
// out byte-identical no matter which host or TZ the batch runs on.
func DateComponent(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// Base assembles the candidate slug for a name/surname pair published
// at the given time. The second return value reports whether the name
// portion carried any alphanumeric content; when it is false the
// caller must fall back to Fallback (historical backfill) or reject
// the input (creation path).
func Base(name, surname string, published time.Time) (string, bool) {
	first := Transliterate(name)
	last := Transliterate(surname)

	identity := first + "_" + last
	if !containsAlphanumeric(identity) {
		return "", false
	}

	assembled := identity + "_" + DateComponent(published)
	return whitespaceRun.ReplaceAllString(assembled, "_"), true
}

// Fallback builds the "obit_{id}_{DDMMYY}" slug used when a record's
// name fields carry nothing usable. The primary key guarantees
// non-emptiness and makes a collision with a name-derived slug
// practically impossible.
func Fallback(id int64, published time.Time) string {
	return fmt.Sprintf("obit_%d_%s", id, DateComponent(published))
}

func containsAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
