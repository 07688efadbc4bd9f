package slug_test

import (
	"context"
	"testing"
	"time"

	"memorial-backend/internal/shared/slug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase diacritics", "šušteršič", "sustersic"},
		{"uppercase folds to lowercase replacement", "Žan", "zan"},
		{"dj digraph both cases", "Đorđe", "djordje"},
		{"unmapped characters untouched", "Müller-Østergård", "Müller-Østergård"},
		{"case outside the table preserved", "NOVAK", "NOVAK"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Transliterate(tt.input))
		})
	}
}

func TestDateComponent(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero padding", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), "050326"},
		{"two-digit year wrap", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "010100"},
		{"end of year", time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), "311299"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.DateComponent(tt.in))
		})
	}
}

// Slugs must not depend on the host timezone: the same instant yields
// the same component whether the timestamp arrives in UTC or CET.
func TestDateComponentNormalizesToUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	// 2026-01-01 00:30 CET is still 2025-12-31 23:30 UTC.
	local := time.Date(2026, 1, 1, 0, 30, 0, 0, cet)

	assert.Equal(t, "311225", slug.DateComponent(local))
	assert.Equal(t, slug.DateComponent(local.UTC()), slug.DateComponent(local))
}

func TestBase(t *testing.T) {
	published := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	t.Run("worked example", func(t *testing.T) {
		got, ok := slug.Base("Žan", "Šušteršič", published)
		require.True(t, ok)
		assert.Equal(t, "zan_sustersic_050326", got)
	})

	t.Run("whitespace runs collapse to single underscore", func(t *testing.T) {
		got, ok := slug.Base("Ana  Marija", "Novak Kranjc", published)
		require.True(t, ok)
		assert.Equal(t, "Ana_Marija_Novak_Kranjc_050326", got)
	})

	t.Run("empty identity is signalled, not slugged", func(t *testing.T) {
		_, ok := slug.Base("", "", published)
		assert.False(t, ok)
	})

	t.Run("purely symbolic identity is signalled", func(t *testing.T) {
		_, ok := slug.Base("***", "---", published)
		assert.False(t, ok)
	})
}

func TestFallback(t *testing.T) {
	published := time.Date(2025, 7, 9, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "obit_42_090725", slug.Fallback(42, published))
}

func TestRegistryClaim(t *testing.T) {
	t.Run("first claim is the base itself", func(t *testing.T) {
		r := slug.NewRegistry()
		assert.Equal(t, "ana_novak_010124", r.Claim("ana_novak_010124"))
	})

	t.Run("collisions get incrementing suffixes", func(t *testing.T) {
		r := slug.NewRegistry()
		assert.Equal(t, "ana_novak_010124", r.Claim("ana_novak_010124"))
		assert.Equal(t, "ana_novak_010124_1", r.Claim("ana_novak_010124"))
		assert.Equal(t, "ana_novak_010124_2", r.Claim("ana_novak_010124"))
		assert.Equal(t, 3, r.Len())
	})

	t.Run("suffix skips values claimed out of band", func(t *testing.T) {
		r := slug.NewRegistry()
		r.Claim("x_010124_1")
		r.Claim("x_010124")
		// "_1" is taken, so the next collision jumps to "_2".
		assert.Equal(t, "x_010124_2", r.Claim("x_010124"))
	})

	t.Run("Has reflects claims", func(t *testing.T) {
		r := slug.NewRegistry()
		r.Claim("a")
		assert.True(t, r.Has("a"))
		assert.False(t, r.Has("b"))
	})
}

// fakeChecker simulates the live store for allocator tests.
type fakeChecker struct {
	used map[string]bool
	err  error
}

func (f *fakeChecker) SlugInUse(_ context.Context, s string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.used[s], nil
}

func TestAllocator(t *testing.T) {
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("free base is taken as-is", func(t *testing.T) {
		a := slug.NewAllocator(&fakeChecker{used: map[string]bool{}})
		got, err := a.Allocate(context.Background(), "Ana", "Novak", published)
		require.NoError(t, err)
		assert.Equal(t, "Ana_Novak_010124", got)
	})

	t.Run("suffixes past occupied slugs", func(t *testing.T) {
		a := slug.NewAllocator(&fakeChecker{used: map[string]bool{
			"Ana_Novak_010124":   true,
			"Ana_Novak_010124_1": true,
		}})
		got, err := a.Allocate(context.Background(), "Ana", "Novak", published)
		require.NoError(t, err)
		assert.Equal(t, "Ana_Novak_010124_2", got)
	})

	t.Run("empty identity is rejected", func(t *testing.T) {
		a := slug.NewAllocator(&fakeChecker{used: map[string]bool{}})
		_, err := a.Allocate(context.Background(), " ", " ", published)
		assert.ErrorIs(t, err, slug.ErrEmptyIdentity)
	})
}
