package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memorial-backend/internal/domains/obituary"
	slugpkg "memorial-backend/internal/shared/slug"

	"github.com/rs/zerolog/log"
)

type obituaryService struct {
	repo      obituary.Repository
	allocator *slugpkg.Allocator
	now       func() time.Time
}

// NewObituaryService wires the repository into the live slug
// allocator: every slug created here goes through the exact same
// transliteration and assembly as the batch backfill, checked against
// the live store instead of an in-run set.
func NewObituaryService(repo obituary.Repository) obituary.Service {
	return &obituaryService{
		repo:      repo,
		allocator: slugpkg.NewAllocator(repo),
		now:       time.Now,
	}
}

func (s *obituaryService) Create(ctx context.Context, req *obituary.CreateObituaryReq) (*obituary.ObituaryResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	birth, err := req.BirthField()
	if err != nil {
		return nil, fmt.Errorf("birth: %w", err)
	}
	death, err := req.DeathField()
	if err != nil {
		return nil, fmt.Errorf("death: %w", err)
	}

	publishedAt := s.now().UTC()

	assigned, err := s.allocator.Allocate(ctx, req.Name, req.Surname, publishedAt)
	if err != nil {
		if errors.Is(err, slugpkg.ErrEmptyIdentity) {
			return nil, obituary.ErrUnsluggableName
		}
		return nil, err
	}

	entity := &obituary.Obituary{
		Name:      req.Name,
		Surname:   req.Surname,
		Slug:      assigned,
		Birth:     birth,
		Death:     death,
		CreatedAt: publishedAt,
	}

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("id", created.ID).
		Str("slug", created.Slug).
		Msg("obituary created")

	return obituary.ToResp(created), nil
}

func (s *obituaryService) GetBySlug(ctx context.Context, slug string) (*obituary.ObituaryResp, error) {
	o, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return obituary.ToResp(o), nil
}

func (s *obituaryService) Resolve(ctx context.Context, slug string) (string, bool, error) {
	return s.repo.ResolveRedirect(ctx, slug)
}
