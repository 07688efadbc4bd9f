package obituary

import "context"

// Service is the business-logic contract of the obituary domain.
type Service interface {
	// Create validates the request, allocates the slug through the
	// live allocator and persists the record.
	Create(ctx context.Context, req *CreateObituaryReq) (*ObituaryResp, error)

	// GetBySlug fetches a live obituary by its current slug.
	GetBySlug(ctx context.Context, slug string) (*ObituaryResp, error)

	// Resolve follows a retired slug one hop to its replacement.
	Resolve(ctx context.Context, slug string) (string, bool, error)
}
