package provider

import (
	"context"
	"fmt"

	"github.com/Belphemur/titlovi/internal/models"
)

// Registry routes requests to the provider of their content type
type Registry struct {
	providers map[models.ContentType]Provider
	ordered   []Provider
}

// NewRegistry creates a Registry. A later provider replaces an earlier one of
// the same content type.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.ContentType]Provider, len(providers))}
	for _, p := range providers {
		if _, exists := r.providers[p.ContentType()]; !exists {
			r.ordered = append(r.ordered, p)
		} else {
			for i, existing := range r.ordered {
				if existing.ContentType() == p.ContentType() {
					r.ordered[i] = p
				}
			}
		}
		r.providers[p.ContentType()] = p
	}
	return r
}

// NewDefaultRegistry registers the movie and episode providers
func NewDefaultRegistry(deps Dependencies) *Registry {
	return NewRegistry(NewMovieProvider(deps), NewEpisodeProvider(deps))
}

// Providers returns the registered providers in registration order
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Provider returns the provider for contentType
func (r *Registry) Provider(contentType models.ContentType) (Provider, bool) {
	p, ok := r.providers[contentType]
	return p, ok
}

// Search dispatches req by its content type
func (r *Registry) Search(ctx context.Context, req models.SearchRequest) ([]models.RankedCandidate, error) {
	p, ok := r.providers[req.ContentType]
	if !ok {
		return nil, fmt.Errorf("no provider for content type %s", req.ContentType)
	}
	return p.Search(ctx, req)
}

// Fetch decodes id to find the provider that issued it
func (r *Registry) Fetch(ctx context.Context, id string) (*models.FetchResult, error) {
	meta, err := DecodeID(id)
	if err != nil {
		return nil, err
	}
	p, ok := r.providers[meta.Type]
	if !ok {
		return nil, fmt.Errorf("no provider for content type %s", meta.Type)
	}
	return p.Fetch(ctx, id)
}
