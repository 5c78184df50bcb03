package catalog

import (
	"context"
	"fmt"
)

// Service provides business logic for catalog operations. Reads used by
// the matcher go through the Redis snapshot; admin writes invalidate it.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs a catalog service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns a paginated product listing for administration screens.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// Get retrieves one product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Snapshot returns the active catalog as an immutable in-memory slice.
// Document editors pass this into the matcher and the batch parser so one
// edit session sees one consistent catalog state.
func (s *Service) Snapshot(ctx context.Context) ([]Product, error) {
	return s.cache.Snapshot(ctx, s.repo.ListActive)
}

// Suggest filters the snapshot with the free-text matcher.
func (s *Service) Suggest(ctx context.Context, query string) ([]Product, error) {
	products, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, query), nil
}

// Create adds a product and invalidates the snapshot.
func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	p, err := s.repo.Create(ctx, form)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return Product{}, fmt.Errorf("bump catalog cache: %w", err)
	}
	return p, nil
}

// Update replaces a product's fields and invalidates the snapshot.
func (s *Service) Update(ctx context.Context, id int64, form ProductForm) (Product, error) {
	p, err := s.repo.Update(ctx, id, form)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return Product{}, fmt.Errorf("bump catalog cache: %w", err)
	}
	return p, nil
}

// Deactivate soft-deletes a product. Documents keep their snapshots, so
// nothing else changes for already bound items.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return fmt.Errorf("bump catalog cache: %w", err)
	}
	return nil
}

// Import bulk-upserts products, used by the background import job.
func (s *Service) Import(ctx context.Context, forms []ProductForm) (int, error) {
	count, err := s.repo.Upsert(ctx, forms)
	if err != nil {
		return 0, fmt.Errorf("import products: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return 0, fmt.Errorf("bump catalog cache: %w", err)
	}
	return count, nil
}
