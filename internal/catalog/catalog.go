package catalog

import (
	"context"
	"log/slog"

	"github.com/modacart/backend/internal/domain"
	"github.com/modacart/backend/internal/repository"
	apperrors "github.com/modacart/backend/pkg/errors"
)

// Service answers catalog lookups for the cart engine. Stock and price
// reads always hit the document store so reconciliation never acts on
// stale numbers; only display projections go through the Redis cache.
type Service struct {
	products repository.ProductRepository
	sizes    repository.SizeRepository
	cache    *Cache
	logger   *slog.Logger
}

func NewService(products repository.ProductRepository, sizes repository.SizeRepository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		sizes:    sizes,
		cache:    cache,
		logger:   logger,
	}
}

// Availability returns the product and its variant in the given size,
// reading fresh from the store. A missing or unavailable product is a
// not-found error; a missing variant returns a nil variant because the
// caller decides whether that means invalid input or zero stock.
func (s *Service) Availability(ctx context.Context, productID, sizeID string) (*domain.Product, *domain.Variant, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if !product.IsAvailable {
		return nil, nil, apperrors.NotFoundMsg("product not found")
	}
	return product, product.VariantBySize(sizeID), nil
}

// DisplayRefs resolves display projections for the given product and size
// ids, read-through cached. Ids whose documents no longer exist resolve to
// an id-only projection so cart views keep rendering after catalog
// deletions.
func (s *Service) DisplayRefs(ctx context.Context, productIDs, sizeIDs []string) (map[string]domain.ProductRef, map[string]domain.SizeRef, error) {
	productRefs, missingProducts := s.cachedProductRefs(ctx, productIDs)
	sizeRefs, missingSizes := s.cachedSizeRefs(ctx, sizeIDs)

	if len(missingProducts) > 0 {
		products, err := s.products.FindByIDs(ctx, missingProducts)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range missingProducts {
			p, ok := products[id]
			if !ok {
				productRefs[id] = domain.ProductRef{ID: id}
				continue
			}
			ref := p.Ref()
			productRefs[id] = ref
			if err := s.cache.SetProductRef(ctx, ref); err != nil {
				s.logger.WarnContext(ctx, "failed to cache product ref",
					slog.String("product_id", id),
					slog.String("error", err.Error()))
			}
		}
	}

	if len(missingSizes) > 0 {
		sizes, err := s.sizes.FindByIDs(ctx, missingSizes)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range missingSizes {
			sz, ok := sizes[id]
			if !ok {
				sizeRefs[id] = domain.SizeRef{ID: id}
				continue
			}
			ref := sz.Ref()
			sizeRefs[id] = ref
			if err := s.cache.SetSizeRef(ctx, ref); err != nil {
				s.logger.WarnContext(ctx, "failed to cache size ref",
					slog.String("size_id", id),
					slog.String("error", err.Error()))
			}
		}
	}

	return productRefs, sizeRefs, nil
}

func (s *Service) cachedProductRefs(ctx context.Context, ids []string) (map[string]domain.ProductRef, []string) {
	refs := make(map[string]domain.ProductRef, len(ids))
	var missing []string
	for _, id := range dedupe(ids) {
		ref, ok, err := s.cache.GetProductRef(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "product ref cache read failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()))
		}
		if ok {
			refs[id] = ref
			continue
		}
		missing = append(missing, id)
	}
	return refs, missing
}

func (s *Service) cachedSizeRefs(ctx context.Context, ids []string) (map[string]domain.SizeRef, []string) {
	refs := make(map[string]domain.SizeRef, len(ids))
	var missing []string
	for _, id := range dedupe(ids) {
		ref, ok, err := s.cache.GetSizeRef(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "size ref cache read failed",
				slog.String("size_id", id),
				slog.String("error", err.Error()))
		}
		if ok {
			refs[id] = ref
			continue
		}
		missing = append(missing, id)
	}
	return refs, missing
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
