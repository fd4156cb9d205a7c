package catalog

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// PublicCatalog catálogo público por slug (sin autenticación), cacheado por empresa.
type PublicCatalog struct {
	companies repository.CompanyRepository
	products  repository.ProductRepository
	photos    repository.ProductPhotoRepository
	cache     CatalogCache
	log       zerolog.Logger
}

// NewPublicCatalog construye el caso de uso.
func NewPublicCatalog(
	companies repository.CompanyRepository,
	products repository.ProductRepository,
	photos repository.ProductPhotoRepository,
	cache CatalogCache,
	log zerolog.Logger,
) *PublicCatalog {
	return &PublicCatalog{companies: companies, products: products, photos: photos, cache: cache, log: log}
}

// BySlug devuelve los productos activos de la empresa. Empresas inactivas no tienen catálogo.
func (uc *PublicCatalog) BySlug(ctx context.Context, slug string) (*dto.PublicCatalogResponse, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	if raw, ok, err := uc.cache.Get(ctx, slug); err != nil {
		uc.log.Warn().Err(err).Str("slug", slug).Msg("cache del catálogo no disponible")
	} else if ok {
		var cached dto.PublicCatalogResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	company, err := uc.companies.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.Active {
		return nil, domain.ErrNotFound
	}

	rows, err := uc.products.List(ctx, company.ID, repository.ProductFilter{Status: entity.ProductActive, Sort: repository.SortNameAsc})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	photos, err := uc.photos.ListByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	categories, err := uc.products.Categories(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	out := &dto.PublicCatalogResponse{
		Company:    company.Name,
		Slug:       company.Slug,
		Categories: categories,
		Products:   make([]dto.PublicProductResponse, 0, len(rows)),
	}
	for _, r := range rows {
		urls := make([]string, 0, len(photos[r.ID]))
		for _, ph := range photos[r.ID] {
			urls = append(urls, ph.URL)
		}
		out.Products = append(out.Products, dto.PublicProductResponse{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Price:       r.Price,
			Category:    r.Category,
			InStock:     r.Stock > 0,
			Photos:      urls,
		})
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := uc.cache.Set(ctx, slug, raw); err != nil {
			uc.log.Warn().Err(err).Str("slug", slug).Msg("no se pudo guardar el catálogo en cache")
		}
	}
	return out, nil
}
