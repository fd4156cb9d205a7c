// Package catalog implementa el ciclo de vida de productos (active → inactive → deleted) con el
// movimiento de sus fotos en el storage, la importación CSV y el catálogo público.
package catalog

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	domcatalog "github.com/raposo-pdv/pdv-api/internal/domain/catalog"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

const (
	MaxPhotosPerProduct = 10
	MaxPhotoBytes       = 5 << 20
	// stock es INTEGER en la tabla products.
	MaxStock = math.MaxInt32
)

// MaxPrice primer valor que no cabe en price NUMERIC(12,2).
var MaxPrice = decimal.New(1, 10)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ProductLifecycle casos de uso de producto. Toda transición de status y sus movimientos de
// fotos se confirman juntos o no se confirman: los movimientos hechos antes de un fallo se
// revierten y la transacción hace rollback.
type ProductLifecycle struct {
	tx        TxRunner
	products  repository.ProductRepository
	photos    repository.ProductPhotoRepository
	companies repository.CompanyRepository
	storage   PhotoStorage
	cache     CatalogCache
	clock     ports.Clock
	log       zerolog.Logger
}

// NewProductLifecycle construye el caso de uso.
func NewProductLifecycle(
	tx TxRunner,
	products repository.ProductRepository,
	photos repository.ProductPhotoRepository,
	companies repository.CompanyRepository,
	storage PhotoStorage,
	cache CatalogCache,
	clock ports.Clock,
	log zerolog.Logger,
) *ProductLifecycle {
	return &ProductLifecycle{
		tx:        tx,
		products:  products,
		photos:    photos,
		companies: companies,
		storage:   storage,
		cache:     cache,
		clock:     clock,
		log:       log,
	}
}

// Create da de alta un producto activo y sube sus fotos a {slug}/{hoy}/products/{id}.
func (uc *ProductLifecycle) Create(ctx context.Context, companyID int64, in dto.CreateProductRequest) (*dto.CreatedProductResponse, error) {
	if err := validateProduct(in.ProductInput); err != nil {
		return nil, err
	}
	if err := validatePhotos(in.Photos); err != nil {
		return nil, err
	}
	if len(in.Photos) > MaxPhotosPerProduct {
		return nil, domain.Invalid("imagens", fmt.Sprintf("máximo de %d fotos por produto", MaxPhotosPerProduct))
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	product := &entity.Product{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Code:        defaultCode(in.Code),
		Status:      entity.ProductActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	journal := newPhotoJournal(uc.storage, uc.log)
	err = uc.tx.RunCatalog(ctx, func(products repository.ProductRepository, photos repository.ProductPhotoRepository, _ repository.SaleRepository) error {
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		return uc.uploadPhotos(ctx, photos, journal, company.Slug, now, domcatalog.FolderActive, product.ID, in.Photos)
	})
	if err != nil {
		journal.undo(ctx)
		return nil, err
	}

	uc.invalidate(ctx, company.Slug)
	uc.log.Info().
		Int64("company_id", companyID).
		Int64("product_id", product.ID).
		Int("photos", len(in.Photos)).
		Msg("produto criado")
	return &dto.CreatedProductResponse{Message: "Produto criado com sucesso!", ProductID: product.ID}, nil
}

// Update edita campos, sube fotos nuevas a la carpeta del status actual y borra las removidas.
// Las fotos removidas se borran del storage después del commit; un fallo ahí solo se registra.
func (uc *ProductLifecycle) Update(ctx context.Context, companyID, id int64, in dto.UpdateProductRequest) error {
	if err := validateProduct(in.ProductInput); err != nil {
		return err
	}
	if err := validatePhotos(in.Photos); err != nil {
		return err
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	journal := newPhotoJournal(uc.storage, uc.log)
	var removed []entity.ProductPhoto
	err = uc.tx.RunCatalog(ctx, func(products repository.ProductRepository, photos repository.ProductPhotoRepository, _ repository.SaleRepository) error {
		p, err := products.Lock(ctx, companyID, id)
		if err != nil {
			return err
		}
		if p == nil || p.Status == entity.ProductDeleted {
			return domain.ErrNotFound
		}
		folder, err := domcatalog.FolderFor(p.Status)
		if err != nil {
			return err
		}

		if ids := photoRefIDs(in.Remove); len(ids) > 0 {
			if removed, err = photos.Delete(ctx, p.ID, ids); err != nil {
				return err
			}
		}
		count, err := photos.CountByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if count+len(in.Photos) > MaxPhotosPerProduct {
			return domain.Invalid("imagens", fmt.Sprintf("máximo de %d fotos por produto", MaxPhotosPerProduct))
		}

		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.Stock = in.Stock
		p.Category = in.Category
		p.Code = defaultCode(in.Code)
		p.UpdatedAt = now
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		return uc.uploadPhotos(ctx, photos, journal, company.Slug, now, folder, p.ID, in.Photos)
	})
	if err != nil {
		journal.undo(ctx)
		return err
	}

	uc.purge(ctx, removed)
	uc.invalidate(ctx, company.Slug)
	return nil
}

// Deactivate pasa el producto a inactive y mueve sus fotos a {slug}/{hoy}/inactive/{id}.
func (uc *ProductLifecycle) Deactivate(ctx context.Context, companyID, id int64) error {
	return uc.transition(ctx, companyID, id, entity.ProductActive, entity.ProductInactive)
}

// Reactivate vuelve el producto a active y mueve sus fotos a {slug}/{hoy}/products/{id}.
func (uc *ProductLifecycle) Reactivate(ctx context.Context, companyID, id int64) error {
	return uc.transition(ctx, companyID, id, entity.ProductInactive, entity.ProductActive)
}

// transition aborta en el primer movimiento fallido en ambos sentidos.
func (uc *ProductLifecycle) transition(ctx context.Context, companyID, id int64, from, to entity.ProductStatus) error {
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return err
	}
	target, err := domcatalog.FolderFor(to)
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	journal := newPhotoJournal(uc.storage, uc.log)
	moved := 0
	err = uc.tx.RunCatalog(ctx, func(products repository.ProductRepository, photos repository.ProductPhotoRepository, _ repository.SaleRepository) error {
		p, err := products.Lock(ctx, companyID, id)
		if err != nil {
			return err
		}
		if p == nil || p.Status == entity.ProductDeleted {
			return domain.ErrNotFound
		}
		if p.Status != from {
			return domain.ErrInvalidTransition
		}

		list, err := photos.ListByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, ph := range list {
			if !domcatalog.Managed(ph.PublicID, company.Slug) || domcatalog.InFolder(ph.PublicID, target) {
				continue
			}
			dest := domcatalog.Relocate(ph.PublicID, company.Slug, now, target, p.ID)
			obj, err := uc.storage.Rename(ctx, ph.PublicID, dest)
			if err != nil {
				return fmt.Errorf("mover foto %d (%s): %w", ph.ID, ph.PublicID, err)
			}
			journal.moved(ph.PublicID, obj.PublicID)
			if err := photos.UpdateLocation(ctx, ph.ID, obj.PublicID, obj.URL); err != nil {
				return err
			}
			moved++
		}
		return products.SetStatus(ctx, companyID, p.ID, to)
	})
	if err != nil {
		journal.undo(ctx)
		uc.log.Warn().Err(err).
			Int64("product_id", id).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("transición de producto revertida")
		return err
	}

	uc.invalidate(ctx, company.Slug)
	uc.log.Info().
		Int64("product_id", id).
		Str("status", string(to)).
		Int("photos_moved", moved).
		Msg("status de produto alterado")
	return nil
}

// DeactivateMany inactiva en masa sin mover fotos: las fotos quedan en la carpeta en la que
// estaban hasta la próxima transición individual.
func (uc *ProductLifecycle) DeactivateMany(ctx context.Context, companyID int64, ids []int64) (*dto.BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.Invalid("ids", "informe ao menos um produto")
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	n, err := uc.products.SetStatusMany(ctx, companyID, ids, entity.ProductInactive)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, company.Slug)
	return &dto.BulkResult{Message: fmt.Sprintf("%d produto(s) inativado(s).", n), Affected: n}, nil
}

// DeletePermanently marca los productos como deleted y borra sus fotos. Si alguno aparece en
// una venda no se cambia nada.
func (uc *ProductLifecycle) DeletePermanently(ctx context.Context, companyID int64, ids []int64) (*dto.BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.Invalid("ids", "informe ao menos um produto")
	}
	company, err := uc.company(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var removed []entity.ProductPhoto
	var affected int64
	err = uc.tx.RunCatalog(ctx, func(products repository.ProductRepository, photos repository.ProductPhotoRepository, sales repository.SaleRepository) error {
		owned, err := products.CountOwned(ctx, companyID, ids)
		if err != nil {
			return err
		}
		if owned != len(ids) {
			return domain.ErrNotFound
		}
		referenced, err := sales.ReferencedProducts(ctx, ids)
		if err != nil {
			return err
		}
		if len(referenced) > 0 {
			return fmt.Errorf("%w: %v", domain.ErrProductInUse, referenced)
		}
		if removed, err = photos.DeleteByProducts(ctx, ids); err != nil {
			return err
		}
		affected, err = products.SetStatusMany(ctx, companyID, ids, entity.ProductDeleted)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.purge(ctx, removed)
	uc.invalidate(ctx, company.Slug)
	uc.log.Info().Int64("company_id", companyID).Int64("products", affected).Int("photos", len(removed)).Msg("produtos excluídos")
	return &dto.BulkResult{Message: fmt.Sprintf("%d produto(s) excluído(s).", affected), Affected: affected}, nil
}

// List productos activos con la primera foto.
func (uc *ProductLifecycle) List(ctx context.Context, companyID int64, sort, search string) ([]dto.ProductListItem, error) {
	return uc.list(ctx, companyID, repository.ProductFilter{
		Status: entity.ProductActive,
		Sort:   NormalizeSort(sort),
		Search: strings.TrimSpace(search),
	})
}

// ListInactive productos inactivos.
func (uc *ProductLifecycle) ListInactive(ctx context.Context, companyID int64) ([]dto.ProductListItem, error) {
	return uc.list(ctx, companyID, repository.ProductFilter{Status: entity.ProductInactive, Sort: repository.SortNameAsc})
}

func (uc *ProductLifecycle) list(ctx context.Context, companyID int64, f repository.ProductFilter) ([]dto.ProductListItem, error) {
	rows, err := uc.products.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductListItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductListItem{
			ID:       r.ID,
			Name:     r.Name,
			Price:    r.Price,
			Stock:    r.Stock,
			Category: r.Category,
			Code:     r.Code,
			Status:   string(r.Status),
			PhotoURL: r.PhotoURL,
		})
	}
	return out, nil
}

// Get detalle del producto con sus fotos. Productos borrados no se exponen.
func (uc *ProductLifecycle) Get(ctx context.Context, companyID, id int64) (*dto.ProductResponse, error) {
	p, err := uc.products.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status == entity.ProductDeleted {
		return nil, domain.ErrNotFound
	}
	photos, err := uc.photos.ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p, photos), nil
}

// NormalizeSort devuelve el orden pedido o nome-asc si no es uno de los conocidos.
func NormalizeSort(sort string) string {
	switch sort {
	case repository.SortPriceAsc, repository.SortPriceDesc, repository.SortNameAsc, repository.SortIDAsc, repository.SortIDDesc:
		return sort
	}
	return repository.SortNameAsc
}

func (uc *ProductLifecycle) uploadPhotos(
	ctx context.Context,
	photos repository.ProductPhotoRepository,
	journal *photoJournal,
	slug string,
	at time.Time,
	folder domcatalog.Folder,
	productID int64,
	files []dto.PhotoUpload,
) error {
	for _, f := range files {
		publicID := domcatalog.PublicID(slug, at, folder, productID, uuid.NewString()+photoExt(f))
		obj, err := uc.storage.Upload(ctx, publicID, f.Content, f.ContentType)
		if err != nil {
			return fmt.Errorf("upload da foto %q: %w", f.Filename, err)
		}
		journal.upload(obj.PublicID)
		if err := photos.Create(ctx, &entity.ProductPhoto{ProductID: productID, URL: obj.URL, PublicID: obj.PublicID}); err != nil {
			return err
		}
	}
	return nil
}

// purge borra del storage fotos que ya no existen en la DB.
func (uc *ProductLifecycle) purge(ctx context.Context, removed []entity.ProductPhoto) {
	if len(removed) == 0 {
		return
	}
	ids := make([]string, 0, len(removed))
	for _, ph := range removed {
		ids = append(ids, ph.PublicID)
	}
	if err := uc.storage.Delete(context.WithoutCancel(ctx), ids); err != nil {
		uc.log.Warn().Err(err).Strs("public_ids", ids).Msg("fotos borradas en DB pero no en el storage")
	}
}

func (uc *ProductLifecycle) invalidate(ctx context.Context, slug string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, slug); err != nil {
		uc.log.Warn().Err(err).Str("slug", slug).Msg("no se pudo invalidar el cache del catálogo")
	}
}

func (uc *ProductLifecycle) company(ctx context.Context, companyID int64) (*entity.Company, error) {
	c, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func validateProduct(in dto.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("nome", "nome é obrigatório")
	}
	if in.Price.LessThan(decimal.Zero) {
		return domain.Invalid("preco", "preço não pode ser negativo")
	}
	if !priceFits(in.Price) {
		return domain.Invalid("preco", "preço acima do máximo permitido")
	}
	if in.Stock < 0 {
		return domain.Invalid("estoque", "estoque não pode ser negativo")
	}
	if in.Stock > MaxStock {
		return domain.Invalid("estoque", "estoque acima do máximo permitido")
	}
	return nil
}

// priceFits compara ya redondeado a centavos, como lo guarda Postgres.
func priceFits(price decimal.Decimal) bool {
	return price.Round(2).LessThan(MaxPrice)
}

func validatePhotos(files []dto.PhotoUpload) error {
	for _, f := range files {
		if _, ok := photoExtensions[f.ContentType]; !ok {
			return domain.Invalid("imagens", "formato de imagem não suportado: "+f.ContentType)
		}
		if f.Size > MaxPhotoBytes {
			return domain.Invalid("imagens", fmt.Sprintf("%s excede %d MB", f.Filename, MaxPhotoBytes>>20))
		}
	}
	return nil
}

func photoExt(f dto.PhotoUpload) string {
	if ext := strings.ToLower(filepath.Ext(f.Filename)); ext != "" {
		return ext
	}
	return photoExtensions[f.ContentType]
}

func defaultCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "0"
	}
	return code
}

func photoRefIDs(refs []dto.PhotoRef) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return uniqueIDs(ids)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toProductResponse(p *entity.Product, photos []entity.ProductPhoto) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Code:        p.Code,
		Status:      string(p.Status),
		Photos:      make([]dto.PhotoResponse, 0, len(photos)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, ph := range photos {
		out.Photos = append(out.Photos, dto.PhotoResponse{ID: ph.ID, URL: ph.URL, PublicID: ph.PublicID})
	}
	return out
}
