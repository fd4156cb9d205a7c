package repository

import (
	"context"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// Ordenamientos aceptados por ProductRepository.List.
const (
	SortPriceAsc  = "preco-asc"
	SortPriceDesc = "preco-desc"
	SortNameAsc   = "nome-asc"
	SortIDAsc     = "id-asc"
	SortIDDesc    = "id-desc"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Status entity.ProductStatus
	Sort   string
	Search string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si no existe en la empresa.
	GetByID(ctx context.Context, companyID, id int64) (*entity.Product, error)
	// Lock igual que GetByID pero con SELECT ... FOR UPDATE (usar dentro de tx).
	Lock(ctx context.Context, companyID, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SetStatus(ctx context.Context, companyID, id int64, status entity.ProductStatus) error
	// SetStatusMany cambia el status de los ids que pertenecen a la empresa y no están borrados.
	SetStatusMany(ctx context.Context, companyID int64, ids []int64, status entity.ProductStatus) (int64, error)
	// CountOwned cuenta cuántos ids pertenecen a la empresa (excluye borrados).
	CountOwned(ctx context.Context, companyID int64, ids []int64) (int, error)
	List(ctx context.Context, companyID int64, f ProductFilter) ([]*entity.ProductSummary, error)
	Categories(ctx context.Context, companyID int64) ([]string, error)
	// DecrementStock baja stock de un producto activo de forma atómica y devuelve el producto
	// actualizado. domain.ErrInsufficientStock si no alcanza; domain.ErrNotFound si no existe.
	DecrementStock(ctx context.Context, companyID, id int64, qty int) (*entity.Product, error)
	IncrementStock(ctx context.Context, companyID, id int64, qty int) error
}

// ProductPhotoRepository persistencia de fotos de producto.
type ProductPhotoRepository interface {
	Create(ctx context.Context, photo *entity.ProductPhoto) error
	ListByProduct(ctx context.Context, productID int64) ([]entity.ProductPhoto, error)
	ListByProducts(ctx context.Context, productIDs []int64) (map[int64][]entity.ProductPhoto, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
	UpdateLocation(ctx context.Context, id int64, publicID, url string) error
	// Delete borra las fotos indicadas del producto y devuelve las filas borradas.
	Delete(ctx context.Context, productID int64, ids []int64) ([]entity.ProductPhoto, error)
	// DeleteByProducts borra todas las fotos de los productos y devuelve las filas borradas.
	DeleteByProducts(ctx context.Context, productIDs []int64) ([]entity.ProductPhoto, error)
}
