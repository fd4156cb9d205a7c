package catalog

import (
	"context"
	"io"

	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// StoredObject objeto guardado en el storage de fotos.
type StoredObject struct {
	PublicID string
	URL      string
}

// PhotoStorage puerto del storage externo de fotos (Cloudinary en producción).
type PhotoStorage interface {
	Upload(ctx context.Context, publicID string, content io.Reader, contentType string) (*StoredObject, error)
	// Rename mueve el objeto preservando el contenido; devuelve la nueva URL.
	Rename(ctx context.Context, fromPublicID, toPublicID string) (*StoredObject, error)
	Delete(ctx context.Context, publicIDs []string) error
}

// CatalogCache cache del catálogo público por slug.
type CatalogCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool, error)
	Set(ctx context.Context, slug string, payload []byte) error
	Invalidate(ctx context.Context, slug string) error
}

// TxRunner ejecuta fn con repositorios atados a una misma transacción.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		products repository.ProductRepository,
		photos repository.ProductPhotoRepository,
		sales repository.SaleRepository,
	) error) error
}
