package dto

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ProductInput campos de alta/edición de producto (multipart).
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Code        string
}

// PhotoUpload archivo recibido en "imagens".
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// PhotoRef foto a remover en la edición (fotosParaRemover).
type PhotoRef struct {
	ID       int64  `json:"id"`
	PublicID string `json:"public_id"`
}

// CreateProductRequest alta de producto con fotos.
type CreateProductRequest struct {
	ProductInput
	Photos []PhotoUpload
}

// UpdateProductRequest edición de producto: campos, fotos nuevas y fotos removidas.
type UpdateProductRequest struct {
	ProductInput
	Photos []PhotoUpload
	Remove []PhotoRef
}

// CreatedProductResponse respuesta de POST /api/produtos.
type CreatedProductResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"produtoId"`
}

// PhotoResponse foto de un producto.
type PhotoResponse struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ProductResponse detalle de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Stock       int             `json:"estoque"`
	Category    string          `json:"categoria"`
	Code        string          `json:"codigo"`
	Status      string          `json:"status"`
	Photos      []PhotoResponse `json:"fotos"`
	CreatedAt   time.Time       `json:"criado_em"`
	UpdatedAt   time.Time       `json:"atualizado_em"`
}

// ProductListItem fila del listado (primera foto).
type ProductListItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"nome"`
	Price    decimal.Decimal `json:"preco"`
	Stock    int             `json:"estoque"`
	Category string          `json:"categoria"`
	Code     string          `json:"codigo"`
	Status   string          `json:"status"`
	PhotoURL string          `json:"foto_url,omitempty"`
}

// BulkResult resultado de operaciones en masa.
type BulkResult struct {
	Message  string `json:"message"`
	Affected int64  `json:"afetados"`
}

// ImportResult resultado de la importación CSV.
type ImportResult struct {
	Message  string `json:"message"`
	Imported int    `json:"importados"`
	Skipped  int    `json:"ignorados"`
}

// PublicCatalogResponse catálogo público de una empresa.
type PublicCatalogResponse struct {
	Company    string                  `json:"empresa"`
	Slug       string                  `json:"slug"`
	Categories []string                `json:"categorias"`
	Products   []PublicProductResponse `json:"produtos"`
}

// PublicProductResponse producto en el catálogo público.
type PublicProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Category    string          `json:"categoria"`
	InStock     bool            `json:"disponivel"`
	Photos      []string        `json:"fotos"`
}
