package entity

import "time"

// ProductStatus es el estado del ciclo de vida del producto.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductDeleted  ProductStatus = "deleted"
)

// Valid indica si el status es uno de los tres conocidos.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductDeleted:
		return true
	}
	return false
}

// Product representa un producto del catálogo de una empresa.
type Product struct {
	ID          int64
	CompanyID   int64
	Name        string
	Description string
	Price       Money // >= 0
	Stock       int   // >= 0
	Category    string
	Code        string // SKU; "0" cuando no se informa
	Status      ProductStatus
	Photos      []ProductPhoto // cargado solo en lecturas de detalle
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPhoto es una foto en el storage externo. PublicID codifica slug/fecha/status/producto.
type ProductPhoto struct {
	ID        int64
	ProductID int64
	URL       string
	PublicID  string
}

// ProductSummary fila de listados (primera foto incluida).
type ProductSummary struct {
	ID          int64
	Name        string
	Description string
	Price       Money
	Stock       int
	Category    string
	Code        string
	Status      ProductStatus
	PhotoURL    string
	UpdatedAt   time.Time
}
