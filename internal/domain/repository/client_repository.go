package repository

import (
	"context"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ClientStats agregados de compras de un cliente.
type ClientStats struct {
	SalesCount     int
	TotalSpent     decimal.Decimal
	OnAccountTotal decimal.Decimal
}

// ClientRepository define el puerto de persistencia para Client (DIP).
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, companyID, id int64) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, companyID, id int64) error
	List(ctx context.Context, companyID int64, search string) ([]*entity.Client, error)
	Stats(ctx context.Context, companyID, id int64) (ClientStats, error)
	Sales(ctx context.Context, companyID, id int64) ([]*entity.Sale, error)
}
