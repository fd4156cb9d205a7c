package repository

import (
	"context"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/period"
)

// SaleRepository define el puerto de persistencia del ledger de vendas.
type SaleRepository interface {
	// Create persiste encabezado, ítems y pagos; asigna IDs.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venda con ítems, pagos y nombres; (nil, nil) si no existe en la empresa.
	GetByID(ctx context.Context, companyID, id int64) (*entity.Sale, error)
	// Lock bloquea la venda (FOR UPDATE) y carga sus ítems.
	Lock(ctx context.Context, companyID, id int64) (*entity.Sale, error)
	// Delete borra pagos, ítems y encabezado.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, companyID int64, f entity.SaleFilter) ([]*entity.Sale, error)
	// ReferencedProducts devuelve cuáles de los ids aparecen en algún ítem de venda.
	ReferencedProducts(ctx context.Context, productIDs []int64) ([]int64, error)

	// Métricas por funcionario; rango cerrado [from, to].
	TotalsByUser(ctx context.Context, companyID, userID int64, from, to time.Time) (period.Totals, error)
	TopProductsByUser(ctx context.Context, companyID, userID int64, from, to time.Time, limit int) ([]entity.ProductRank, error)
	RecentByUser(ctx context.Context, companyID, userID int64, limit int) ([]*entity.Sale, error)
	DailyByUser(ctx context.Context, companyID, userID int64, from, to time.Time) ([]entity.DailyPoint, error)
}

// ClosedPeriodRepository historial append-only de períodos cerrados.
type ClosedPeriodRepository interface {
	Create(ctx context.Context, p *entity.ClosedPeriod) error
	ListByUser(ctx context.Context, companyID, userID int64) ([]*entity.ClosedPeriod, error)
}
