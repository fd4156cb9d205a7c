package repository

import (
	"context"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/period"
)

// AnalyticsRepository define las consultas de lectura del dashboard de la empresa.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// NewClientsSince cuenta clientes creados desde since.
	NewClientsSince(ctx context.Context, companyID int64, since time.Time) (int, error)
	// SalesTotals faturamento y número de vendas de la empresa en [from, to].
	SalesTotals(ctx context.Context, companyID int64, from, to time.Time) (period.Totals, error)
	// DailySales cantidad y valor de vendas por día en [from, to].
	DailySales(ctx context.Context, companyID int64, from, to time.Time) ([]entity.DailyPoint, error)
	// CountLowStock productos activos con stock <= threshold.
	CountLowStock(ctx context.Context, companyID int64, threshold int) (int, error)
	// TopProducts productos más vendidos de la empresa en [from, to].
	TopProducts(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]entity.ProductRank, error)
}
