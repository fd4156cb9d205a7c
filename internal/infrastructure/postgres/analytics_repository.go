package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/period"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de la empresa.
type AnalyticsRepo struct {
	q  Querier
	tz string
}

// NewAnalyticsRepository construye el adaptador de analítica. tz agrupa los gráficos diarios.
func NewAnalyticsRepository(q Querier, tz string) *AnalyticsRepo {
	if tz == "" {
		tz = DefaultTimezone
	}
	return &AnalyticsRepo{q: q, tz: tz}
}

// NewClientsSince clientes creados desde since.
func (r *AnalyticsRepo) NewClientsSince(ctx context.Context, companyID int64, since time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE company_id = $1 AND created_at >= $2`, companyID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count new clients: %w", err)
	}
	return n, nil
}

// SalesTotals faturamento, número de vendas e ítems de la empresa en [from, to].
func (r *AnalyticsRepo) SalesTotals(ctx context.Context, companyID int64, from, to time.Time) (period.Totals, error) {
	var t period.Totals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.total), 0),
		       COUNT(*),
		       COALESCE(SUM((SELECT SUM(i.quantity) FROM sale_items i WHERE i.sale_id = s.id)), 0)::bigint
		FROM sales s
		WHERE s.company_id = $1 AND s.sold_at BETWEEN $2 AND $3`,
		companyID, from, to,
	).Scan(&t.Revenue, &t.SalesCount, &t.ItemsSold)
	if err != nil {
		return period.Totals{}, fmt.Errorf("sales totals: %w", err)
	}
	return t, nil
}

// DailySales cantidad y valor de vendas por día local.
func (r *AnalyticsRepo) DailySales(ctx context.Context, companyID int64, from, to time.Time) ([]entity.DailyPoint, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (s.sold_at AT TIME ZONE $4::text)::date AS day, COUNT(*), COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE s.company_id = $1 AND s.sold_at BETWEEN $2 AND $3
		GROUP BY day ORDER BY day`, companyID, from, to, r.tz)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return collectDaily(rows)
}

// CountLowStock productos activos con stock <= threshold.
func (r *AnalyticsRepo) CountLowStock(ctx context.Context, companyID int64, threshold int) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE company_id = $1 AND status = 'active' AND stock <= $2`,
		companyID, threshold).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

// TopProducts productos más vendidos de la empresa en [from, to].
func (r *AnalyticsRepo) TopProducts(ctx context.Context, companyID int64, from, to time.Time, limit int) ([]entity.ProductRank, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.product_id, MAX(i.product_name), SUM(i.quantity)::bigint, SUM(i.quantity * i.unit_price)
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		WHERE s.company_id = $1 AND s.sold_at BETWEEN $2 AND $3
		GROUP BY i.product_id
		ORDER BY SUM(i.quantity) DESC, i.product_id
		LIMIT $4`, companyID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return collectRanks(rows)
}
