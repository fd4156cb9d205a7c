package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/period"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// DefaultTimezone zona usada para agrupar por día cuando no se configura otra.
const DefaultTimezone = "America/Sao_Paulo"

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ledger de vendas (encabezado, ítems y pagos) sobre PostgreSQL.
type SaleRepo struct {
	q  Querier
	tz string
}

// NewSaleRepository construye el adaptador. tz es la zona IANA de los gráficos diarios.
func NewSaleRepository(q Querier, tz string) *SaleRepo {
	if tz == "" {
		tz = DefaultTimezone
	}
	return &SaleRepo{q: q, tz: tz}
}

const saleSelect = `
	SELECT s.id, s.company_id, s.user_id, s.client_id, s.total, s.sold_at,
	       COALESCE(c.name, ''), COALESCE(u.name, '')
	FROM sales s
	LEFT JOIN clients c ON c.id = s.client_id
	LEFT JOIN users   u ON u.id = s.user_id`

func scanSale(row interface{ Scan(...any) error }) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(&s.ID, &s.CompanyID, &s.UserID, &s.ClientID, &s.Total, &s.SoldAt,
		&s.ClientName, &s.UserName); err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSales(rows pgx.Rows) ([]*entity.Sale, error) {
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Create inserta encabezado, ítems y pagos. Debe correr dentro de la tx del ledger.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO sales (company_id, user_id, client_id, total, sold_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sale.CompanyID, sale.UserID, sale.ClientID, sale.Total, sale.SoldAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range sale.Items {
		it := &sale.Items[i]
		it.SaleID = sale.ID
		if err := r.q.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			sale.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	for i := range sale.Payments {
		p := &sale.Payments[i]
		p.SaleID = sale.ID
		if err := r.q.QueryRow(ctx, `
			INSERT INTO sale_payments (sale_id, method, amount) VALUES ($1, $2, $3) RETURNING id`,
			sale.ID, p.Method, p.Amount,
		).Scan(&p.ID); err != nil {
			return fmt.Errorf("insert sale payment: %w", err)
		}
	}
	return nil
}

// GetByID detalle completo de la venda.
func (r *SaleRepo) GetByID(ctx context.Context, companyID, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE s.id = $1 AND s.company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if s.Items, err = r.items(ctx, s.ID); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// Lock bloquea el encabezado hasta el fin de la tx y carga los ítems.
func (r *SaleRepo) Lock(ctx context.Context, companyID, id int64) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, user_id, client_id, total, sold_at
		FROM sales WHERE id = $1 AND company_id = $2 FOR UPDATE`, id, companyID,
	).Scan(&s.ID, &s.CompanyID, &s.UserID, &s.ClientID, &s.Total, &s.SoldAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock sale: %w", err)
	}
	if s.Items, err = r.items(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) items(ctx context.Context, saleID int64) ([]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var out []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// attachPayments carga los pagos de varias vendas en una sola consulta.
func (r *SaleRepo) attachPayments(ctx context.Context, list []*entity.Sale) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	byID := make(map[int64]*entity.Sale, len(list))
	for i, s := range list {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, method, amount FROM sale_payments
		WHERE sale_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list sale payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.SalePayment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount); err != nil {
			return fmt.Errorf("scan sale payment: %w", err)
		}
		if s := byID[p.SaleID]; s != nil {
			s.Payments = append(s.Payments, p)
		}
	}
	return rows.Err()
}

// Delete borra pagos, ítems y encabezado.
func (r *SaleRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_payments WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("delete sale payments: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List vendas filtradas, más recientes primero, con los métodos de pago.
func (r *SaleRepo) List(ctx context.Context, companyID int64, f entity.SaleFilter) ([]*entity.Sale, error) {
	conds := []string{"s.company_id = $1"}
	args := []any{companyID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("s.sold_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("s.sold_at <= $%d", *f.To)
	}
	if f.UserID > 0 {
		add("s.user_id = $%d", f.UserID)
	}
	if f.ClientID > 0 {
		add("s.client_id = $%d", f.ClientID)
	}
	query := saleSelect + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY s.sold_at DESC, s.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ReferencedProducts ids de la lista que aparecen en algún ítem de venda.
func (r *SaleRepo) ReferencedProducts(ctx context.Context, productIDs []int64) ([]int64, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT product_id FROM sale_items WHERE product_id = ANY($1) ORDER BY product_id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("referenced products: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// TotalsByUser suma el total de cada venda una sola vez; los ítems se agregan en subconsulta.
func (r *SaleRepo) TotalsByUser(ctx context.Context, companyID, userID int64, from, to time.Time) (period.Totals, error) {
	var t period.Totals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.total), 0),
		       COUNT(*),
		       COALESCE(SUM((SELECT SUM(i.quantity) FROM sale_items i WHERE i.sale_id = s.id)), 0)::bigint
		FROM sales s
		WHERE s.company_id = $1 AND s.user_id = $2 AND s.sold_at BETWEEN $3 AND $4`,
		companyID, userID, from, to,
	).Scan(&t.Revenue, &t.SalesCount, &t.ItemsSold)
	if err != nil {
		return period.Totals{}, fmt.Errorf("sales totals by user: %w", err)
	}
	return t, nil
}

// TopProductsByUser productos más vendidos por el funcionario en el rango.
func (r *SaleRepo) TopProductsByUser(ctx context.Context, companyID, userID int64, from, to time.Time, limit int) ([]entity.ProductRank, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.product_id, MAX(i.product_name), SUM(i.quantity)::bigint, SUM(i.quantity * i.unit_price)
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		WHERE s.company_id = $1 AND s.user_id = $2 AND s.sold_at BETWEEN $3 AND $4
		GROUP BY i.product_id
		ORDER BY SUM(i.quantity) DESC, i.product_id
		LIMIT $5`, companyID, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products by user: %w", err)
	}
	return collectRanks(rows)
}

// RecentByUser últimas vendas del funcionario con sus pagos.
func (r *SaleRepo) RecentByUser(ctx context.Context, companyID, userID int64, limit int) ([]*entity.Sale, error) {
	return r.List(ctx, companyID, entity.SaleFilter{UserID: userID, Limit: limit})
}

// DailyByUser cantidad y valor por día (en la zona del repo) del funcionario.
func (r *SaleRepo) DailyByUser(ctx context.Context, companyID, userID int64, from, to time.Time) ([]entity.DailyPoint, error) {
	rows, err := r.q.Query(ctx, `
		SELECT (s.sold_at AT TIME ZONE $5::text)::date AS day, COUNT(*), COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE s.company_id = $1 AND s.user_id = $2 AND s.sold_at BETWEEN $3 AND $4
		GROUP BY day ORDER BY day`, companyID, userID, from, to, r.tz)
	if err != nil {
		return nil, fmt.Errorf("daily sales by user: %w", err)
	}
	return collectDaily(rows)
}

func collectRanks(rows pgx.Rows) ([]entity.ProductRank, error) {
	defer rows.Close()
	var out []entity.ProductRank
	for rows.Next() {
		var pr entity.ProductRank
		if err := rows.Scan(&pr.ProductID, &pr.Name, &pr.Quantity, &pr.Revenue); err != nil {
			return nil, fmt.Errorf("scan product rank: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func collectDaily(rows pgx.Rows) ([]entity.DailyPoint, error) {
	defer rows.Close()
	var out []entity.DailyPoint
	for rows.Next() {
		var p entity.DailyPoint
		if err := rows.Scan(&p.Day, &p.Count, &p.Value); err != nil {
			return nil, fmt.Errorf("scan daily point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ── períodos cerrados ────────────────────────────────────────────────────────

var _ repository.ClosedPeriodRepository = (*ClosedPeriodRepo)(nil)

// ClosedPeriodRepo historial append-only; no expone Update ni Delete.
type ClosedPeriodRepo struct {
	q Querier
}

// NewClosedPeriodRepository construye el adaptador. Pasar pool o tx.
func NewClosedPeriodRepository(q Querier) *ClosedPeriodRepo {
	return &ClosedPeriodRepo{q: q}
}

// Create inserta el snapshot del cierre.
func (r *ClosedPeriodRepo) Create(ctx context.Context, p *entity.ClosedPeriod) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO closed_periods (company_id, user_id, started_at, ended_at, revenue, sales_count,
		                            items_sold, average_ticket, commission)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		p.CompanyID, p.UserID, p.StartedAt, p.EndedAt, p.Revenue, p.SalesCount,
		p.ItemsSold, p.AverageTicket, p.Commission,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert closed period: %w", err)
	}
	return nil
}

// ListByUser cierres del funcionario, más recientes primero.
func (r *ClosedPeriodRepo) ListByUser(ctx context.Context, companyID, userID int64) ([]*entity.ClosedPeriod, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, user_id, started_at, ended_at, revenue, sales_count, items_sold,
		       average_ticket, commission, created_at
		FROM closed_periods WHERE company_id = $1 AND user_id = $2
		ORDER BY ended_at DESC, id DESC`, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("list closed periods: %w", err)
	}
	defer rows.Close()
	var list []*entity.ClosedPeriod
	for rows.Next() {
		var p entity.ClosedPeriod
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.UserID, &p.StartedAt, &p.EndedAt, &p.Revenue,
			&p.SalesCount, &p.ItemsSold, &p.AverageTicket, &p.Commission, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan closed period: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
