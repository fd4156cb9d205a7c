package postgres

import (
	"context"
	"fmt"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación del puerto ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, company_id, name, phone, email, document, address, notes, created_at`

func scanClient(row interface{ Scan(...any) error }) (*entity.Client, error) {
	var c entity.Client
	if err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.Email, &c.Document,
		&c.Address, &c.Notes, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO clients (company_id, name, phone, email, document, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		c.CompanyID, c.Name, c.Phone, c.Email, c.Document, c.Address, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente de la empresa.
func (r *ClientRepo) GetByID(ctx context.Context, companyID, id int64) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// Update actualiza los datos del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE clients SET name = $3, phone = $4, email = $5, document = $6, address = $7, notes = $8
		WHERE id = $1 AND company_id = $2`,
		c.ID, c.CompanyID, c.Name, c.Phone, c.Email, c.Document, c.Address, c.Notes)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el cliente. La FK de sales impide borrar clientes con vendas.
func (r *ClientRepo) Delete(ctx context.Context, companyID, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrClientHasSales
		}
		return fmt.Errorf("delete client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List clientes de la empresa por nombre; search filtra por nombre, teléfono o documento.
func (r *ClientRepo) List(ctx context.Context, companyID int64, search string) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE company_id = $1`
	args := []any{companyID}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (name ILIKE $2 OR phone ILIKE $2 OR document ILIKE $2 OR email ILIKE $2)`
	}
	query += ` ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Stats total de compras y saldo a prazo del cliente.
func (r *ClientRepo) Stats(ctx context.Context, companyID, id int64) (repository.ClientStats, error) {
	var st repository.ClientStats
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(s.total), 0),
		       COALESCE(SUM((SELECT SUM(p.amount) FROM sale_payments p
		                      WHERE p.sale_id = s.id AND p.method = 'A Prazo')), 0)
		FROM sales s
		WHERE s.company_id = $1 AND s.client_id = $2`, companyID, id,
	).Scan(&st.SalesCount, &st.TotalSpent, &st.OnAccountTotal)
	if err != nil {
		return repository.ClientStats{}, fmt.Errorf("client stats: %w", err)
	}
	return st, nil
}

// Sales historial de compras del cliente.
func (r *ClientRepo) Sales(ctx context.Context, companyID, id int64) ([]*entity.Sale, error) {
	return NewSaleRepository(r.q, "").List(ctx, companyID, entity.SaleFilter{ClientID: id})
}
