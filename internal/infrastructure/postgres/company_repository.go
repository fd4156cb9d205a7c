package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas. Pasar pool o tx.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, contact_email, password_hash, phone, slug, active, payment_day, created_at`

func scanCompany(row interface{ Scan(...any) error }) (*entity.Company, error) {
	var c entity.Company
	if err := row.Scan(&c.ID, &c.Name, &c.ContactEmail, &c.PasswordHash, &c.Phone, &c.Slug,
		&c.Active, &c.PaymentDay, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa y asigna ID.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if company.PaymentDay == 0 {
		company.PaymentDay = 1
	}
	query := `
		INSERT INTO companies (name, contact_email, password_hash, phone, slug, active, payment_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		company.Name, company.ContactEmail, company.PasswordHash, company.Phone,
		company.Slug, company.Active, company.PaymentDay,
	).Scan(&company.ID, &company.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Dos cadastros simultáneos con el mismo nombre pueden chocar en el slug.
			if strings.Contains(violatedConstraint(err), "slug") {
				return fmt.Errorf("slug %q: %w", company.Slug, domain.ErrDuplicate)
			}
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetBySlug obtiene una empresa por slug (catálogo público).
func (r *CompanyRepo) GetBySlug(ctx context.Context, slug string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE slug = $1`, slug))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by slug: %w", err)
	}
	return c, nil
}

// SlugExists indica si el slug ya está tomado.
func (r *CompanyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// ListByActive lista empresas activas o pendientes, más recientes primero.
func (r *CompanyRepo) ListByActive(ctx context.Context, active bool) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE active = $1 ORDER BY created_at DESC, id DESC`, active)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SetActive aprueba o suspende la empresa.
func (r *CompanyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE companies SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set company active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePasswordHash actualiza la senha de acceso de la empresa.
func (r *CompanyRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE companies SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update company password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── pagos de mensualidad ─────────────────────────────────────────────────────

var _ repository.SubscriptionPaymentRepository = (*SubscriptionPaymentRepo)(nil)

// SubscriptionPaymentRepo pagos de la mensualidad de las empresas.
type SubscriptionPaymentRepo struct {
	q Querier
}

// NewSubscriptionPaymentRepository construye el adaptador.
func NewSubscriptionPaymentRepository(q Querier) *SubscriptionPaymentRepo {
	return &SubscriptionPaymentRepo{q: q}
}

// Create registra un pago y asigna ID.
func (r *SubscriptionPaymentRepo) Create(ctx context.Context, p *entity.SubscriptionPayment) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO subscription_payments (company_id, amount, paid_at, reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.CompanyID, p.Amount, p.PaidAt, p.Reference,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription payment: %w", err)
	}
	return nil
}

// ListByCompany últimos pagos de la empresa.
func (r *SubscriptionPaymentRepo) ListByCompany(ctx context.Context, companyID int64, limit int) ([]*entity.SubscriptionPayment, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, amount, paid_at, reference, created_at
		FROM subscription_payments WHERE company_id = $1
		ORDER BY paid_at DESC, id DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list subscription payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.SubscriptionPayment
	for rows.Next() {
		var p entity.SubscriptionPayment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Amount, &p.PaidAt, &p.Reference, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// LatestPaidAt fecha del último pago por empresa.
func (r *SubscriptionPaymentRepo) LatestPaidAt(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := r.q.Query(ctx, `SELECT company_id, MAX(paid_at) FROM subscription_payments GROUP BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("latest subscription payments: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]time.Time)
	for rows.Next() {
		var id int64
		var paidAt time.Time
		if err := rows.Scan(&id, &paidAt); err != nil {
			return nil, fmt.Errorf("scan latest payment: %w", err)
		}
		out[id] = paidAt
	}
	return out, rows.Err()
}
