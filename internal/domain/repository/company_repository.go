package repository

import (
	"context"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
type CompanyRepository interface {
	// Create persiste la empresa y asigna ID. Email duplicado → domain.ErrEmailAlreadyExists.
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Company, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByActive(ctx context.Context, active bool) ([]*entity.Company, error)
	// SetActive devuelve domain.ErrNotFound si la empresa no existe.
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// SubscriptionPaymentRepository pagos de mensualidad registrados por el superadmin.
type SubscriptionPaymentRepository interface {
	Create(ctx context.Context, p *entity.SubscriptionPayment) error
	ListByCompany(ctx context.Context, companyID int64, limit int) ([]*entity.SubscriptionPayment, error)
	// LatestPaidAt devuelve, por empresa, la fecha del último pago.
	LatestPaidAt(ctx context.Context) (map[int64]time.Time, error)
}
