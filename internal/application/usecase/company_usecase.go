package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/application/auth"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
	"github.com/raposo-pdv/pdv-api/internal/domain/subscription"
)

const detailsPaymentsLimit = 12

// CompanyUseCase back office del superadmin y datos de la propia empresa.
type CompanyUseCase struct {
	tx       auth.TxRunner
	repo     repository.CompanyRepository
	users    repository.UserRepository
	payments repository.SubscriptionPaymentRepository
	clock    ports.Clock
	log      zerolog.Logger
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(
	tx auth.TxRunner,
	repo repository.CompanyRepository,
	users repository.UserRepository,
	payments repository.SubscriptionPaymentRepository,
	clock ports.Clock,
	log zerolog.Logger,
) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, repo: repo, users: users, payments: payments, clock: clock, log: log}
}

// ListActive empresas aprobadas con el estado de pago de la mensualidad.
func (uc *CompanyUseCase) ListActive(ctx context.Context) ([]dto.CompanyResponse, error) {
	list, err := uc.repo.ListByActive(ctx, true)
	if err != nil {
		return nil, err
	}
	latest, err := uc.payments.LatestPaidAt(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	out := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, withPaymentStatus(c, latest, now))
	}
	return out, nil
}

// ListPending empresas aguardando aprovação.
func (uc *CompanyUseCase) ListPending(ctx context.Context) ([]dto.CompanyResponse, error) {
	list, err := uc.repo.ListByActive(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *entityToCompanyResponse(c))
	}
	return out, nil
}

// Activate aprueba la empresa.
func (uc *CompanyUseCase) Activate(ctx context.Context, id int64) error {
	if err := uc.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	uc.log.Info().Int64("company_id", id).Msg("empresa ativada")
	return nil
}

// Deactivate bloquea el acceso de la empresa.
func (uc *CompanyUseCase) Deactivate(ctx context.Context, id int64) error {
	if err := uc.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	uc.log.Info().Int64("company_id", id).Msg("empresa inativada")
	return nil
}

// IsActive indica si la empresa sigue aprobada. Inexistente = false.
func (uc *CompanyUseCase) IsActive(ctx context.Context, id int64) (bool, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c != nil && c.Active, nil
}

// Details empresa con usuarios y últimos pagos.
func (uc *CompanyUseCase) Details(ctx context.Context, id int64) (*dto.CompanyDetailsResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := uc.users.ListByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.payments.ListByCompany(ctx, id, detailsPaymentsLimit)
	if err != nil {
		return nil, err
	}

	latest := map[int64]time.Time{}
	if len(payments) > 0 {
		latest[id] = payments[0].PaidAt
	}
	out := &dto.CompanyDetailsResponse{
		CompanyResponse: withPaymentStatus(c, latest, uc.clock.Now()),
		Users:           make([]dto.UserResponse, 0, len(users)),
		Payments:        make([]dto.SubscriptionPaymentResponse, 0, len(payments)),
	}
	if !c.Active {
		out.PaymentStatus = ""
	}
	for _, u := range users {
		out.Users = append(out.Users, *entityToUserResponse(u))
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, toPaymentResponse(p))
	}
	return out, nil
}

// MyCompany datos de la empresa del usuario autenticado.
func (uc *CompanyUseCase) MyCompany(ctx context.Context, id int64) (*dto.CompanyResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(c), nil
}

// ResetPassword redefine la contraseña de la empresa y de su owner en una transacción.
func (uc *CompanyUseCase) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	err = uc.tx.RunAccounts(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.UpdatePasswordHash(ctx, id, hash); err != nil {
			return err
		}
		owner, err := users.GetOwnerByCompany(ctx, id)
		if err != nil {
			return err
		}
		if owner == nil {
			return nil
		}
		return users.UpdatePasswordHash(ctx, owner.ID, hash)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("company_id", id).Msg("senha da empresa redefinida pelo superadmin")
	return nil
}

// RecordPayment registra un pago de la mensualidad. Fecha vacía = hoy.
func (uc *CompanyUseCase) RecordPayment(ctx context.Context, id int64, in dto.RecordPaymentRequest) (*dto.SubscriptionPaymentResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("valor", "valor deve ser positivo")
	}
	now := uc.clock.Now()
	paidAt := now
	if s := strings.TrimSpace(in.PaidAt); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return nil, domain.Invalid("data_pagamento", "use o formato AAAA-MM-DD")
		}
		paidAt = d
	}
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	p := &entity.SubscriptionPayment{
		CompanyID: id,
		Amount:    in.Amount,
		PaidAt:    paidAt,
		Reference: strings.TrimSpace(in.Reference),
		CreatedAt: now,
	}
	if err := uc.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	return &out, nil
}

func (uc *CompanyUseCase) get(ctx context.Context, id int64) (*entity.Company, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func withPaymentStatus(c *entity.Company, latest map[int64]time.Time, now time.Time) dto.CompanyResponse {
	out := *entityToCompanyResponse(c)
	var last *time.Time
	if t, ok := latest[c.ID]; ok {
		last = &t
		out.LastPaymentAt = &t
	}
	out.PaymentStatus = subscription.Status(now, c.PaymentDay, last)
	return out
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.ContactEmail,
		Phone:      c.Phone,
		Slug:       c.Slug,
		Active:     c.Active,
		PaymentDay: c.PaymentDay,
		CreatedAt:  c.CreatedAt,
	}
}

func toPaymentResponse(p *entity.SubscriptionPayment) dto.SubscriptionPaymentResponse {
	return dto.SubscriptionPaymentResponse{ID: p.ID, Amount: p.Amount, PaidAt: p.PaidAt, Reference: p.Reference}
}
