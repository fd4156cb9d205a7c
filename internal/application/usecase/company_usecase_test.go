package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

type memCompanies struct {
	repository.CompanyRepository
	byID map[int64]*entity.Company
}

func (r *memCompanies) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	return r.byID[id], nil
}

func (r *memCompanies) ListByActive(_ context.Context, active bool) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.byID {
		if c.Active == active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCompanies) SetActive(_ context.Context, id int64, active bool) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = active
	return nil
}

func (r *memCompanies) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.byID[id].PasswordHash = hash
	return nil
}

type memUsers struct {
	repository.UserRepository
	byID map[int64]*entity.User
}

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	u.ID = int64(len(r.byID) + 100)
	r.byID[u.ID] = u
	return nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) GetOwnerByCompany(_ context.Context, companyID int64) (*entity.User, error) {
	for _, u := range r.byID {
		if u.CompanyID == companyID && u.Role == entity.RoleOwner {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) ListByCompany(_ context.Context, companyID int64) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.byID {
		if u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.byID[id].PasswordHash = hash
	return nil
}

type memPayments struct {
	list []*entity.SubscriptionPayment
}

func (r *memPayments) Create(_ context.Context, p *entity.SubscriptionPayment) error {
	p.ID = int64(len(r.list) + 1)
	r.list = append(r.list, p)
	return nil
}

func (r *memPayments) ListByCompany(_ context.Context, companyID int64, limit int) ([]*entity.SubscriptionPayment, error) {
	var out []*entity.SubscriptionPayment
	for i := len(r.list) - 1; i >= 0 && len(out) < limit; i-- {
		if r.list[i].CompanyID == companyID {
			out = append(out, r.list[i])
		}
	}
	return out, nil
}

func (r *memPayments) LatestPaidAt(_ context.Context) (map[int64]time.Time, error) {
	out := map[int64]time.Time{}
	for _, p := range r.list {
		if cur, ok := out[p.CompanyID]; !ok || p.PaidAt.After(cur) {
			out[p.CompanyID] = p.PaidAt
		}
	}
	return out, nil
}

// directTx ejecuta fn sin transacción real; suficiente para estos casos de uso.
type directTx struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
}

func (t directTx) RunAccounts(_ context.Context, fn func(repository.CompanyRepository, repository.UserRepository) error) error {
	return fn(t.companies, t.users)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// 2025-03-10 es lunes; el día 8 de marzo de 2025 cae sábado.
var backOfficeNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newCompanyFixture() (*CompanyUseCase, *memCompanies, *memUsers, *memPayments) {
	companies := &memCompanies{byID: map[int64]*entity.Company{
		1: {ID: 1, Name: "Em Dia", Slug: "em-dia", Active: true, PaymentDay: 5},
		2: {ID: 2, Name: "Atrasada", Slug: "atrasada", Active: true, PaymentDay: 5},
		3: {ID: 3, Name: "Sábado", Slug: "sabado", Active: true, PaymentDay: 8},
		4: {ID: 4, Name: "Pendente", Slug: "pendente", Active: false, PaymentDay: 1},
	}}
	users := &memUsers{byID: map[int64]*entity.User{
		10: {ID: 10, CompanyID: 1, Name: "Dono", Email: "dono@emdia.com", Role: entity.RoleOwner},
		11: {ID: 11, CompanyID: 1, Name: "Caixa", Email: "caixa@emdia.com", Role: entity.RoleEmployee, PasswordHash: "intocado"},
	}}
	payments := &memPayments{list: []*entity.SubscriptionPayment{
		{ID: 1, CompanyID: 1, Amount: decimal.NewFromInt(99), PaidAt: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{ID: 2, CompanyID: 2, Amount: decimal.NewFromInt(99), PaidAt: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)},
	}}
	uc := NewCompanyUseCase(directTx{companies: companies, users: users}, companies, users, payments, fixedClock{t: backOfficeNow}, zerolog.Nop())
	return uc, companies, users, payments
}

func TestListActive_EstadoDePago(t *testing.T) {
	uc, _, _, _ := newCompanyFixture()
	list, err := uc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, entity.PaymentStatusUpToDate, list[0].PaymentStatus)
	require.NotNil(t, list[0].LastPaymentAt)
	assert.Equal(t, entity.PaymentStatusOverdue, list[1].PaymentStatus)
	assert.Equal(t, entity.PaymentStatusPending, list[2].PaymentStatus, "vencimento de sábado vai para segunda")
}

func TestListPendingActivateDeactivate(t *testing.T) {
	uc, companies, _, _ := newCompanyFixture()
	ctx := context.Background()

	pending, err := uc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].PaymentStatus)

	require.NoError(t, uc.Activate(ctx, 4))
	assert.True(t, companies.byID[4].Active)
	require.NoError(t, uc.Deactivate(ctx, 4))
	assert.False(t, companies.byID[4].Active)
	assert.ErrorIs(t, uc.Activate(ctx, 404), domain.ErrNotFound)
}

func TestIsActive(t *testing.T) {
	uc, _, _, _ := newCompanyFixture()
	ctx := context.Background()

	ok, err := uc.IsActive(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.IsActive(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok, "pendente de aprovação")

	ok, err = uc.IsActive(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetailsYMyCompany(t *testing.T) {
	uc, _, _, _ := newCompanyFixture()
	ctx := context.Background()

	d, err := uc.Details(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, d.Users, 2)
	assert.Len(t, d.Payments, 1)
	assert.Equal(t, entity.PaymentStatusUpToDate, d.PaymentStatus)

	_, err = uc.Details(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mine, err := uc.MyCompany(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "atrasada", mine.Slug)
}

func TestResetPassword_EmpresaYOwner(t *testing.T) {
	uc, companies, users, _ := newCompanyFixture()
	require.NoError(t, uc.ResetPassword(context.Background(), 1, "nova-senha"))

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(companies.byID[1].PasswordHash), []byte("nova-senha")))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID[10].PasswordHash), []byte("nova-senha")))
	assert.Equal(t, "intocado", users.byID[11].PasswordHash)

	assert.ErrorIs(t, uc.ResetPassword(context.Background(), 1, "123"), domain.ErrWeakPassword)
	assert.ErrorIs(t, uc.ResetPassword(context.Background(), 404, "nova-senha"), domain.ErrNotFound)
}

func TestRecordPayment_PoneEmpresaEmDia(t *testing.T) {
	uc, _, _, payments := newCompanyFixture()
	ctx := context.Background()

	out, err := uc.RecordPayment(ctx, 2, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(99), PaidAt: "2025-03-09", Reference: "PIX março"})
	require.NoError(t, err)
	assert.Equal(t, "PIX março", out.Reference)
	assert.Len(t, payments.list, 3)

	list, err := uc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusUpToDate, list[1].PaymentStatus)

	_, err = uc.RecordPayment(ctx, 2, dto.RecordPaymentRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.RecordPayment(ctx, 2, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(1), PaidAt: "09/03/2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateEmployee(t *testing.T) {
	_, _, users, _ := newCompanyFixture()
	uc := NewUserUseCase(users, fixedClock{t: backOfficeNow}, zerolog.Nop())
	ctx := context.Background()

	out, err := uc.CreateEmployee(ctx, 1, dto.CreateEmployeeRequest{Name: "Nova", Email: " NOVA@emdia.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, out.Role)
	assert.Equal(t, backOfficeNow, out.PeriodStartedAt)
	assert.Equal(t, "nova@emdia.com", out.Email)

	_, err = uc.CreateEmployee(ctx, 1, dto.CreateEmployeeRequest{Name: "Dup", Email: "caixa@emdia.com", Password: "123456"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	_, err = uc.CreateEmployee(ctx, 1, dto.CreateEmployeeRequest{Name: "Fraca", Email: "f@emdia.com", Password: "1"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	list, err := uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
