package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
	"github.com/raposo-pdv/pdv-api/pkg/config"
)

// Requiere una base PostgreSQL descartable: PDV_TEST_DATABASE_URL=postgres://...
func TestRepositories_Integration(t *testing.T) {
	databaseURL := os.Getenv("PDV_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set PDV_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: databaseURL, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))

	stamp := time.Now().UnixNano()
	runner := NewTxRunner(pool, "UTC")

	// ── empresa + dueño en una tx ───────────────────────────────────────────
	company := &entity.Company{
		Name:         "Loja IT",
		ContactEmail: fmt.Sprintf("loja-%d@it.test", stamp),
		PasswordHash: "x",
		Slug:         fmt.Sprintf("loja-it-%d", stamp),
	}
	owner := &entity.User{
		Name:         "Dona",
		Email:        company.ContactEmail,
		PasswordHash: "x",
		Role:         entity.RoleOwner,
	}
	err = runner.RunAccounts(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		owner.CompanyID = company.ID
		return users.Create(ctx, owner)
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM sale_payments WHERE sale_id IN (SELECT id FROM sales WHERE company_id = $1)`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE company_id = $1)`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM sales WHERE company_id = $1`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM closed_periods WHERE company_id = $1`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM product_photos WHERE product_id IN (SELECT id FROM products WHERE company_id = $1)`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE company_id = $1`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM clients WHERE company_id = $1`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE company_id = $1`, company.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, company.ID)
	})

	// Email duplicado se traduce al error de dominio.
	dup := *company
	dup.Slug += "-dup"
	assert.ErrorIs(t, NewCompanyRepository(pool).Create(ctx, &dup), domain.ErrEmailAlreadyExists)

	// ── producto + venda con decremento condicional ─────────────────────────
	products := NewProductRepository(pool)
	p := &entity.Product{CompanyID: company.ID, Name: "Brinco", Price: decimal.RequireFromString("50.00"), Stock: 3}
	require.NoError(t, products.Create(ctx, p))
	assert.Equal(t, "0", p.Code)

	sale := &entity.Sale{CompanyID: company.ID, UserID: owner.ID, SoldAt: time.Now()}
	err = runner.RunSales(ctx, func(sales repository.SaleRepository, products repository.ProductRepository) error {
		got, err := products.DecrementStock(ctx, company.ID, p.ID, 2)
		if err != nil {
			return err
		}
		sale.Items = []entity.SaleItem{{ProductID: got.ID, ProductName: got.Name, Quantity: 2, UnitPrice: got.Price}}
		sale.Payments = []entity.SalePayment{{Method: entity.PaymentPix, Amount: decimal.RequireFromString("100.00")}}
		sale.Total = decimal.RequireFromString("100.00")
		return sales.Create(ctx, sale)
	})
	require.NoError(t, err)

	_, err = products.DecrementStock(ctx, company.ID, p.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = products.DecrementStock(ctx, company.ID+1_000_000, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sales := NewSaleRepository(pool, "UTC")
	got, err := sales.GetByID(ctx, company.ID, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 1)
	assert.Len(t, got.Payments, 1)
	assert.Equal(t, "Dona", got.UserName)

	// Revenue por venda, no multiplicada por ítems.
	totals, err := sales.TotalsByUser(ctx, company.ID, owner.ID, owner.PeriodStartedAt.Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, totals.Revenue.Equal(decimal.RequireFromString("100")), totals.Revenue.String())
	assert.Equal(t, 1, totals.SalesCount)
	assert.Equal(t, 2, totals.ItemsSold)

	ref, err := sales.ReferencedProducts(ctx, []int64{p.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, ref)

	// ── cierre optimista ────────────────────────────────────────────────────
	users := NewUserRepository(pool)
	u, err := users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	next := u.PeriodStartedAt.Add(time.Hour)
	ok, err := users.ResetPeriodStart(ctx, u.ID, u.PeriodStartedAt, next)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.ResetPeriodStart(ctx, u.ID, u.PeriodStartedAt, next.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "segundo cierre con el inicio viejo debe perder")

	// ── cancelamento devuelve stock ─────────────────────────────────────────
	err = runner.RunSales(ctx, func(sales repository.SaleRepository, products repository.ProductRepository) error {
		s, err := sales.Lock(ctx, company.ID, sale.ID)
		if err != nil {
			return err
		}
		for _, it := range s.Items {
			if err := products.IncrementStock(ctx, company.ID, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return sales.Delete(ctx, s.ID)
	})
	require.NoError(t, err)
	after, err := products.GetByID(ctx, company.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Stock)
	gone, err := sales.GetByID(ctx, company.ID, sale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
