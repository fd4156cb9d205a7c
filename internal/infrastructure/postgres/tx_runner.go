package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raposo-pdv/pdv-api/internal/application/auth"
	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
	"github.com/raposo-pdv/pdv-api/internal/application/period"
	"github.com/raposo-pdv/pdv-api/internal/application/sales"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var (
	_ catalog.TxRunner = (*TxRunner)(nil)
	_ sales.TxRunner   = (*TxRunner)(nil)
	_ period.TxRunner  = (*TxRunner)(nil)
	_ auth.TxRunner    = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	tz   string
}

// NewTxRunner construye el runner con el pool. tz se pasa a los repos que agrupan por día.
func NewTxRunner(pool *pgxpool.Pool, tz string) *TxRunner {
	return &TxRunner{pool: pool, tz: tz}
}

// inTx abre la transacción, ejecuta fn y hace Commit; cualquier error deja Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCatalog repos de productos, fotos y vendas (borrado verifica referencias).
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	products repository.ProductRepository,
	photos repository.ProductPhotoRepository,
	sales repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewProductPhotoRepository(tx), NewSaleRepository(tx, r.tz))
	})
}

// RunSales repos de vendas y productos: registrar o cancelar una venda mueve stock.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	sales repository.SaleRepository,
	products repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewSaleRepository(tx, r.tz), NewProductRepository(tx))
	})
}

// RunPeriod repos del cierre de período.
func (r *TxRunner) RunPeriod(ctx context.Context, fn func(
	users repository.UserRepository,
	periods repository.ClosedPeriodRepository,
	sales repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewClosedPeriodRepository(tx), NewSaleRepository(tx, r.tz))
	})
}

// RunAccounts repos de empresas y usuarios (registro, reset de senha).
func (r *TxRunner) RunAccounts(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewCompanyRepository(tx), NewUserRepository(tx))
	})
}
