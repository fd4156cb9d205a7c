package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// TxRunner ejecuta fn con los repositorios de vendas y productos en una misma transacción.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(sales repository.SaleRepository, products repository.ProductRepository) error) error
}

// ReceiptGenerator genera el comprobante (PDF) de una venda.
type ReceiptGenerator interface {
	GenerateReceipt(company *entity.Company, sale *entity.Sale) ([]byte, error)
}

// Observer recibe los eventos del ledger (métricas).
type Observer interface {
	SaleRecorded(total decimal.Decimal, methods []string)
	SaleCancelled()
}

type nopObserver struct{}

func (nopObserver) SaleRecorded(decimal.Decimal, []string) {}
func (nopObserver) SaleCancelled()                         {}
