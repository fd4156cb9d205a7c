package period

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// CredentialVerifier confirma la contraseña del funcionario antes de cerrar el período.
type CredentialVerifier interface {
	Verify(ctx context.Context, userID int64, password string) (bool, error)
}

// TxRunner ejecuta fn con repositorios atados a una misma transacción.
type TxRunner interface {
	RunPeriod(ctx context.Context, fn func(
		users repository.UserRepository,
		periods repository.ClosedPeriodRepository,
		sales repository.SaleRepository,
	) error) error
}

// Observer recibe los cierres confirmados (métricas).
type Observer interface {
	PeriodClosed(revenue, commission decimal.Decimal)
}

type nopObserver struct{}

func (nopObserver) PeriodClosed(decimal.Decimal, decimal.Decimal) {}
