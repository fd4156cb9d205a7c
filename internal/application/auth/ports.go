package auth

import (
	"context"

	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// TxRunner ejecuta fn con los repositorios de empresas y usuarios en una misma transacción.
type TxRunner interface {
	RunAccounts(ctx context.Context, fn func(companies repository.CompanyRepository, users repository.UserRepository) error) error
}
