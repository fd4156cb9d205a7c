package repository

import (
	"context"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las lecturas devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetOwnerByCompany(ctx context.Context, companyID int64) (*entity.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// SetResetToken guarda (o limpia con nil) el hash del token de redefinición.
	SetResetToken(ctx context.Context, id int64, hash *string, expiresAt *time.Time) error
	// ResetPeriodStart mueve period_started_at de expected a next solo si no cambió
	// desde la lectura; false indica que otro cierre ganó la carrera.
	ResetPeriodStart(ctx context.Context, id int64, expected, next time.Time) (bool, error)
}
