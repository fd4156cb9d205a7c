package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// BcryptVerifier compara la contraseña con el hash bcrypt guardado del usuario.
type BcryptVerifier struct {
	users repository.UserRepository
}

// NewBcryptVerifier construye el verificador.
func NewBcryptVerifier(users repository.UserRepository) *BcryptVerifier {
	return &BcryptVerifier{users: users}
}

// Verify devuelve false si la contraseña no coincide; domain.ErrUserNotFound si no hay usuario.
func (v *BcryptVerifier) Verify(ctx context.Context, userID int64, password string) (bool, error) {
	u, err := v.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, domain.ErrUserNotFound
	}
	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
