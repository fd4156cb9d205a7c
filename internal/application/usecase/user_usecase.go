package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/raposo-pdv/pdv-api/internal/application/auth"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

// UserUseCase alta y listado de funcionarios de la empresa (solo el owner).
type UserUseCase struct {
	repo  repository.UserRepository
	clock ports.Clock
	log   zerolog.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, clock ports.Clock, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, clock: clock, log: log}
}

// CreateEmployee crea un funcionario con su período abierto desde ahora.
func (uc *UserUseCase) CreateEmployee(ctx context.Context, companyID int64, in dto.CreateEmployeeRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, domain.Invalid("", "nome e email são obrigatórios")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	now := uc.clock.Now()
	user := &entity.User{
		CompanyID:       companyID,
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		Role:            entity.RoleEmployee,
		PeriodStartedAt: now,
		CreatedAt:       now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("company_id", companyID).Int64("user_id", user.ID).Msg("funcionário criado")
	return entityToUserResponse(user), nil
}

// List usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, companyID int64) ([]dto.UserResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *entityToUserResponse(u))
	}
	return out, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:              u.ID,
		CompanyID:       u.CompanyID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		PeriodStartedAt: u.PeriodStartedAt,
	}
}
