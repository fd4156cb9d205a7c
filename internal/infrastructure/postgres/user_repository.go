package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, company_id, name, email, password_hash, role, period_started_at,
	reset_token_hash, reset_token_expires_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	var companyID *int64
	if err := row.Scan(&u.ID, &companyID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.PeriodStartedAt, &u.ResetTokenHash, &u.ResetTokenExpiresAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if companyID != nil {
		u.CompanyID = *companyID
	}
	return &u, nil
}

// Create persiste un nuevo usuario. CompanyID 0 se guarda como NULL (superadmin).
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	var companyID *int64
	if user.CompanyID != 0 {
		companyID = &user.CompanyID
	}
	if user.PeriodStartedAt.IsZero() {
		user.PeriodStartedAt = time.Now()
	}
	query := `
		INSERT INTO users (company_id, name, email, password_hash, role, period_started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		companyID, user.Name, strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash,
		user.Role, user.PeriodStartedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, label, where string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.findOne(ctx, "get user", `id = $1`, id)
}

// GetByEmail obtiene un usuario por email (cualquier empresa).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "get user by email", `email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// GetOwnerByCompany devuelve el dueño de la empresa (el primero creado si hubiera más).
func (r *UserRepo) GetOwnerByCompany(ctx context.Context, companyID int64) (*entity.User, error) {
	return r.findOne(ctx, "get company owner",
		`company_id = $1 AND role = 'owner' ORDER BY id LIMIT 1`, companyID)
}

// GetByResetTokenHash busca el usuario dueño del token de redefinición.
func (r *UserRepo) GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	return r.findOne(ctx, "get user by reset token", `reset_token_hash = $1`, hash)
}

// ListByCompany lista los funcionarios de la empresa por nombre.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY name, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// UpdatePasswordHash actualiza la senha del usuario.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetResetToken guarda o limpia el hash del token de redefinición.
func (r *UserRepo) SetResetToken(ctx context.Context, id int64, hash *string, expiresAt *time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_token_expires_at = $3 WHERE id = $1`,
		id, hash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// ResetPeriodStart UPDATE condicional: solo avanza si period_started_at sigue siendo expected.
func (r *UserRepo) ResetPeriodStart(ctx context.Context, id int64, expected, next time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET period_started_at = $3 WHERE id = $1 AND period_started_at = $2`,
		id, expected, next)
	if err != nil {
		return false, fmt.Errorf("reset period start: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
