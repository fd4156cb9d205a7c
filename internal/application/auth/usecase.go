package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/application/ports"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/domain/repository"
	"github.com/raposo-pdv/pdv-api/pkg/jwt"
	"github.com/raposo-pdv/pdv-api/pkg/slug"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength límite de bcrypt, en bytes.
	MaxPasswordLength = 72
	ResetTokenTTL     = 15 * time.Minute
	mailTimeout       = 10 * time.Second
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro de empresa, login y contraseñas.
type AuthUseCase struct {
	tx          TxRunner
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	mailer      ports.Mailer
	clock       ports.Clock
	jwtCfg      JWTConfig
	frontendURL string
	log         zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	tx TxRunner,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	mailer ports.Mailer,
	clock ports.Clock,
	jwtCfg JWTConfig,
	frontendURL string,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		tx:          tx,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		mailer:      mailer,
		clock:       clock,
		jwtCfg:      jwtCfg,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// RegisterCompany crea la empresa (inactiva hasta la aprobación del superadmin) y su usuario
// owner en una transacción. El slug se deriva del nombre con sufijo -2, -3… si ya existe.
func (uc *AuthUseCase) RegisterCompany(ctx context.Context, in dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, domain.Invalid("", "todos os campos são obrigatórios")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.Invalid("email_contato", "email inválido")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	companySlug, err := uc.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	company := &entity.Company{
		Name:         name,
		ContactEmail: email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Slug:         companySlug,
		Active:       false,
		PaymentDay:   1,
		CreatedAt:    now,
	}
	err = uc.tx.RunAccounts(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		return users.Create(ctx, &entity.User{
			CompanyID:       company.ID,
			Name:            name,
			Email:           email,
			PasswordHash:    hash,
			Role:            entity.RoleOwner,
			PeriodStartedAt: now,
			CreatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("company_id", company.ID).Str("slug", company.Slug).Msg("empresa registrada, aguardando aprovação")
	return &dto.RegisterCompanyResponse{
		Message:   "Cadastro realizado! Aguarde a aprovação do administrador.",
		CompanyID: company.ID,
		Slug:      company.Slug,
	}, nil
}

// Login verifica email/password, exige empresa activa (salvo superadmin) y genera el JWT.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.Invalid("", "email e senha são obrigatórios")
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsSuperadmin() {
		company, err := uc.companyRepo.GetByID(ctx, user.CompanyID)
		if err != nil {
			return nil, err
		}
		if company == nil || !company.Active {
			return nil, domain.ErrTenantInactive
		}
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// ChangeOwnPassword cambia la contraseña del usuario autenticado. Para el owner también se
// actualiza la contraseña de la empresa en la misma transacción.
func (uc *AuthUseCase) ChangeOwnPassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	if in.Current == "" || in.New == "" {
		return domain.Invalid("", "informe a senha atual e a nova senha")
	}
	if err := checkPassword(in.New); err != nil {
		return err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Current)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := hashPassword(in.New)
	if err != nil {
		return err
	}
	return uc.tx.RunAccounts(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		return setPassword(ctx, companies, users, user, hash)
	})
}

// RequestPasswordReset genera un token de un solo uso y lo envía por email. Nunca revela si
// el email existe: los errores de envío solo se registran.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Invalid("email", "email é obrigatório")
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		uc.log.Debug().Str("email", email).Msg("redefinição pedida para email desconhecido")
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	hash := hashToken(token)
	expires := uc.clock.Now().Add(ResetTokenTTL)
	if err := uc.userRepo.SetResetToken(ctx, user.ID, &hash, &expires); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/redefinir-senha.html?token=%s", uc.frontendURL, url.QueryEscape(token))
	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := uc.mailer.Send(mailCtx, ports.Mail{
		To:      user.Email,
		Subject: "Redefinição de senha",
		HTML: fmt.Sprintf(`<p>Olá, %s.</p><p>Para redefinir sua senha acesse o link abaixo (válido por 15 minutos):</p><p><a href="%s">%s</a></p>`,
			html.EscapeString(user.Name), link, link),
	}); err != nil {
		uc.log.Error().Err(err).Int64("user_id", user.ID).Msg("falha ao enviar email de redefinição")
	}
	return nil
}

// ResetPasswordWithToken troca a senha usando o token do email e o invalida.
func (uc *AuthUseCase) ResetPasswordWithToken(ctx context.Context, in dto.ResetPasswordRequest) error {
	if strings.TrimSpace(in.Token) == "" || in.New == "" {
		return domain.Invalid("", "token e nova senha são obrigatórios")
	}
	if err := checkPassword(in.New); err != nil {
		return err
	}
	user, err := uc.userRepo.GetByResetTokenHash(ctx, hashToken(strings.TrimSpace(in.Token)))
	if err != nil {
		return err
	}
	if user == nil || user.ResetTokenExpiresAt == nil || uc.clock.Now().After(*user.ResetTokenExpiresAt) {
		return domain.ErrInvalidResetToken
	}
	hash, err := hashPassword(in.New)
	if err != nil {
		return err
	}
	return uc.tx.RunAccounts(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := setPassword(ctx, companies, users, user, hash); err != nil {
			return err
		}
		return users.SetResetToken(ctx, user.ID, nil, nil)
	})
}

func (uc *AuthUseCase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "empresa"
	}
	for n := 1; ; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := uc.companyRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// setPassword actualiza el hash del usuario y, si es owner, el de su empresa.
func setPassword(ctx context.Context, companies repository.CompanyRepository, users repository.UserRepository, u *entity.User, hash string) error {
	if err := users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}
	if u.Role == entity.RoleOwner && u.CompanyID > 0 {
		return companies.UpdatePasswordHash(ctx, u.CompanyID, hash)
	}
	return nil
}

// checkPassword aplica los límites de tamaño; por encima de 72 bytes bcrypt falla.
func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return domain.Invalid("senha", fmt.Sprintf("a senha deve ter no máximo %d bytes", MaxPasswordLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash da senha: %w", err)
	}
	return string(hash), nil
}

// HashPassword expone el hash bcrypt para el back office y el seed del superadmin.
func HashPassword(password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	return hashPassword(password)
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("gerar token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
