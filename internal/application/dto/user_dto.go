package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoginRequest entrada de POST /api/usuarios/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"empresa_id,omitempty"`
	Name            string    `json:"nome"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	PeriodStartedAt time.Time `json:"periodo_inicio"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

// ChangePasswordRequest entrada de PUT /api/usuarios/minha-senha.
type ChangePasswordRequest struct {
	Current string `json:"senhaAtual"`
	New     string `json:"novaSenha"`
}

// ForgotPasswordRequest entrada de POST /api/usuarios/esqueci-senha.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest entrada de POST /api/usuarios/redefinir-senha.
type ResetPasswordRequest struct {
	Token string `json:"token"`
	New   string `json:"novaSenha"`
}

// ClosePeriodRequest entrada de POST /api/usuarios/fechar-periodo.
type ClosePeriodRequest struct {
	Password string `json:"senha"`
}

// PeriodResponse período cerrado (o métricas del período abierto).
type PeriodResponse struct {
	ID            int64           `json:"id,omitempty"`
	StartedAt     time.Time       `json:"data_inicio"`
	EndedAt       time.Time       `json:"data_fim"`
	Revenue       decimal.Decimal `json:"total_faturado"`
	SalesCount    int             `json:"numero_vendas"`
	AverageTicket decimal.Decimal `json:"ticket_medio"`
	ItemsSold     int             `json:"itens_vendidos"`
	Commission    decimal.Decimal `json:"comissao_vendedor"`
}

// ClosePeriodResponse respuesta del cierre.
type ClosePeriodResponse struct {
	Message string         `json:"message"`
	Period  PeriodResponse `json:"periodo"`
}

// TopProductResponse producto en ranking.
type TopProductResponse struct {
	ProductID int64           `json:"produto_id"`
	Name      string          `json:"nome"`
	Quantity  int             `json:"quantidade"`
	Revenue   decimal.Decimal `json:"valor"`
}

// DailyPointResponse punto de gráfico diario.
type DailyPointResponse struct {
	Day   string          `json:"dia"` // YYYY-MM-DD
	Count int             `json:"quantidade"`
	Value decimal.Decimal `json:"valor"`
}

// ProfileResponse respuesta de GET /api/usuarios/perfil.
type ProfileResponse struct {
	User        UserResponse         `json:"usuario"`
	Metrics     PeriodResponse       `json:"metricas"`
	TopProducts []TopProductResponse `json:"top_produtos"`
	LastSales   []SaleListItem       `json:"ultimas_vendas"`
	DailyChart  []DailyPointResponse `json:"grafico_diario"`
}

// CreateEmployeeRequest entrada de POST /api/usuarios (owner crea funcionario).
type CreateEmployeeRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}
