package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterCompanyRequest entrada de POST /api/empresas/registrar-publico.
type RegisterCompanyRequest struct {
	Name     string `json:"nome_empresa"`
	Email    string `json:"email_contato"`
	Password string `json:"senha"`
	Phone    string `json:"telefone_comercial"`
}

// RegisterCompanyResponse respuesta del registro público.
type RegisterCompanyResponse struct {
	Message   string `json:"message"`
	CompanyID int64  `json:"empresaId"`
	Slug      string `json:"slug"`
}

// CompanyResponse salida de una empresa (sin datos sensibles).
type CompanyResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"nome_empresa"`
	Email         string     `json:"email_contato"`
	Phone         string     `json:"telefone_comercial"`
	Slug          string     `json:"slug"`
	Active        bool       `json:"ativo"`
	PaymentDay    int        `json:"dia_pagamento_acordado"`
	PaymentStatus string     `json:"status_pagamento,omitempty"`
	LastPaymentAt *time.Time `json:"ultimo_pagamento,omitempty"`
	CreatedAt     time.Time  `json:"data_cadastro"`
}

// CompanyDetailsResponse detalle para el superadmin.
type CompanyDetailsResponse struct {
	CompanyResponse
	Users    []UserResponse                `json:"usuarios"`
	Payments []SubscriptionPaymentResponse `json:"pagamentos"`
}

// AdminResetPasswordRequest entrada de PUT /api/empresas/:id/redefinir-senha.
type AdminResetPasswordRequest struct {
	New string `json:"novaSenha"`
}

// RecordPaymentRequest entrada de POST /api/empresas/:id/pagamentos.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"valor"`
	PaidAt    string          `json:"data_pagamento"` // YYYY-MM-DD; vacío = hoy
	Reference string          `json:"referencia"`
}

// SubscriptionPaymentResponse pago de mensualidad.
type SubscriptionPaymentResponse struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"valor"`
	PaidAt    time.Time       `json:"data_pagamento"`
	Reference string          `json:"referencia"`
}
