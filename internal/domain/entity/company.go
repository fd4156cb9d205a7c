package entity

import "time"

// Company representa una empresa/tenant del PDV. Slug es el namespace en el storage de fotos.
type Company struct {
	ID           int64
	Name         string
	ContactEmail string
	PasswordHash string
	Phone        string
	Slug         string
	Active       bool // false hasta que el superadmin aprueba
	PaymentDay   int  // día acordado de pago de la mensualidad (1..31)
	CreatedAt    time.Time
}

// Estados de pago de la mensualidad mostrados al superadmin.
const (
	PaymentStatusUpToDate = "Em Dia"
	PaymentStatusPending  = "Aguardando Pagamento"
	PaymentStatusOverdue  = "Atrasado"
)

// SubscriptionPayment es un pago de la mensualidad de la empresa a la plataforma.
type SubscriptionPayment struct {
	ID        int64
	CompanyID int64
	Amount    Money
	PaidAt    time.Time
	Reference string
	CreatedAt time.Time
}
