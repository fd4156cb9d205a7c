package entity

import "time"

// Client representa un cliente de la empresa (ledger de compras, vendas a prazo).
type Client struct {
	ID        int64
	CompanyID int64
	Name      string
	Phone     string
	Email     string
	Document  string // CPF/CNPJ
	Address   string
	Notes     string
	CreatedAt time.Time
}
