package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientRequest alta/edición de cliente.
type ClientRequest struct {
	Name     string `json:"nome"`
	Phone    string `json:"telefone"`
	Email    string `json:"email"`
	Document string `json:"cpf"`
	Address  string `json:"endereco"`
	Notes    string `json:"observacoes"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	Phone     string    `json:"telefone"`
	Email     string    `json:"email"`
	Document  string    `json:"cpf"`
	Address   string    `json:"endereco"`
	Notes     string    `json:"observacoes"`
	CreatedAt time.Time `json:"data_cadastro"`
}

// ClientDetailsResponse cliente con historial de compras.
type ClientDetailsResponse struct {
	Client         ClientResponse  `json:"cliente"`
	SalesCount     int             `json:"total_compras"`
	TotalSpent     decimal.Decimal `json:"total_gasto"`
	OnAccountTotal decimal.Decimal `json:"total_a_prazo"`
	Sales          []SaleListItem  `json:"vendas"`
}
