package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest ítem de POST /api/vendas.
type SaleItemRequest struct {
	ProductID int64 `json:"produto_id"`
	Quantity  int   `json:"quantidade"`
}

// SalePaymentRequest pago de POST /api/vendas.
type SalePaymentRequest struct {
	Method string          `json:"metodo"`
	Amount decimal.Decimal `json:"valor"`
}

// CreateSaleRequest entrada de POST /api/vendas.
type CreateSaleRequest struct {
	ClientID *int64               `json:"cliente_id"`
	Items    []SaleItemRequest    `json:"itens"`
	Payments []SalePaymentRequest `json:"pagamentos"`
}

// CreatedSaleResponse respuesta de POST /api/vendas.
type CreatedSaleResponse struct {
	Message string          `json:"message"`
	SaleID  int64           `json:"vendaId"`
	Total   decimal.Decimal `json:"valor_total"`
}

// SaleItemResponse ítem de una venda.
type SaleItemResponse struct {
	ProductID   int64           `json:"produto_id"`
	ProductName string          `json:"produto_nome"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"preco_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalePaymentResponse pago de una venda.
type SalePaymentResponse struct {
	Method string          `json:"metodo"`
	Amount decimal.Decimal `json:"valor"`
}

// SaleListItem fila del listado de vendas.
type SaleListItem struct {
	ID         int64           `json:"id"`
	Total      decimal.Decimal `json:"valor_total"`
	SoldAt     time.Time       `json:"data_venda"`
	ClientName string          `json:"cliente_nome,omitempty"`
	UserName   string          `json:"usuario_nome"`
	Methods    []string        `json:"metodos_pagamento,omitempty"`
}

// SaleResponse detalle de una venda.
type SaleResponse struct {
	ID         int64                 `json:"id"`
	Total      decimal.Decimal       `json:"valor_total"`
	SoldAt     time.Time             `json:"data_venda"`
	ClientID   *int64                `json:"cliente_id"`
	ClientName string                `json:"cliente_nome,omitempty"`
	UserID     int64                 `json:"usuario_id"`
	UserName   string                `json:"usuario_nome"`
	Items      []SaleItemResponse    `json:"itens"`
	Payments   []SalePaymentResponse `json:"pagamentos"`
}
