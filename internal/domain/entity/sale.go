package entity

import "time"

// Métodos de pago aceptados en una venda.
const (
	PaymentCash      = "Dinheiro"
	PaymentPix       = "Pix"
	PaymentCredit    = "Cartão de Crédito"
	PaymentDebit     = "Cartão de Débito"
	PaymentOnAccount = "A Prazo"
)

// Sale es el encabezado de una venda. Total = suma de quantity*unit_price de los ítems.
type Sale struct {
	ID         int64
	CompanyID  int64
	UserID     int64
	ClientID   *int64
	Total      Money
	SoldAt     time.Time
	Items      []SaleItem
	Payments   []SalePayment
	ClientName string // solo lectura
	UserName   string // solo lectura
}

// SaleItem línea de venda; UnitPrice es el precio vigente al vender e inmutable después.
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   Money
}

// Subtotal quantity × unit price.
func (i SaleItem) Subtotal() Money {
	return i.UnitPrice.Mul(decimalFromInt(i.Quantity))
}

// SalePayment parte del pago de una venda.
type SalePayment struct {
	ID     int64
	SaleID int64
	Method string
	Amount Money
}

// SaleFilter filtros del listado de vendas.
type SaleFilter struct {
	From     *time.Time
	To       *time.Time
	UserID   int64
	ClientID int64
	Limit    int
}
