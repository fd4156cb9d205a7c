package sales

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

func pay(method string, amount string) entity.SalePayment {
	return entity.SalePayment{Method: method, Amount: decimal.RequireFromString(amount)}
}

func TestValidatePayments(t *testing.T) {
	tests := []struct {
		name     string
		payments []entity.SalePayment
		wantErr  error
	}{
		{"sin pagos", nil, domain.ErrInvalidInput},
		{"dinheiro solo", []entity.SalePayment{pay(entity.PaymentCash, "10")}, nil},
		{"split pix + crédito", []entity.SalePayment{pay(entity.PaymentPix, "5"), pay(entity.PaymentCredit, "5")}, nil},
		{"a prazo solo", []entity.SalePayment{pay(entity.PaymentOnAccount, "10")}, nil},
		{"a prazo combinado", []entity.SalePayment{pay(entity.PaymentOnAccount, "5"), pay(entity.PaymentCash, "5")}, domain.ErrOnAccountNotExclusive},
		{"método desconocido", []entity.SalePayment{pay("Cheque", "10")}, domain.ErrInvalidInput},
		{"monto cero", []entity.SalePayment{pay(entity.PaymentCash, "0")}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayments(tt.payments)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestTotal(t *testing.T) {
	items := []entity.SaleItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
	}
	assert.True(t, decimal.RequireFromString("24.00").Equal(Total(items)))
	assert.True(t, IsOnAccount([]entity.SalePayment{pay(entity.PaymentOnAccount, "1")}))
}
