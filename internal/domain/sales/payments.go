package sales

import (
	"github.com/shopspring/decimal"

	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

var knownMethods = map[string]struct{}{
	entity.PaymentCash:      {},
	entity.PaymentPix:       {},
	entity.PaymentCredit:    {},
	entity.PaymentDebit:     {},
	entity.PaymentOnAccount: {},
}

// IsKnownMethod indica si el método de pago es aceptado.
func IsKnownMethod(method string) bool {
	_, ok := knownMethods[method]
	return ok
}

// ValidatePayments verifica las reglas de pago de una venda:
// al menos un pago, métodos conocidos, montos positivos y "A Prazo" exclusivo.
func ValidatePayments(payments []entity.SalePayment) error {
	if len(payments) == 0 {
		return domain.Invalid("pagamentos", "informe ao menos uma forma de pagamento")
	}
	onAccount := false
	for _, p := range payments {
		if !IsKnownMethod(p.Method) {
			return domain.Invalid("pagamentos", "forma de pagamento desconhecida: "+p.Method)
		}
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			return domain.Invalid("pagamentos", "valor de pagamento deve ser positivo")
		}
		if p.Method == entity.PaymentOnAccount {
			onAccount = true
		}
	}
	if onAccount && len(payments) > 1 {
		return domain.ErrOnAccountNotExclusive
	}
	return nil
}

// IsOnAccount indica si la venda es a prazo (único pago con ese método).
func IsOnAccount(payments []entity.SalePayment) bool {
	return len(payments) == 1 && payments[0].Method == entity.PaymentOnAccount
}

// Total suma los subtotales de los ítems.
func Total(items []entity.SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
