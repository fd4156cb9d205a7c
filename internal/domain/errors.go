package domain

import "errors"

// Errores de dominio (sin dependencias externas). El texto es el que ve el cliente.
var (
	ErrNotFound              = errors.New("recurso não encontrado")
	ErrUserNotFound          = errors.New("usuário não encontrado")
	ErrEmailAlreadyExists    = errors.New("este email já está cadastrado")
	ErrInvalidInput          = errors.New("dados inválidos")
	ErrWeakPassword          = errors.New("a senha deve ter pelo menos 6 caracteres")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrInvalidCredentials    = errors.New("email ou senha inválidos")
	ErrInvalidResetToken     = errors.New("token de redefinição inválido ou expirado")
	ErrTenantInactive        = errors.New("empresa aguardando aprovação ou inativa")
	ErrConflict              = errors.New("conflito com o estado atual")
	ErrInsufficientStock     = errors.New("estoque insuficiente")
	ErrOnAccountNotExclusive = errors.New("não é possível combinar \"A Prazo\" com outras formas de pagamento")
	ErrProductInUse          = errors.New("um ou mais produtos já foram vendidos e não podem ser excluídos")
	ErrClientHasSales        = errors.New("cliente possui vendas registradas")
	ErrInvalidTransition     = errors.New("transição de status inválida para o produto")
)

// ValidationError detalla qué campo falló; se compara con ErrInvalidInput vía errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
