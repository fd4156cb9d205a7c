package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
	"github.com/rs/zerolog"
)

const internalMessage = "erro interno do servidor"

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden relevante: los sentinels específicos antes que los genéricos.
var errorTable = []errorMapping{
	{domain.ErrOnAccountNotExclusive, fiber.StatusBadRequest, "ON_ACCOUNT_NOT_EXCLUSIVE"},
	{domain.ErrProductInUse, fiber.StatusBadRequest, "PRODUCT_IN_USE"},
	{domain.ErrWeakPassword, fiber.StatusBadRequest, "WEAK_PASSWORD"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrInvalidResetToken, fiber.StatusUnauthorized, "INVALID_RESET_TOKEN"},
	{domain.ErrTenantInactive, fiber.StatusForbidden, "TENANT_INACTIVE"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrClientHasSales, fiber.StatusConflict, "CLIENT_HAS_SALES"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// StatusFor traduce un error de dominio a status HTTP y código. Desconocido = 500.
func StatusFor(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con dto.ErrorResponse. Los 500 se registran y nunca exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		l := requestLogger(c)
		l.Error().Err(err).Str("path", c.Path()).Msg("erro inesperado")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: internalMessage})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: publicMessage(err)})
}

// publicMessage usa el detalle de validación o el texto del sentinel, sin los prefijos de wrapping.
func publicMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.target.Error()
		}
	}
	return err.Error()
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// ErrorHandler para fiber.Config: errores no tratados por los handlers (404 de ruta, body demasiado grande...).
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("erro não tratado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: internalMessage})
	}
}
