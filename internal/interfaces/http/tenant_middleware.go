package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
	"github.com/raposo-pdv/pdv-api/internal/domain"
)

// tenantChecker es el contrato mínimo que necesita el middleware para verificar la empresa.
// Lo implementa *usecase.CompanyUseCase.
type tenantChecker interface {
	IsActive(ctx context.Context, companyID int64) (bool, error)
}

// RequireActiveTenant verifica en cada petición que la empresa del token siga activa, de modo
// que inativar una empresa corta también los tokens ya emitidos. Usar DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 TENANT_INACTIVE → empresa inativada o pendiente de aprobação.
//   - 503 TENANT_CHECK_FAILED → fallo de infraestructura al consultar la DB.
//   - Sin company_id en el contexto responde 403 (rutas exclusivas de empresas).
func RequireActiveTenant(checker tenantChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID <= 0 {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rota exclusiva de empresas"})
		}

		active, err := checker.IsActive(c.UserContext(), companyID)
		if err != nil {
			l := requestLogger(c)
			l.Error().Err(err).Int64("company_id", companyID).Msg("verificar empresa")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "TENANT_CHECK_FAILED",
				Message: "não foi possível verificar a empresa, tente novamente",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "TENANT_INACTIVE",
				Message: domain.ErrTenantInactive.Error(),
			})
		}
		return c.Next()
	}
}
