package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/raposo-pdv/pdv-api/internal/application/dto"
)

type publicCatalogService interface {
	BySlug(ctx context.Context, slug string) (*dto.PublicCatalogResponse, error)
}

// CatalogHandler catálogo público por slug (sin autenticación).
type CatalogHandler struct {
	uc publicCatalogService
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc publicCatalogService) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// BySlug godoc
// @Summary      Catálogo público da empresa
// @Tags         publico
// @Produce      json
// @Param        slug  path  string  true  "Slug da empresa"
// @Success      200   {object}  dto.PublicCatalogResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/public/catalogo/{slug} [get]
func (h *CatalogHandler) BySlug(c *fiber.Ctx) error {
	out, err := h.uc.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return c.JSON(out)
}
